package halfblock

import (
	"crypto/sha1"
	"database/sql"
	"fmt"
	"io"

	"github.com/bodgit/halfblock/frame"
	_ "github.com/mattn/go-sqlite3"
)

// Catalog is a sqlite database of decoded frames. Identical frames are only
// stored once.
type Catalog struct {
	db   *sql.DB
	next int64
}

// NewCatalog opens or creates the catalog held in file.
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, pixels BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS frame (number INTEGER PRIMARY KEY NOT NULL, image_id INTEGER NOT NULL, FOREIGN KEY(image_id) REFERENCES image(id))"); err != nil {
		db.Close()
		return nil, err
	}

	c := &Catalog{
		db: db,
	}

	if err := db.QueryRow("SELECT COALESCE(MAX(number) + 1, 0) FROM frame").Scan(&c.next); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

func reset(q querier) error {
	if _, err := q.Exec("DELETE FROM frame"); err != nil {
		return err
	}

	if _, err := q.Exec("DELETE FROM image"); err != nil {
		return err
	}

	return nil
}

// Reset removes all frames and images.
func (c *Catalog) Reset() error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}

	if err := reset(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	c.next = 0

	return nil
}

// Import replaces the contents of the catalog with the frames read from r.
// The catalog is left untouched if r can't be read in full.
func (c *Catalog) Import(r io.Reader) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}

	next, err := importFrames(tx, r)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	c.next = next

	return nil
}

func importFrames(tx *sql.Tx, r io.Reader) (int64, error) {
	if err := reset(tx); err != nil {
		return 0, err
	}

	var next int64
	fr := frame.NewReader(r)
	f := new(frame.Frame)
	for {
		switch err := fr.Read(f); err {
		case nil:
			if err := writeFrame(tx, next, f); err != nil {
				return 0, err
			}
			next++
		case io.EOF:
			return next, nil
		default:
			return 0, err
		}
	}
}

// WriteFrame appends f as the next frame.
func (c *Catalog) WriteFrame(f *frame.Frame) error {
	if err := writeFrame(c.db, c.next, f); err != nil {
		return err
	}
	c.next++

	return nil
}

func writeFrame(q querier, number int64, f *frame.Frame) error {
	image, err := addImage(q, f)
	if err != nil {
		return err
	}

	_, err = q.Exec("INSERT INTO frame (number, image_id) VALUES (?, ?)", number, image)
	return err
}

func addImage(q querier, f *frame.Frame) (int64, error) {
	sha := fmt.Sprintf("%X", sha1.Sum(f[:]))

	var id int64
	switch err := q.QueryRow("SELECT id FROM image WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := q.Exec("INSERT INTO image (sha1, pixels) VALUES (?, ?)", sha, f[:])
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// Frame returns frame number n, counting from zero, or nil if there is no
// such frame.
func (c *Catalog) Frame(n int64) (*frame.Frame, error) {
	var pixels []byte
	switch err := c.db.QueryRow("SELECT i.pixels FROM frame AS f JOIN image AS i ON f.image_id = i.id WHERE f.number = ?", n).Scan(&pixels); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		if len(pixels) != frame.Size {
			return nil, frame.ErrShortFrame
		}
		f := new(frame.Frame)
		copy(f[:], pixels)
		return f, nil
	default:
		return nil, err
	}
}

// Stats returns the number of frames and the number of distinct images.
func (c *Catalog) Stats() (frames, images int64, err error) {
	if err = c.db.QueryRow("SELECT COUNT(*) FROM frame").Scan(&frames); err != nil {
		return
	}
	err = c.db.QueryRow("SELECT COUNT(*) FROM image").Scan(&images)
	return
}
