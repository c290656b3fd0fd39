package frame

import (
	"errors"
	"io"
)

// ErrShortFrame is returned when the data ends part way through a frame.
var ErrShortFrame = errors.New("frame: not enough frame data")

// Reader reads consecutive frames from an underlying io.Reader.
type Reader struct {
	r io.Reader
	n int
}

// NewReader returns a Reader reading frames from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read fills f with the next frame. It returns io.EOF when there are no more
// frames and ErrShortFrame if the data stops part way through a frame.
func (r *Reader) Read(f *Frame) error {
	switch _, err := io.ReadFull(r.r, f[:]); err {
	case nil:
	case io.ErrUnexpectedEOF:
		return ErrShortFrame
	default:
		return err
	}
	r.n++
	return nil
}

// Frames returns the number of frames read so far.
func (r *Reader) Frames() int {
	return r.n
}

// Decode reads a single frame from r.
func Decode(r io.Reader) (*Frame, error) {
	f := new(Frame)
	if err := NewReader(r).Read(f); err != nil {
		if err == io.EOF {
			return nil, ErrShortFrame
		}
		return nil, err
	}
	return f, nil
}

// ReadAll reads every frame from r.
func ReadAll(r io.Reader) ([]*Frame, error) {
	fr := NewReader(r)
	var frames []*Frame
	for {
		f := new(Frame)
		switch err := fr.Read(f); err {
		case nil:
			frames = append(frames, f)
		case io.EOF:
			return frames, nil
		default:
			return nil, err
		}
	}
}
