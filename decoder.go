package halfblock

import (
	"fmt"
	"io"
	"log"

	"github.com/bodgit/halfblock/frame"
)

const (
	// The recorder draws the first row of each frame on this terminal row
	originRow = 30

	readSize = 4096
)

// result is what executing a command hands back to the decoder loop; either
// noOp or positionUpdate.
type result interface {
	isResult()
}

type noOp struct{}

type positionUpdate struct {
	row, col int
}

func (noOp) isResult() {}

func (positionUpdate) isResult() {}

// Decoder holds the state of a single decoding run: the framebuffer, the
// cursor and the number of frames emitted so far. The framebuffer is never
// cleared so each frame is drawn on top of the previous one.
type Decoder struct {
	w      FrameWriter
	logger *log.Logger

	fb frame.Frame

	row, col   int
	positioned bool

	// Horizontal write pointer within the current row pair
	x int

	frames int
}

// NewDecoder returns a Decoder that emits completed frames to w.
func NewDecoder(w FrameWriter, logger *log.Logger) *Decoder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Decoder{
		w:      w,
		logger: logger,
	}
}

// Decode reads the whole transcript from r. A frame is emitted every time the
// cursor is positioned on the origin row and once more after the end of the
// stream. Any unrecognised command stops decoding with an error.
func (d *Decoder) Decode(r io.Reader) error {
	t := NewTokenizer(d.process)

	buf := make([]byte, readSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, err := t.Write(buf[:n]); err != nil {
				return err
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("halfblock: reading transcript: %w", err)
		}
	}

	if err := t.Flush(); err != nil {
		return err
	}

	return d.emit()
}

func (d *Decoder) process(buf []byte) error {
	cmd, err := Parse(buf)
	if err != nil {
		return err
	}

	res, err := d.execute(cmd)
	if err != nil {
		return err
	}

	switch res := res.(type) {
	case noOp:
		return nil
	case positionUpdate:
		d.row, d.col, d.positioned = res.row, res.col, true
		if res.row == originRow {
			return d.emit()
		}
		return nil
	default:
		return fmt.Errorf("halfblock: unexpected result %T", res)
	}
}

func (d *Decoder) execute(cmd Command) (result, error) {
	switch cmd.Kind {
	case KindHideCursor, KindShowCursor, KindClearScreen, KindResetAttributes:
		return noOp{}, nil
	case KindPosition:
		d.x = 0
		return positionUpdate{cmd.Row, cmd.Col}, nil
	case KindBackground, KindForeground:
		if !d.positioned {
			return nil, ErrNoPosition
		}

		y := (d.row - originRow) * 2
		if cmd.Kind == KindForeground {
			y++
		}
		if !frame.In(d.x, y) {
			return nil, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, d.x, y)
		}

		d.fb.Set(d.x, y, byte(cmd.Color))

		// Foreground is painted last so it completes the cell
		if cmd.Kind == KindForeground {
			d.x++
		}
		return noOp{}, nil
	default:
		return nil, fmt.Errorf("halfblock: unknown command kind %d", cmd.Kind)
	}
}

func (d *Decoder) emit() error {
	if err := d.w.WriteFrame(&d.fb); err != nil {
		return err
	}
	d.frames++
	d.logger.Printf("Frame %d\n", d.frames)
	return nil
}

// Frames returns the number of frames emitted so far.
func (d *Decoder) Frames() int {
	return d.frames
}

// Framebuffer returns the current contents of the framebuffer.
func (d *Decoder) Framebuffer() *frame.Frame {
	return &d.fb
}

// Position returns the most recent cursor position and the horizontal write
// pointer.
func (d *Decoder) Position() (row, col, x int) {
	return d.row, d.col, d.x
}
