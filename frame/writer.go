package frame

import (
	"bufio"
	"io"
)

// Writer appends frames to an underlying io.Writer. Each frame is written as
// Height rows of Width bytes with nothing between frames.
type Writer struct {
	w *bufio.Writer
	n int
}

// NewWriter returns a Writer appending frames to w. Callers must call Flush
// once the last frame has been written.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w: bufio.NewWriterSize(w, Size),
	}
}

// WriteFrame appends f.
func (w *Writer) WriteFrame(f *Frame) error {
	for y := 0; y < Height; y++ {
		if _, err := w.w.Write(f.Row(y)); err != nil {
			return err
		}
	}
	w.n++
	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int {
	return w.n
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Encode writes the single frame f to w.
func Encode(w io.Writer, f *Frame) error {
	fw := NewWriter(w)
	if err := fw.WriteFrame(f); err != nil {
		return err
	}
	return fw.Flush()
}
