/*
Package halfblock is a library for reconstructing pixel animations from
recorded terminal transcripts.

The transcripts draw each frame with xterm-256 colours using the half block
trick: every terminal cell holds two vertically stacked pixels, the background
colour painting the upper pixel and the foreground colour painting the lower
pixel under a lower half block glyph. Decoding replays the narrow set of
escape sequences written by the recorder into a framebuffer and writes each
completed frame out in the raw format described by package frame.
*/
package halfblock

import "github.com/bodgit/halfblock/frame"

// FrameWriter is implemented by anything that accepts completed frames.
type FrameWriter interface {
	WriteFrame(*frame.Frame) error
}

type multiFrameWriter struct {
	writers []FrameWriter
}

func (m *multiFrameWriter) WriteFrame(f *frame.Frame) error {
	for _, w := range m.writers {
		if err := w.WriteFrame(f); err != nil {
			return err
		}
	}
	return nil
}

// MultiFrameWriter creates a FrameWriter that duplicates each frame to all of
// the provided writers, in order, stopping at the first error.
func MultiFrameWriter(writers ...FrameWriter) FrameWriter {
	all := make([]FrameWriter, 0, len(writers))
	for _, w := range writers {
		if mw, ok := w.(*multiFrameWriter); ok {
			all = append(all, mw.writers...)
		} else {
			all = append(all, w)
		}
	}
	return &multiFrameWriter{all}
}
