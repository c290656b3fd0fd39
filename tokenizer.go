package halfblock

const esc = 0x1b

// Tokenizer splits a byte stream into command buffers delimited by ESC bytes.
// It implements io.Writer so it can be fed a stream in chunks of any size; a
// command split across two writes is reassembled. The ESC byte itself is never
// part of a command buffer.
type Tokenizer struct {
	buf []byte
	fn  func([]byte) error
	err error
}

// NewTokenizer returns a Tokenizer that calls fn with each non-empty command
// buffer. The slice passed to fn is reused so fn must not retain it.
func NewTokenizer(fn func([]byte) error) *Tokenizer {
	return &Tokenizer{
		buf: make([]byte, 0, 64),
		fn:  fn,
	}
}

func (t *Tokenizer) Write(p []byte) (int, error) {
	if t.err != nil {
		return 0, t.err
	}
	for i, b := range p {
		if b != esc {
			t.buf = append(t.buf, b)
			continue
		}
		if err := t.Flush(); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Flush hands any pending command buffer to the callback as if an ESC byte
// had been seen. It is called once at the end of the stream.
func (t *Tokenizer) Flush() error {
	if t.err != nil {
		return t.err
	}
	if len(t.buf) == 0 {
		return nil
	}
	err := t.fn(t.buf)
	t.buf = t.buf[:0]
	if err != nil {
		t.err = err
	}
	return err
}
