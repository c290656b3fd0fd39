package halfblock

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/bodgit/halfblock/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameRecorder struct {
	frames []*frame.Frame
}

func (r *frameRecorder) WriteFrame(f *frame.Frame) error {
	dup := *f
	r.frames = append(r.frames, &dup)
	return nil
}

func position(row, col int) string {
	return fmt.Sprintf("\x1b[%d;%df", row, col)
}

func background(n int) string {
	return fmt.Sprintf("\x1b[48;5;%dm", n)
}

func foreground(n int) string {
	return fmt.Sprintf("\x1b[38;5;%dm▄", n)
}

func cell(upper, lower int) string {
	return background(upper) + foreground(lower)
}

func feed(t *testing.T, d *Decoder, s string) {
	t.Helper()
	tok := NewTokenizer(d.process)
	_, err := tok.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, tok.Flush())
}

func TestDecoderPosition(t *testing.T) {
	r := new(frameRecorder)
	d := NewDecoder(r, nil)

	feed(t, d, position(31, 1)+cell(1, 2))
	_, _, x := d.Position()
	assert.Equal(t, 1, x)
	assert.Equal(t, 0, d.Frames())

	feed(t, d, position(30, 5))
	row, col, x := d.Position()
	assert.Equal(t, 30, row)
	assert.Equal(t, 5, col)
	assert.Equal(t, 0, x)
	assert.Equal(t, 1, d.Frames())
	require.Len(t, r.frames, 1)
}

func TestDecoderCell(t *testing.T) {
	d := NewDecoder(new(frameRecorder), nil)

	feed(t, d, position(32, 1)+cell(7, 7)+cell(7, 7)+cell(7, 7))
	_, _, x := d.Position()
	require.Equal(t, 3, x)

	feed(t, d, background(196)+"▄")
	_, _, x = d.Position()
	assert.Equal(t, byte(196), d.Framebuffer().At(3, 4))
	assert.Equal(t, 3, x)

	feed(t, d, foreground(21))
	_, _, x = d.Position()
	assert.Equal(t, byte(21), d.Framebuffer().At(3, 5))
	assert.Equal(t, 4, x)
}

func TestDecoderLastWriteWins(t *testing.T) {
	d := NewDecoder(new(frameRecorder), nil)

	feed(t, d, position(30, 1)+cell(10, 11)+position(30, 1)+cell(20, 21))
	assert.Equal(t, byte(20), d.Framebuffer().At(0, 0))
	assert.Equal(t, byte(21), d.Framebuffer().At(0, 1))
}

func TestDecoderNoOps(t *testing.T) {
	d := NewDecoder(new(frameRecorder), nil)

	feed(t, d, position(35, 1)+cell(1, 2)+"\x1b[?25l\x1b[?25h\x1b[2J\x1b[0m\n")
	row, _, x := d.Position()
	assert.Equal(t, 35, row)
	assert.Equal(t, 1, x)
	assert.Equal(t, byte(1), d.Framebuffer().At(0, 10))
	assert.Equal(t, byte(2), d.Framebuffer().At(0, 11))
	assert.Equal(t, 0, d.Frames())
}

func TestDecoderFramesAccumulate(t *testing.T) {
	r := new(frameRecorder)
	d := NewDecoder(r, nil)

	s := position(30, 1) + cell(1, 2) + position(31, 1) + cell(3, 4) +
		position(30, 1) + cell(5, 6)
	require.NoError(t, d.Decode(strings.NewReader(s)))

	require.Len(t, r.frames, 3)

	// First boundary is before anything is drawn
	assert.Equal(t, new(frame.Frame), r.frames[0])

	assert.Equal(t, byte(1), r.frames[1].At(0, 0))
	assert.Equal(t, byte(4), r.frames[1].At(0, 3))

	// The final frame is emitted at end of stream and keeps the residue of
	// the previous frame
	assert.Equal(t, byte(5), r.frames[2].At(0, 0))
	assert.Equal(t, byte(6), r.frames[2].At(0, 1))
	assert.Equal(t, byte(3), r.frames[2].At(0, 2))
	assert.Equal(t, 3, d.Frames())
}

func TestDecoderFinalFrame(t *testing.T) {
	r := new(frameRecorder)
	d := NewDecoder(r, nil)

	require.NoError(t, d.Decode(strings.NewReader(position(40, 1)+cell(9, 8))))
	require.Len(t, r.frames, 1)
	assert.Equal(t, byte(9), r.frames[0].At(0, 20))
	assert.Equal(t, byte(8), r.frames[0].At(0, 21))

	r = new(frameRecorder)
	require.NoError(t, NewDecoder(r, nil).Decode(strings.NewReader("")))
	assert.Len(t, r.frames, 1)
}

func TestDecoderUnrecognised(t *testing.T) {
	b := new(bytes.Buffer)
	w := frame.NewWriter(b)
	d := NewDecoder(w, nil)

	err := d.Decode(strings.NewReader(position(30, 1) + position(31, 1) + cell(1, 1) + "\x1b[99x" + position(30, 1)))
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, []byte("[99x"), fe.Buf)

	require.NoError(t, w.Flush())
	assert.Equal(t, 1, d.Frames())
	assert.Equal(t, frame.Size, b.Len())
}

func TestDecoderErrors(t *testing.T) {
	err := NewDecoder(new(frameRecorder), nil).Decode(strings.NewReader(cell(1, 2)))
	assert.True(t, errors.Is(err, ErrNoPosition))

	err = NewDecoder(new(frameRecorder), nil).Decode(strings.NewReader(position(29, 1) + cell(1, 2)))
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	err = NewDecoder(new(frameRecorder), nil).Decode(strings.NewReader(position(90, 1) + cell(1, 2)))
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	line := position(30, 1)
	for i := 0; i <= frame.Width; i++ {
		line += cell(1, 2)
	}
	err = NewDecoder(new(frameRecorder), nil).Decode(strings.NewReader(line))
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	errWrite := errors.New("write failed")
	err = NewDecoder(frameWriterFunc(func(*frame.Frame) error { return errWrite }), nil).Decode(strings.NewReader(position(30, 1)))
	assert.Equal(t, errWrite, err)
}

type frameWriterFunc func(*frame.Frame) error

func (fn frameWriterFunc) WriteFrame(f *frame.Frame) error {
	return fn(f)
}

// transcript returns a synthetic recording of n frames with random colours
func transcript(rng *rand.Rand, n int) string {
	var sb strings.Builder
	sb.WriteString("\x1b[?25l\x1b[2J")
	for i := 0; i < n; i++ {
		for row := 30; row < 30+frame.Height/2; row++ {
			sb.WriteString(position(row, 1))
			for x := rng.Intn(frame.Width); x > 0; x-- {
				sb.WriteString(cell(rng.Intn(256), rng.Intn(256)))
			}
			sb.WriteString("\x1b[0m\n")
		}
	}
	sb.WriteString("\x1b[0m\x1b[?25h")
	return sb.String()
}

func TestDecoderChunkBoundaries(t *testing.T) {
	s := transcript(rand.New(rand.NewSource(1)), 3)

	whole := new(frameRecorder)
	require.NoError(t, NewDecoder(whole, nil).Decode(strings.NewReader(s)))

	bytewise := new(frameRecorder)
	require.NoError(t, NewDecoder(bytewise, nil).Decode(iotest.OneByteReader(strings.NewReader(s))))

	half := new(frameRecorder)
	require.NoError(t, NewDecoder(half, nil).Decode(iotest.HalfReader(strings.NewReader(s))))

	assert.Len(t, whole.frames, 4)
	assert.Equal(t, whole.frames, bytewise.frames)
	assert.Equal(t, whole.frames, half.frames)
}

func TestDecoderOutputSize(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 4; n++ {
		b := new(bytes.Buffer)
		w := frame.NewWriter(b)
		require.NoError(t, NewDecoder(w, nil).Decode(strings.NewReader(transcript(rng, n))))
		require.NoError(t, w.Flush())

		assert.Equal(t, 0, b.Len()%frame.Size)
		assert.Equal(t, (n+1)*frame.Size, b.Len())
	}
}

func TestMultiFrameWriter(t *testing.T) {
	a, b, c := new(frameRecorder), new(frameRecorder), new(frameRecorder)
	w := MultiFrameWriter(MultiFrameWriter(a, b), c)

	require.NoError(t, NewDecoder(w, nil).Decode(strings.NewReader(position(30, 1))))
	assert.Len(t, a.frames, 2)
	assert.Len(t, b.frames, 2)
	assert.Len(t, c.frames, 2)
}
