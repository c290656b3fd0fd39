/*
Package chunk implements the packaging of decoded frames for playback.

Frames are grouped into chunks of 300, ten seconds at 30 frames per second,
and each chunk is written as a zstd compressed file of raw frames named with
a common prefix and a two digit chunk index, for example
"bad_apple_160x120_xterm256_chunk07.zst". A player only needs to fetch and
decompress the chunk containing the frame it is about to show.
*/
package chunk

import (
	"fmt"
	"io"

	"github.com/bodgit/halfblock/frame"
	"github.com/klauspost/compress/zstd"
)

const (
	// FramesPerChunk is the number of frames in every chunk except possibly
	// the last
	FramesPerChunk = 300

	// Size is the number of uncompressed bytes in a full chunk
	Size = FramesPerChunk * frame.Size

	// Ext is the file extension of chunk files
	Ext = ".zst"
)

// Name returns the filename of chunk i.
func Name(prefix string, i int) string {
	return fmt.Sprintf("%s%02d%s", prefix, i, Ext)
}

// Locate returns the chunk holding frame n and the index of the frame within
// that chunk.
func Locate(n int) (chunk, offset int) {
	return n / FramesPerChunk, n % FramesPerChunk
}

// Encode writes the raw frames in b to w as a single compressed chunk.
func Encode(w io.Writer, b []byte) error {
	if len(b)%frame.Size != 0 {
		return frame.ErrShortFrame
	}

	if len(b) > Size {
		return fmt.Errorf("chunk: %d frames is more than %d", len(b)/frame.Size, FramesPerChunk)
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}

	if _, err := zw.Write(b); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}

// Decode reads a compressed chunk from r and returns the raw frames.
func Decode(r io.Reader) ([]byte, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	b, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}

	if len(b)%frame.Size != 0 {
		return nil, frame.ErrShortFrame
	}

	return b, nil
}

// Frame returns frame i from the raw frames in b.
func Frame(b []byte, i int) (*frame.Frame, error) {
	if i < 0 || (i+1)*frame.Size > len(b) {
		return nil, fmt.Errorf("chunk: no frame %d", i)
	}
	f := new(frame.Frame)
	copy(f[:], b[i*frame.Size:])
	return f, nil
}
