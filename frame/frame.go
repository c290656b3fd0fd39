/*
Package frame implements the raw framebuffer format written by the transcript
decoder.

A frame is exactly 120 rows of 160 bytes where each byte is an xterm-256
palette index. Rows are written top to bottom and frames are concatenated with
no header, index or delimiter, so the number of frames in a file is simply its
size divided by 19200 bytes.
*/
package frame

import "fmt"

const (
	// Width is the number of pixels in each row
	Width = 160
	// Height is the number of rows in each frame
	Height = 120
	// Size is the number of bytes in each frame
	Size = Width * Height
)

// Frame is a single framebuffer of palette indices stored in row order.
type Frame [Size]byte

// At returns the palette index at column x of row y.
func (f *Frame) At(x, y int) byte {
	return f[y*Width+x]
}

// Set stores the palette index v at column x of row y.
func (f *Frame) Set(x, y int, v byte) {
	f[y*Width+x] = v
}

// Row returns row y as a slice sharing the frame storage.
func (f *Frame) Row(y int) []byte {
	return f[y*Width : (y+1)*Width]
}

// In reports whether (x, y) lies within the frame.
func In(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// Count returns the number of frames held in size bytes.
func Count(size int64) (int64, error) {
	if size%Size != 0 {
		return 0, fmt.Errorf("frame: %d bytes is not a multiple of %d", size, Size)
	}
	return size / Size, nil
}
