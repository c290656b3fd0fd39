package halfblock

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	seqHideCursor      = []byte("[?25l")
	seqShowCursor      = []byte("[?25h")
	seqClearScreen     = []byte("[2J")
	seqResetAttributes = []byte("[0m")

	prefixForeground = []byte("[38")
	prefixBackground = []byte("[48")

	// SGR 38/48 with mode 5 selects an xterm-256 palette entry
	paletteForeground = []byte("[38;5;")
	paletteBackground = []byte("[48;5;")

	// U+2584 LOWER HALF BLOCK
	glyphLowerHalfBlock = []byte{0xe2, 0x96, 0x84}
)

var (
	// ErrNoPosition is returned when a colour is set before any cursor
	// position has been seen.
	ErrNoPosition = errors.New("halfblock: colour set before cursor position")
	// ErrOutOfBounds is returned when a colour command targets a pixel
	// outside of the framebuffer.
	ErrOutOfBounds = errors.New("halfblock: pixel outside framebuffer")
)

// FormatError is returned for any command buffer that is not one of the
// recognised commands.
type FormatError struct {
	Buf []byte
}

func (e *FormatError) Error() string {
	var chars, hex strings.Builder
	for _, b := range e.Buf {
		if b >= 0x20 && b < 0x7f {
			fmt.Fprintf(&chars, "%2c ", b)
		} else {
			chars.WriteString(" . ")
		}
		fmt.Fprintf(&hex, "%02x ", b)
	}
	return fmt.Sprintf("halfblock: unrecognised command\n%s\n%s", strings.TrimRight(chars.String(), " "), strings.TrimRight(hex.String(), " "))
}

func formatError(buf []byte) error {
	return &FormatError{Buf: append([]byte(nil), buf...)}
}

// Command is a single classified command buffer. Row and Col are only set for
// KindPosition and Color is only set for KindBackground and KindForeground.
type Command struct {
	Kind  Kind
	Row   int
	Col   int
	Color int
}

// Parse classifies the bytes following an ESC byte. A single trailing line
// feed is ignored. Anything that isn't a recognised command returns a
// *FormatError.
func Parse(buf []byte) (Command, error) {
	b := buf
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}

	switch {
	case len(b) == 0:
		return Command{}, formatError(buf)
	case bytes.Equal(b, seqHideCursor):
		return Command{Kind: KindHideCursor}, nil
	case bytes.Equal(b, seqShowCursor):
		return Command{Kind: KindShowCursor}, nil
	case bytes.Equal(b, seqClearScreen):
		return Command{Kind: KindClearScreen}, nil
	case bytes.Equal(b, seqResetAttributes):
		return Command{Kind: KindResetAttributes}, nil
	case b[len(b)-1] == 'f':
		return parsePosition(buf, b)
	case bytes.HasPrefix(b, prefixForeground):
		return parseColor(buf, b, KindForeground, paletteForeground)
	case bytes.HasPrefix(b, prefixBackground):
		return parseColor(buf, b, KindBackground, paletteBackground)
	default:
		return Command{}, formatError(buf)
	}
}

// The recorder writes the row first, then the column
func parsePosition(buf, b []byte) (Command, error) {
	if b[0] != '[' {
		return Command{}, formatError(buf)
	}

	fields := bytes.Split(b[1:len(b)-1], []byte{';'})
	if len(fields) != 2 {
		return Command{}, formatError(buf)
	}

	row, ok := atoi(fields[0])
	if !ok {
		return Command{}, formatError(buf)
	}
	col, ok := atoi(fields[1])
	if !ok {
		return Command{}, formatError(buf)
	}

	return Command{Kind: KindPosition, Row: row, Col: col}, nil
}

func parseColor(buf, b []byte, kind Kind, prefix []byte) (Command, error) {
	b = bytes.TrimSuffix(b, glyphLowerHalfBlock)

	if !bytes.HasPrefix(b, prefix) || b[len(b)-1] != 'm' {
		return Command{}, formatError(buf)
	}

	color, ok := atoi(b[len(prefix) : len(b)-1])
	if !ok {
		return Command{}, formatError(buf)
	}

	return Command{Kind: kind, Color: color}, nil
}

func atoi(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, false
	}
	return n, true
}
