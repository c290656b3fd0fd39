package render

import (
	"bufio"
	"errors"
	"image"
	"image/gif"
	"image/png"
	"io"

	"github.com/bodgit/halfblock/frame"
)

// DefaultDelay is the GIF frame delay in 100ths of a second, roughly 30
// frames per second.
const DefaultDelay = 3

// DefaultRamp is ordered from the character with the most ink to the least.
const DefaultRamp = "@MW#B8&%$QNHgR0DOmKAE9G6bdpqUXZPkSwhaV54eF3yCx2ouYnTz1sfJ{}Lt7jI[]lv?ci)(r|/\\*<>+=!;:~^\"-_,'`. "

// Options controls how frames are encoded. A nil *Options uses the defaults.
type Options struct {
	// Delay between frames in 100ths of a second
	Delay int
	// Colors limits each frame to this many colours; 0 keeps the full
	// palette
	Colors int
	// Diff marks pixels that changed since the previous frame
	Diff bool
}

func (o *Options) image(prev, f *frame.Frame) *image.Paletted {
	m := Image(f)
	if o != nil && o.Diff {
		m = Diff(prev, f)
	}
	if o != nil && o.Colors > 0 && o.Colors < len(Palette) {
		return Reduce(m, o.Colors)
	}
	return m
}

func (o *Options) delay() int {
	if o == nil || o.Delay <= 0 {
		return DefaultDelay
	}
	return o.Delay
}

// DiffMarker is the palette index used by Diff for changed pixels.
const DiffMarker = 9

// Diff returns f as a paletted image with every pixel that differs from prev
// replaced by DiffMarker. With no previous frame nothing is marked.
func Diff(prev, f *frame.Frame) *image.Paletted {
	m := Image(f)
	if prev == nil {
		return m
	}
	for i := range f {
		if f[i] != prev[i] {
			m.Pix[i] = DiffMarker
		}
	}
	return m
}

// EncodeGIF writes frames to w as an animated GIF.
func EncodeGIF(w io.Writer, frames []*frame.Frame, o *Options) error {
	if len(frames) == 0 {
		return errors.New("render: no frames")
	}

	g := &gif.GIF{
		Image: make([]*image.Paletted, 0, len(frames)),
		Delay: make([]int, 0, len(frames)),
	}
	var prev *frame.Frame
	for _, f := range frames {
		g.Image = append(g.Image, o.image(prev, f))
		prev = f
		g.Delay = append(g.Delay, o.delay())
	}

	return gif.EncodeAll(w, g)
}

// EncodePNG writes the single frame f to w as a PNG image.
func EncodePNG(w io.Writer, f *frame.Frame, o *Options) error {
	return png.Encode(w, o.image(nil, f))
}

// Text writes f to w as ASCII art with one character per pixel chosen from
// the runes of ramp by luminance. If inverse is set dark pixels use the lightest
// characters instead.
func Text(w io.Writer, f *frame.Frame, ramp string, inverse bool) error {
	if ramp == "" {
		ramp = DefaultRamp
	}
	chars := []rune(ramp)

	bw := bufio.NewWriter(w)
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			l := Luminance(f.At(x, y))
			if inverse {
				l = 1 - l
			}
			i := int(l * float64(len(chars)))
			if i >= len(chars) {
				i = len(chars) - 1
			}
			if _, err := bw.WriteRune(chars[i]); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
