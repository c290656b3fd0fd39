/*
Package render turns decoded frames into images and text.

Every byte of a frame is an index into the standard xterm 256 colour palette:
16 system colours, a 6x6x6 colour cube and a 24 step greyscale ramp. Frames can
be converted to paletted images, reduced to fewer colours, encoded as PNG or
animated GIF, or printed as ASCII art using a brightness ramp.
*/
package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/bodgit/halfblock/frame"
	"github.com/ericpauley/go-quantize/quantize"
)

var system = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xff},
	{0x80, 0x00, 0x00, 0xff},
	{0x00, 0x80, 0x00, 0xff},
	{0x80, 0x80, 0x00, 0xff},
	{0x00, 0x00, 0x80, 0xff},
	{0x80, 0x00, 0x80, 0xff},
	{0x00, 0x80, 0x80, 0xff},
	{0xc0, 0xc0, 0xc0, 0xff},
	{0x80, 0x80, 0x80, 0xff},
	{0xff, 0x00, 0x00, 0xff},
	{0x00, 0xff, 0x00, 0xff},
	{0xff, 0xff, 0x00, 0xff},
	{0x00, 0x00, 0xff, 0xff},
	{0xff, 0x00, 0xff, 0xff},
	{0x00, 0xff, 0xff, 0xff},
	{0xff, 0xff, 0xff, 0xff},
}

var cubeLevels = [6]uint8{0x00, 0x5f, 0x87, 0xaf, 0xd7, 0xff}

// Palette is the xterm 256 colour palette.
var Palette = xterm()

func xterm() color.Palette {
	p := make(color.Palette, 0, 256)
	for _, c := range system {
		p = append(p, c)
	}
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p = append(p, color.RGBA{cubeLevels[r], cubeLevels[g], cubeLevels[b], 0xff})
			}
		}
	}
	for i := 0; i < 24; i++ {
		v := uint8(8 + 10*i)
		p = append(p, color.RGBA{v, v, v, 0xff})
	}
	return p
}

// Image returns f as a paletted image using the xterm palette.
func Image(f *frame.Frame) *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, frame.Width, frame.Height), Palette)
	copy(m.Pix, f[:])
	return m
}

// Reduce returns a copy of m using no more than n colours chosen by median
// cut quantization.
func Reduce(m image.Image, n int) *image.Paletted {
	b := m.Bounds()
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, n), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)
	return pm
}

// Luminance returns the relative luminance of palette entry i between 0 and
// 1.
func Luminance(i byte) float64 {
	r, g, b, _ := Palette[i].RGBA()
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 0xffff
}
