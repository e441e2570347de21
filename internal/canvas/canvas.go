// Package canvas holds the pixel grid that ping events draw on.
package canvas

import (
	"errors"
	"image"
	"image/color"
)

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

type Pixel struct {
	X     uint16 `json:"x"`
	Y     uint16 `json:"y"`
	Color Color  `json:"color"`
}

var (
	White   = Color{255, 255, 255}
	Black   = Color{0, 0, 0}
	Red     = Color{255, 0, 0}
	Green   = Color{0, 255, 0}
	Blue    = Color{0, 0, 255}
	Yellow  = Color{255, 255, 0}
	Cyan    = Color{0, 255, 255}
	Magenta = Color{255, 0, 255}
)

var ErrOutOfBounds = errors.New("pixel out of canvas bounds")

// Canvas is a flat row-major pixel buffer, white initialized.
// Not safe for concurrent use, see Shared.
type Canvas struct {
	width  uint16
	height uint16
	data   []Color
}

func New(width, height uint16) *Canvas {
	data := make([]Color, int(width)*int(height))
	for i := range data {
		data[i] = White
	}
	return &Canvas{width: width, height: height, data: data}
}

func (c *Canvas) Width() uint16  { return c.width }
func (c *Canvas) Height() uint16 { return c.height }

func (c *Canvas) Get(x, y uint16) (Color, bool) {
	if x >= c.width || y >= c.height {
		return Color{}, false
	}
	return c.data[int(y)*int(c.width)+int(x)], true
}

func (c *Canvas) Set(x, y uint16, col Color) error {
	if x >= c.width || y >= c.height {
		return ErrOutOfBounds
	}
	c.data[int(y)*int(c.width)+int(x)] = col
	return nil
}

func (c *Canvas) Clone() *Canvas {
	data := make([]Color, len(c.data))
	copy(data, c.data)
	return &Canvas{width: c.width, height: c.height, data: data}
}

// Pixels calls f for every pixel in row-major order.
func (c *Canvas) Pixels(f func(p Pixel)) {
	for y := uint16(0); y < c.height; y++ {
		for x := uint16(0); x < c.width; x++ {
			f(Pixel{X: x, Y: y, Color: c.data[int(y)*int(c.width)+int(x)]})
		}
	}
}

// Image renders the canvas into an RGBA image for snapshot encoding.
func (c *Canvas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(c.width), int(c.height)))
	c.Pixels(func(p Pixel) {
		img.SetRGBA(int(p.X), int(p.Y), color.RGBA{R: p.Color.R, G: p.Color.G, B: p.Color.B, A: 255})
	})
	return img
}
