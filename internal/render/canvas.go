package render

import (
	"image"
	"image/color"
)

// TextDraw is a text draw recorded by a Canvas.
type TextDraw struct {
	Pos  image.Point
	Text string
}

// Canvas is an in-memory Target. Text draws are recorded rather than
// rasterised; the presenting host decides how to show them.
type Canvas struct {
	img   *image.RGBA
	clear color.RGBA
	texts []TextDraw
	xs    []int
}

// NewCanvas returns a canvas of the given size filled with the clear colour.
func NewCanvas(width, height int, clear color.RGBA) *Canvas {
	c := &Canvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		clear: clear,
	}
	c.fill()
	return c
}

func (c *Canvas) Size() (int, int) {
	return c.img.Rect.Dx(), c.img.Rect.Dy()
}

// Image returns the backing image. It is overwritten by the next frame.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Texts returns the text draws since the last Clear, in draw order.
func (c *Canvas) Texts() []TextDraw {
	return c.texts
}

func (c *Canvas) Clear() error {
	c.fill()
	c.texts = c.texts[:0]
	return nil
}

func (c *Canvas) fill() {
	pix := c.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = c.clear.R
		pix[i+1] = c.clear.G
		pix[i+2] = c.clear.B
		pix[i+3] = 0xff
	}
}

func (c *Canvas) DrawAdditive(src *image.RGBA, dst image.Rectangle) error {
	if src == nil || src.Rect.Empty() {
		return ErrNoSource
	}
	clip := dst.Intersect(c.img.Rect)
	if clip.Empty() {
		return nil
	}

	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	dw, dh := dst.Dx(), dst.Dy()

	if cap(c.xs) < clip.Dx() {
		c.xs = make([]int, clip.Dx())
	}
	xs := c.xs[:clip.Dx()]
	for i := range xs {
		xs[i] = src.Rect.Min.X + (clip.Min.X+i-dst.Min.X)*sw/dw
	}

	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		sy := src.Rect.Min.Y + (y-dst.Min.Y)*sh/dh
		row := c.img.PixOffset(clip.Min.X, y)
		for i, sx := range xs {
			so := src.PixOffset(sx, sy)
			do := row + i*4
			c.img.Pix[do] = addSat(c.img.Pix[do], src.Pix[so])
			c.img.Pix[do+1] = addSat(c.img.Pix[do+1], src.Pix[so+1])
			c.img.Pix[do+2] = addSat(c.img.Pix[do+2], src.Pix[so+2])
		}
	}
	return nil
}

func (c *Canvas) DrawText(pos image.Point, text string) error {
	c.texts = append(c.texts, TextDraw{Pos: pos, Text: text})
	return nil
}

func addSat(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 0xff {
		return 0xff
	}
	return uint8(s)
}
