// Package content provides the source image the demo blooms: a file under
// the content root, or a generated pattern.
package content

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	ErrUnknownPattern = errors.New("content: unknown pattern")
	ErrInvalidSize    = errors.New("content: invalid image size")
)

// Resolve returns name joined to root unless name is already absolute.
func Resolve(root, name string) string {
	if filepath.IsAbs(name) || root == "" {
		return name
	}
	return filepath.Join(root, name)
}

// Load decodes a PNG or JPEG image into an RGBA image anchored at the origin.
func Load(root, name string) (*image.RGBA, error) {
	path := Resolve(root, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: %s (%s) is empty", ErrInvalidSize, path, format)
	}

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out, nil
}

// Generate renders the named pattern at width x height. Pattern values are
// mapped to hue with brightness peaking on the crests, so the threshold has
// something to cut.
func Generate(pattern string, width, height int) (*image.RGBA, error) {
	fn, ok := patternRegistry[pattern]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, pattern)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		vy := coord(y, height)
		row := y * out.Stride
		for x := 0; x < width; x++ {
			v := (fn(coord(x, width), vy) + 1) * 0.5
			v = math.Max(0, math.Min(1, v))
			r, g, b := colorful.Hsv(v*300, 0.85, math.Pow(v, 1.6)).Clamped().RGB255()
			o := row + x*4
			out.Pix[o] = r
			out.Pix[o+1] = g
			out.Pix[o+2] = b
			out.Pix[o+3] = 0xff
		}
	}
	return out, nil
}

func coord(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i)/float64(n) - 0.5
}
