package bloom

import (
	"fmt"
	"image"
	"math"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/mjibson/go-dsp/window"
)

const presetsFile = "presets.yaml"

// DefaultSettings mirrors the defaults the demo starts with.
func DefaultSettings() Settings {
	return Settings{
		Preset:       Wide,
		Threshold:    0.8,
		StreakLength: 1,
		UseLuminance: true,
	}
}

// plane is an RGB float buffer, three values per pixel.
type plane struct {
	w, h int
	pix  []float32
}

func (p *plane) resize(w, h int) {
	p.w, p.h = w, h
	n := w * h * 3
	if cap(p.pix) < n {
		p.pix = make([]float32, n)
	} else {
		p.pix = p.pix[:n]
	}
}

// CPU is a software Engine. It extracts bright regions, walks a chain of
// half-size levels blurring each one, and sums the chain back up weighted by
// the preset's per-pass strength.
type CPU struct {
	settings Settings
	bundles  map[Preset]Bundle
	maxW     int
	maxH     int
	workers  int

	levels  []plane
	scratch plane
	accum   [2]plane
	kernels map[int][]float32
	out     *image.RGBA
	closed  bool
}

// NewCPU loads the engine for output up to width x height. Preset overrides
// are read from presets.yaml under contentRoot when present.
func NewCPU(contentRoot string, width, height int) (*CPU, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	path := ""
	if contentRoot != "" {
		path = filepath.Join(contentRoot, presetsFile)
	}
	bundles, err := loadBundles(path)
	if err != nil {
		return nil, err
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}

	return &CPU{
		settings: DefaultSettings(),
		bundles:  bundles,
		maxW:     width,
		maxH:     height,
		workers:  workers,
		kernels:  make(map[int][]float32),
	}, nil
}

func (c *CPU) Configure(s Settings) {
	c.settings = s
}

func (c *CPU) DownsamplePasses() int {
	return c.bundle().Passes
}

func (c *CPU) bundle() Bundle {
	return c.Bundle(c.settings.Preset)
}

// Bundle returns the parameters p expands to, after overrides. Unknown
// presets fall back to Wide.
func (c *CPU) Bundle(p Preset) Bundle {
	if b, ok := c.bundles[p]; ok {
		return b
	}
	return c.bundles[Wide]
}

func (c *CPU) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.levels = nil
	c.scratch = plane{}
	c.accum = [2]plane{}
	c.out = nil
	return nil
}

func (c *CPU) Draw(src *image.RGBA, width, height int) (*image.RGBA, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if src == nil || src.Rect.Empty() {
		return nil, ErrNoSource
	}
	if width <= 0 || height <= 0 || width > c.maxW || height > c.maxH {
		return nil, fmt.Errorf("%w: %dx%d (max %dx%d)", ErrInvalidSize, width, height, c.maxW, c.maxH)
	}

	b := c.bundle()
	if len(c.levels) < b.Passes+1 {
		levels := make([]plane, b.Passes+1)
		copy(levels, c.levels)
		c.levels = levels
	}

	base := &c.levels[0]
	base.resize(width, height)
	c.extract(src, base)

	streak := c.settings.StreakLength
	if streak < 1 {
		streak = 1
	}

	last := 0
	for i := 1; i <= b.Passes; i++ {
		prev := &c.levels[i-1]
		if prev.w == 1 && prev.h == 1 {
			break
		}
		lvl := &c.levels[i]
		downsample(prev, lvl)
		radius := b.Radius[i-1]
		c.blur(lvl, c.kernel(radius*float64(streak)), c.kernel(radius))
		last = i
	}

	acc := &c.accum[0]
	top := &c.levels[last]
	strength := float32(1)
	if last > 0 {
		strength = float32(b.Strength[last-1])
	}
	acc.resize(top.w, top.h)
	for i, v := range top.pix {
		acc.pix[i] = v * strength
	}
	for i := last - 1; i >= 1; i-- {
		lvl := &c.levels[i]
		next := &c.accum[1]
		if acc == next {
			next = &c.accum[0]
		}
		c.upsampleAdd(acc, lvl, float32(b.Strength[i-1]), next)
		acc = next
	}

	c.resolve(acc, width, height)
	return c.out, nil
}

// extract stretches src to dst and keeps the part of each pixel above the
// threshold, rescaled so the surviving range spans [0, 1].
func (c *CPU) extract(src *image.RGBA, dst *plane) {
	threshold := float32(clamp01(c.settings.Threshold))
	if threshold >= 1 {
		clear(dst.pix)
		return
	}
	span := 1 - threshold
	useLum := c.settings.UseLuminance
	sw := src.Rect.Dx()
	sh := src.Rect.Dy()

	c.forRows(dst.h, func(y int) {
		sy := src.Rect.Min.Y + y*sh/dst.h
		row := y * dst.w * 3
		for x := 0; x < dst.w; x++ {
			sx := src.Rect.Min.X + x*sw/dst.w
			off := src.PixOffset(sx, sy)
			r := float32(src.Pix[off]) / 255
			g := float32(src.Pix[off+1]) / 255
			b := float32(src.Pix[off+2]) / 255
			o := row + x*3
			if useLum {
				lum := 0.2126*r + 0.7152*g + 0.0722*b
				k := float32(0)
				if lum > threshold {
					k = (lum - threshold) / span
				}
				dst.pix[o] = r * k
				dst.pix[o+1] = g * k
				dst.pix[o+2] = b * k
				continue
			}
			dst.pix[o] = cutoff(r, threshold, span)
			dst.pix[o+1] = cutoff(g, threshold, span)
			dst.pix[o+2] = cutoff(b, threshold, span)
		}
	})
}

func cutoff(v, threshold, span float32) float32 {
	if v <= threshold {
		return 0
	}
	return (v - threshold) / span
}

// downsample writes a 2x2 box-filtered half-size copy of src into dst.
func downsample(src, dst *plane) {
	w := src.w / 2
	h := src.h / 2
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst.resize(w, h)

	for y := 0; y < h; y++ {
		y0 := minInt(2*y, src.h-1)
		y1 := minInt(2*y+1, src.h-1)
		for x := 0; x < w; x++ {
			x0 := minInt(2*x, src.w-1)
			x1 := minInt(2*x+1, src.w-1)
			o := (y*w + x) * 3
			a := (y0*src.w + x0) * 3
			b := (y0*src.w + x1) * 3
			cc := (y1*src.w + x0) * 3
			d := (y1*src.w + x1) * 3
			for ch := 0; ch < 3; ch++ {
				dst.pix[o+ch] = (src.pix[a+ch] + src.pix[b+ch] + src.pix[cc+ch] + src.pix[d+ch]) * 0.25
			}
		}
	}
}

// blur runs a separable convolution: kx along rows, then ky along columns.
func (c *CPU) blur(p *plane, kx, ky []float32) {
	tmp := &c.scratch
	tmp.resize(p.w, p.h)
	rx := len(kx) / 2
	ry := len(ky) / 2

	c.forRows(p.h, func(y int) {
		row := y * p.w
		for x := 0; x < p.w; x++ {
			var r, g, b float32
			for i, wgt := range kx {
				sx := clampInt(x+i-rx, 0, p.w-1)
				o := (row + sx) * 3
				r += p.pix[o] * wgt
				g += p.pix[o+1] * wgt
				b += p.pix[o+2] * wgt
			}
			o := (row + x) * 3
			tmp.pix[o] = r
			tmp.pix[o+1] = g
			tmp.pix[o+2] = b
		}
	})

	c.forRows(p.h, func(y int) {
		for x := 0; x < p.w; x++ {
			var r, g, b float32
			for i, wgt := range ky {
				sy := clampInt(y+i-ry, 0, p.h-1)
				o := (sy*p.w + x) * 3
				r += tmp.pix[o] * wgt
				g += tmp.pix[o+1] * wgt
				b += tmp.pix[o+2] * wgt
			}
			o := (y*p.w + x) * 3
			p.pix[o] = r
			p.pix[o+1] = g
			p.pix[o+2] = b
		}
	})
}

// kernel returns normalized weights spanning 2*radius+1 taps, shaped by the
// interior of a Hann window.
func (c *CPU) kernel(radius float64) []float32 {
	r := int(math.Round(radius))
	if r < 1 {
		r = 0
	}
	if k, ok := c.kernels[r]; ok {
		return k
	}

	taps := 2*r + 1
	weights := window.Hann(taps + 2)[1 : taps+1]
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	k := make([]float32, taps)
	for i, w := range weights {
		k[i] = float32(w / sum)
	}
	c.kernels[r] = k
	return k
}

// upsampleAdd writes bilinear(src -> lvl size) + lvl*strength into dst.
func (c *CPU) upsampleAdd(src, lvl *plane, strength float32, dst *plane) {
	dst.resize(lvl.w, lvl.h)
	c.forRows(lvl.h, func(y int) {
		for x := 0; x < lvl.w; x++ {
			r, g, b := sampleBilinear(src, x, y, lvl.w, lvl.h)
			o := (y*lvl.w + x) * 3
			dst.pix[o] = r + lvl.pix[o]*strength
			dst.pix[o+1] = g + lvl.pix[o+1]*strength
			dst.pix[o+2] = b + lvl.pix[o+2]*strength
		}
	})
}

// resolve scales acc to width x height into the reusable output image.
func (c *CPU) resolve(acc *plane, width, height int) {
	if c.out == nil || c.out.Rect.Dx() != width || c.out.Rect.Dy() != height {
		c.out = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	out := c.out
	c.forRows(height, func(y int) {
		for x := 0; x < width; x++ {
			r, g, b := sampleBilinear(acc, x, y, width, height)
			o := out.PixOffset(x, y)
			out.Pix[o] = toByte(r)
			out.Pix[o+1] = toByte(g)
			out.Pix[o+2] = toByte(b)
			out.Pix[o+3] = 0xff
		}
	})
}

// sampleBilinear samples src at the centre of pixel (x, y) of a dstW x dstH grid.
func sampleBilinear(src *plane, x, y, dstW, dstH int) (float32, float32, float32) {
	fx := (float32(x)+0.5)*float32(src.w)/float32(dstW) - 0.5
	fy := (float32(y)+0.5)*float32(src.h)/float32(dstH) - 0.5
	if fx < 0 {
		fx = 0
	}
	if fy < 0 {
		fy = 0
	}
	x0 := minInt(int(fx), src.w-1)
	y0 := minInt(int(fy), src.h-1)
	x1 := minInt(x0+1, src.w-1)
	y1 := minInt(y0+1, src.h-1)
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	var out [3]float32
	for ch := 0; ch < 3; ch++ {
		a := src.pix[(y0*src.w+x0)*3+ch]
		b := src.pix[(y0*src.w+x1)*3+ch]
		cc := src.pix[(y1*src.w+x0)*3+ch]
		d := src.pix[(y1*src.w+x1)*3+ch]
		top := a + (b-a)*tx
		bottom := cc + (d-cc)*tx
		out[ch] = top + (bottom-top)*ty
	}
	return out[0], out[1], out[2]
}

func (c *CPU) forRows(rows int, fn func(y int)) {
	workers := c.workers
	if workers > rows {
		workers = rows
	}
	if workers <= 1 {
		for y := 0; y < rows; y++ {
			fn(y)
		}
		return
	}

	var wg sync.WaitGroup
	jobs := make(chan int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range jobs {
				fn(y)
			}
		}()
	}
	for y := 0; y < rows; y++ {
		jobs <- y
	}
	close(jobs)
	wg.Wait()
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(v*255 + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
