package content

import (
	"math"
	"sort"
)

type patternFunc func(x, y float64) float64

var patternRegistry = map[string]patternFunc{
	"plasma":  patternPlasma,
	"waves":   patternWaves,
	"ripples": patternRipples,
	"nebula":  patternNebula,
	"noise":   patternNoise,
}

// PatternNames returns the available pattern identifiers.
func PatternNames() []string {
	names := make([]string, 0, len(patternRegistry))
	for name := range patternRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func patternPlasma(x, y float64) float64 {
	v1 := math.Sin(x * 3.4 * 0.9)
	v2 := math.Sin(y * 4.1 * 1.1)
	v3 := math.Sin((x + y) * 2.3)
	return (v1 + v2 + v3) / 3.0
}

func patternWaves(x, y float64) float64 {
	return math.Sin(x*4.8) * math.Cos(y*5.3)
}

func patternRipples(x, y float64) float64 {
	r := math.Hypot(x, y)
	theta := math.Atan2(y, x)
	return math.Sin(r*12.8 + math.Sin(theta*3)*0.5)
}

func patternNebula(x, y float64) float64 {
	base := patternPlasma(x*0.8, y*0.8)
	swirl := math.Sin((x - y) * 1.5)
	noise := fractalNoise(x*1.2, y*1.2)
	return base*0.6 + swirl*0.2 + noise*0.6
}

func patternNoise(x, y float64) float64 {
	return fractalNoise(x*6, y*6)
}

func fractalNoise(x, y float64) float64 {
	amp := 0.5
	freq := 1.0
	total := 0.0
	sumAmp := 0.0

	for i := 0; i < 4; i++ {
		total += valueNoise2(x*freq, y*freq) * amp
		sumAmp += amp
		amp *= 0.5
		freq *= 2.0
	}

	return (total/sumAmp)*2.0 - 1.0
}

func valueNoise2(x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)

	sx := smoothstep(x - x0)
	sy := smoothstep(y - y0)

	ix0 := lerp(hash2(x0, y0), hash2(x0+1, y0), sx)
	ix1 := lerp(hash2(x0, y0+1), hash2(x0+1, y0+1), sx)

	return lerp(ix0, ix1, sy)
}

func hash2(x, y float64) float64 {
	return frac(math.Sin(x*127.1+y*311.7) * 43758.5453123)
}

func smoothstep(v float64) float64 {
	return v * v * (3 - 2*v)
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func frac(v float64) float64 {
	return v - math.Floor(v)
}
