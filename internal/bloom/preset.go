package bloom

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Preset selects a bundle of downsample passes, per-pass strengths and blur radii.
type Preset int

const (
	Wide Preset = iota
	SuperWide
	Focussed
	Small
	Cheap
)

var presetNames = [...]string{
	Wide:      "Wide",
	SuperWide: "SuperWide",
	Focussed:  "Focussed",
	Small:     "Small",
	Cheap:     "Cheap",
}

func (p Preset) String() string {
	if p < 0 || int(p) >= len(presetNames) {
		return fmt.Sprintf("Preset(%d)", int(p))
	}
	return presetNames[p]
}

// Valid reports whether p names one of the known presets.
func (p Preset) Valid() bool {
	return p >= 0 && int(p) < len(presetNames)
}

// Presets returns every preset in declaration order.
func Presets() []Preset {
	out := make([]Preset, len(presetNames))
	for i := range presetNames {
		out[i] = Preset(i)
	}
	return out
}

// PresetNames returns the display names of all presets in declaration order.
func PresetNames() []string {
	out := make([]string, len(presetNames))
	copy(out, presetNames[:])
	return out
}

// ParsePreset resolves a preset name, ignoring case. "focused" is accepted
// as an alias for Focussed.
func ParsePreset(name string) (Preset, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "focused" {
		return Focussed, true
	}
	for i, n := range presetNames {
		if strings.ToLower(n) == key {
			return Preset(i), true
		}
	}
	return Wide, false
}

// Bundle is the parameter set a preset expands to. Strength and Radius are
// indexed by pass, finest level first.
type Bundle struct {
	Passes   int       `yaml:"passes"`
	Strength []float64 `yaml:"strength"`
	Radius   []float64 `yaml:"radius"`
}

const maxPasses = 8

func (b Bundle) validate() error {
	if b.Passes < 1 || b.Passes > maxPasses {
		return fmt.Errorf("passes must be within [1, %d] (got %d)", maxPasses, b.Passes)
	}
	if len(b.Strength) < b.Passes {
		return fmt.Errorf("need %d strength values (got %d)", b.Passes, len(b.Strength))
	}
	if len(b.Radius) < b.Passes {
		return fmt.Errorf("need %d radius values (got %d)", b.Passes, len(b.Radius))
	}
	for i := 0; i < b.Passes; i++ {
		if b.Radius[i] < 0 {
			return fmt.Errorf("radius %d is negative", i)
		}
	}
	return nil
}

func defaultBundles() map[Preset]Bundle {
	return map[Preset]Bundle{
		Wide: {
			Passes:   5,
			Strength: []float64{0.5, 1, 2, 1, 2},
			Radius:   []float64{1, 2, 2, 4, 4},
		},
		SuperWide: {
			Passes:   5,
			Strength: []float64{0.9, 1, 1, 2, 6},
			Radius:   []float64{2, 2, 2, 4, 4},
		},
		Focussed: {
			Passes:   5,
			Strength: []float64{0.8, 1, 1, 1, 2},
			Radius:   []float64{2, 2, 2, 2, 4},
		},
		Small: {
			Passes:   5,
			Strength: []float64{0.8, 1, 1, 1, 1},
			Radius:   []float64{1, 1, 1, 1, 1},
		},
		Cheap: {
			Passes:   2,
			Strength: []float64{0.8, 2},
			Radius:   []float64{2, 2},
		},
	}
}

// loadBundles merges preset overrides from a YAML file keyed by preset name
// into the defaults. A missing file is not an error.
func loadBundles(path string) (map[Preset]Bundle, error) {
	bundles := defaultBundles()
	if path == "" {
		return bundles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return bundles, nil
		}
		return nil, fmt.Errorf("read presets: %w", err)
	}

	var overrides map[string]Bundle
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	for name, bundle := range overrides {
		preset, ok := ParsePreset(name)
		if !ok {
			return nil, fmt.Errorf("parse presets %s: unknown preset %q", path, name)
		}
		if err := bundle.validate(); err != nil {
			return nil, fmt.Errorf("parse presets %s: %s: %w", path, name, err)
		}
		bundles[preset] = bundle
	}
	return bundles, nil
}
