// Package config loads the demo's YAML configuration.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/guidoenr/bloomer/internal/bloom"
	"github.com/guidoenr/bloomer/internal/content"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v2"
)

// Config represents the main configuration
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Content   ContentConfig   `yaml:"content"`
	Bloom     BloomConfig     `yaml:"bloom"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Log       LogConfig       `yaml:"log"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Autopilot AutopilotConfig `yaml:"autopilot"`
}

// WindowConfig sizes the output and picks the presenter.
type WindowConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Backend    string  `yaml:"backend"` // terminal, sdl; empty picks by tty
	TargetFPS  float64 `yaml:"target_fps"`
	ClearColor string  `yaml:"clear_color"` // #rrggbb
}

// ContentConfig locates the source image and preset overrides.
type ContentConfig struct {
	Root    string `yaml:"root"`
	Source  string `yaml:"source"`  // relative to root; empty generates Pattern
	Pattern string `yaml:"pattern"` // used when Source is empty
}

// BloomConfig holds the initial effect state.
type BloomConfig struct {
	Preset         string  `yaml:"preset"`
	Threshold      float64 `yaml:"threshold"`
	StreakLength   int     `yaml:"streak_length"`
	UseLuminance   bool    `yaml:"use_luminance"`
	HalfResolution bool    `yaml:"half_resolution"`
}

type OverlayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Text    string `yaml:"text"` // empty uses the built-in help line
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Profile string `yaml:"profile"` // CSV path for per-section frame timings
}

type MonitorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Interval time.Duration `yaml:"interval"`
}

// AutopilotConfig drives the pointer and preset keys without a user, for
// unattended runs.
type AutopilotConfig struct {
	Enabled bool          `yaml:"enabled"`
	Period  time.Duration `yaml:"period"`
}

const (
	maxDimension = 8192
	maxFPS       = 1000
)

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     800,
			TargetFPS:  60,
			ClearColor: "#000000",
		},
		Content: ContentConfig{
			Root:    "content",
			Pattern: "plasma",
		},
		Bloom: BloomConfig{
			Preset:       bloom.Wide.String(),
			Threshold:    0.8,
			StreakLength: 1,
			UseLuminance: true,
		},
		Overlay: OverlayConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "notice",
		},
		Monitor: MonitorConfig{
			Addr:     "127.0.0.1:8090",
			Interval: 500 * time.Millisecond,
		},
		Autopilot: AutopilotConfig{
			Period: 8 * time.Second,
		},
	}
}

// LoadConfig loads the configuration from a file. A missing file yields the
// defaults; a malformed or invalid one is an error.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()
	if filePath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filePath, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", filePath, err)
	}
	return config, nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	w := c.Window
	if w.Width <= 0 || w.Height <= 0 || w.Width > maxDimension || w.Height > maxDimension {
		return fmt.Errorf("window size %dx%d out of range", w.Width, w.Height)
	}
	switch w.Backend {
	case "", "terminal", "sdl":
	default:
		return fmt.Errorf("unknown backend %q", w.Backend)
	}
	if w.TargetFPS <= 0 || w.TargetFPS > maxFPS {
		return fmt.Errorf("target_fps %.1f out of range", w.TargetFPS)
	}
	if _, err := c.ClearColor(); err != nil {
		return err
	}

	if c.Content.Source == "" {
		if !knownPattern(c.Content.Pattern) {
			return fmt.Errorf("unknown pattern %q (want one of %s)", c.Content.Pattern, strings.Join(content.PatternNames(), ", "))
		}
	}

	b := c.Bloom
	if _, ok := bloom.ParsePreset(b.Preset); !ok {
		return fmt.Errorf("unknown preset %q (want one of %s)", b.Preset, strings.Join(bloom.PresetNames(), ", "))
	}
	if b.Threshold < 0 || b.Threshold > 1 {
		return fmt.Errorf("threshold %.3f outside [0, 1]", b.Threshold)
	}
	if b.StreakLength != 1 && b.StreakLength != 2 {
		return fmt.Errorf("streak_length must be 1 or 2 (got %d)", b.StreakLength)
	}

	if c.Monitor.Enabled && c.Monitor.Addr == "" {
		return fmt.Errorf("monitor enabled without addr")
	}
	if c.Monitor.Interval < 0 {
		return fmt.Errorf("monitor interval is negative")
	}
	if c.Autopilot.Enabled && c.Autopilot.Period <= 0 {
		return fmt.Errorf("autopilot period must be positive")
	}
	return nil
}

// Preset returns the configured initial preset.
func (c *Config) Preset() bloom.Preset {
	p, _ := bloom.ParsePreset(c.Bloom.Preset)
	return p
}

// ClearColor parses Window.ClearColor.
func (c *Config) ClearColor() (color.RGBA, error) {
	if c.Window.ClearColor == "" {
		return color.RGBA{A: 0xff}, nil
	}
	col, err := colorful.Hex(c.Window.ClearColor)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("clear_color: %w", err)
	}
	r, g, b := col.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func knownPattern(name string) bool {
	for _, p := range content.PatternNames() {
		if p == name {
			return true
		}
	}
	return false
}
