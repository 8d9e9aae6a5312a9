package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guidoenr/bloomer/internal/bloom"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bloomer.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Preset() != bloom.Wide || cfg.Bloom.Threshold != 0.8 || cfg.Bloom.StreakLength != 1 || !cfg.Bloom.UseLuminance {
		t.Fatalf("unexpected bloom defaults: %+v", cfg.Bloom)
	}
	if cfg.Window.Width != 1280 || cfg.Window.Height != 800 {
		t.Fatalf("unexpected window defaults: %+v", cfg.Window)
	}
}

func TestMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Window.TargetFPS != 60 {
		t.Fatalf("expected defaults, got %+v", cfg.Window)
	}
}

func TestLoadOverridesSections(t *testing.T) {
	path := writeConfig(t, `
window:
  width: 640
  height: 400
  backend: sdl
  clear_color: "#6495ed"
bloom:
  preset: superwide
  threshold: 0.25
  streak_length: 2
  half_resolution: true
monitor:
  enabled: true
  interval: 250ms
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Window.Width != 640 || cfg.Window.Backend != "sdl" {
		t.Fatalf("window %+v", cfg.Window)
	}
	if cfg.Preset() != bloom.SuperWide || cfg.Bloom.StreakLength != 2 || !cfg.Bloom.HalfResolution {
		t.Fatalf("bloom %+v", cfg.Bloom)
	}
	// untouched keys keep their defaults
	if cfg.Window.TargetFPS != 60 || !cfg.Bloom.UseLuminance {
		t.Fatalf("defaults lost: %+v %+v", cfg.Window, cfg.Bloom)
	}
	if cfg.Monitor.Interval != 250*time.Millisecond || cfg.Monitor.Addr == "" {
		t.Fatalf("monitor %+v", cfg.Monitor)
	}
	clear, err := cfg.ClearColor()
	if err != nil {
		t.Fatal(err)
	}
	if clear != (color.RGBA{R: 0x64, G: 0x95, B: 0xed, A: 0xff}) {
		t.Fatalf("clear colour %v", clear)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"preset":    "bloom:\n  preset: blurry\n",
		"threshold": "bloom:\n  threshold: 1.5\n",
		"streak":    "bloom:\n  streak_length: 3\n",
		"backend":   "window:\n  backend: vulkan\n",
		"size":      "window:\n  width: 0\n",
		"colour":    "window:\n  clear_color: blue\n",
		"pattern":   "content:\n  pattern: checkers\n",
		"unknown":   "bloom:\n  glow: 2\n",
		"syntax":    "window: [\n",
	}
	for name, body := range cases {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSourceSkipsPatternCheck(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "content:\n  source: sample.png\n  pattern: ignored\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Content.Source != "sample.png" {
		t.Fatalf("source %q", cfg.Content.Source)
	}
}

func TestValidateMentionsChoices(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bloom.Preset = "nope"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "Wide") {
		t.Fatalf("expected preset list in error, got %v", err)
	}
}
