// Package host presents frames and collects input for the tick loop.
package host

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/guidoenr/bloomer/internal/input"
	"github.com/guidoenr/bloomer/internal/log"
	"github.com/guidoenr/bloomer/internal/render"
)

const (
	BackendTerminal = "terminal"
	BackendSDL      = "sdl"
)

var (
	ErrUnknownBackend = errors.New("host: unknown backend")
	ErrSDLUnavailable = errors.New("host: binary built without sdl support")
)

// Event is a platform notification applied between ticks.
type Event int

const (
	EventActivated Event = iota
	EventDeactivated
	EventQuit
)

func (e Event) String() string {
	switch e {
	case EventActivated:
		return "activated"
	case EventDeactivated:
		return "deactivated"
	case EventQuit:
		return "quit"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Host is a window or terminal the demo runs in.
type Host interface {
	// Poll drains pending platform events and samples input for this tick.
	Poll() (input.Snapshot, []Event)

	// Target is where the next frame is composed.
	Target() render.Target

	SetTitle(title string)

	// Present shows the composed frame.
	Present() error

	Close() error
}

// Config sizes the output and names the window.
type Config struct {
	Width  int
	Height int
	Title  string
	Clear  color.RGBA
	Log    log.Logger
}

// Backends returns the backend names this binary can open.
func Backends() []string {
	if SupportsSDL() {
		return []string{BackendTerminal, BackendSDL}
	}
	return []string{BackendTerminal}
}

// Open starts the named backend.
func Open(backend string, cfg Config) (Host, error) {
	if cfg.Log == nil {
		cfg.Log = log.New("host")
	}
	switch backend {
	case BackendTerminal:
		t, err := OpenTerminal(cfg)
		if err != nil {
			return nil, err
		}
		return t, nil
	case BackendSDL:
		return openSDL(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
