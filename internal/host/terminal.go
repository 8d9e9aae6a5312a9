package host

import (
	"fmt"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"github.com/guidoenr/bloomer/internal/input"
	"github.com/guidoenr/bloomer/internal/log"
	"github.com/guidoenr/bloomer/internal/render"
)

var terminalKeys = map[tcell.Key]input.Key{
	tcell.KeyF1:     input.KeyF1,
	tcell.KeyF2:     input.KeyF2,
	tcell.KeyF3:     input.KeyF3,
	tcell.KeyF4:     input.KeyF4,
	tcell.KeyF5:     input.KeyF5,
	tcell.KeyF6:     input.KeyF6,
	tcell.KeyF7:     input.KeyF7,
	tcell.KeyF8:     input.KeyF8,
	tcell.KeyF9:     input.KeyF9,
	tcell.KeyF10:    input.KeyF10,
	tcell.KeyEscape: input.KeyEscape,
}

// Terminal presents frames as half-block cells in a tcell screen. Each cell
// shows two vertically stacked pixels: the upper as foreground of '▀' and
// the lower as background.
type Terminal struct {
	screen tcell.Screen
	canvas *render.Canvas
	log    log.Logger
	title  string

	cols int
	rows int

	pointerX    float64
	pointerDown bool
}

// OpenTerminal initialises the controlling terminal.
func OpenTerminal(cfg Config) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal init: %w", err)
	}
	return NewTerminal(screen, cfg), nil
}

// NewTerminal wraps an initialised screen.
func NewTerminal(screen tcell.Screen, cfg Config) *Terminal {
	if cfg.Log == nil {
		cfg.Log = log.New("host")
	}
	screen.EnableMouse(tcell.MouseDragEvents)
	screen.EnableFocus()
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{
		screen: screen,
		canvas: render.NewCanvas(cfg.Width, cfg.Height, cfg.Clear),
		log:    cfg.Log,
	}
	t.cols, t.rows = screen.Size()
	if cfg.Title != "" {
		t.SetTitle(cfg.Title)
	}
	return t
}

func (t *Terminal) Poll() (input.Snapshot, []Event) {
	var (
		keys    input.KeySet
		events  []Event
		pressed bool
	)

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				events = append(events, EventQuit)
				continue
			}
			if k, ok := terminalKeys[ev.Key()]; ok {
				keys = keys.With(k)
			}
		case *tcell.EventMouse:
			x, _ := ev.Position()
			if ev.Buttons()&tcell.Button1 != 0 {
				t.pointerDown = true
				t.pointerX = float64(x)
				pressed = true
			} else {
				t.pointerDown = false
			}
		case *tcell.EventFocus:
			if ev.Focused {
				events = append(events, EventActivated)
			} else {
				events = append(events, EventDeactivated)
			}
		case *tcell.EventResize:
			t.cols, t.rows = ev.Size()
			t.screen.Sync()
			t.log.Debugf("terminal resized to %dx%d", t.cols, t.rows)
		case nil:
			events = append(events, EventQuit)
			return t.snapshot(keys, pressed), events
		}
	}

	return t.snapshot(keys, pressed), events
}

func (t *Terminal) snapshot(keys input.KeySet, pressed bool) input.Snapshot {
	return input.Snapshot{
		Keys:        keys,
		PointerX:    t.pointerX,
		PointerDown: t.pointerDown || pressed,
		WindowWidth: t.cols,
	}
}

func (t *Terminal) Target() render.Target {
	return t.canvas
}

// Canvas exposes the composed frame.
func (t *Terminal) Canvas() *render.Canvas {
	return t.canvas
}

func (t *Terminal) SetTitle(title string) {
	if title == t.title {
		return
	}
	t.title = title
	t.screen.SetTitle(title)
}

func (t *Terminal) Present() error {
	cols, rows := t.cols, t.rows
	if cols <= 0 || rows <= 0 {
		return nil
	}
	img := t.canvas.Image()
	w, h := t.canvas.Size()

	for cy := 0; cy < rows; cy++ {
		top := (2 * cy) * h / (2 * rows)
		bottom := (2*cy + 1) * h / (2 * rows)
		for cx := 0; cx < cols; cx++ {
			sx := cx * w / cols
			style := tcell.StyleDefault.
				Foreground(toColor(img.RGBAAt(sx, top))).
				Background(toColor(img.RGBAAt(sx, bottom)))
			t.screen.SetContent(cx, cy, '▀', nil, style)
		}
	}

	for _, text := range t.canvas.Texts() {
		t.drawText(text, w, h)
	}

	t.screen.Show()
	return nil
}

func (t *Terminal) drawText(text render.TextDraw, w, h int) {
	img := t.canvas.Image()
	cx := text.Pos.X * t.cols / w
	cy := text.Pos.Y * t.rows / h
	if cy < 0 || cy >= t.rows {
		return
	}
	py := clampInt((2*cy)*h/(2*t.rows), 0, h-1)
	for _, r := range text.Text {
		if cx >= t.cols {
			break
		}
		if cx >= 0 {
			px := clampInt(cx*w/t.cols, 0, w-1)
			bg := img.RGBAAt(px, py)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(255, 255, 255)).
				Background(toColor(dim(bg)))
			t.screen.SetContent(cx, cy, r, nil, style)
		}
		cx++
	}
}

func (t *Terminal) Close() error {
	t.screen.Fini()
	return nil
}

func toColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// dim halves the backdrop under text so white glyphs stay readable.
func dim(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: c.A}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
