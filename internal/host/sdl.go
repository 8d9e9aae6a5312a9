//go:build sdl

package host

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/guidoenr/bloomer/internal/input"
	"github.com/guidoenr/bloomer/internal/log"
	"github.com/guidoenr/bloomer/internal/render"
	"github.com/veandco/go-sdl2/gfx"
	"github.com/veandco/go-sdl2/sdl"
)

var sdlKeys = []struct {
	scancode int
	key      input.Key
}{
	{sdl.SCANCODE_F1, input.KeyF1},
	{sdl.SCANCODE_F2, input.KeyF2},
	{sdl.SCANCODE_F3, input.KeyF3},
	{sdl.SCANCODE_F4, input.KeyF4},
	{sdl.SCANCODE_F5, input.KeyF5},
	{sdl.SCANCODE_F6, input.KeyF6},
	{sdl.SCANCODE_F7, input.KeyF7},
	{sdl.SCANCODE_F8, input.KeyF8},
	{sdl.SCANCODE_F9, input.KeyF9},
	{sdl.SCANCODE_F10, input.KeyF10},
	{sdl.SCANCODE_ESCAPE, input.KeyEscape},
}

type sdlHost struct {
	cfg        Config
	log        log.Logger
	window     *sdl.Window
	renderer   *sdl.Renderer
	controller *sdl.GameController
	textures   *textureCache[*sdl.Texture]
	title      string
}

func openSDL(cfg Config) (Host, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_GAMECONTROLLER); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}
	h := &sdlHost{
		cfg: cfg,
		log: cfg.Log,
	}
	h.textures = newTextureCache(h.createTexture, (*sdl.Texture).Destroy)

	window, err := sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width), int32(cfg.Height),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("sdl window: %w", err)
	}
	h.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("sdl renderer: %w", err)
	}
	h.renderer = renderer
	if err := renderer.SetLogicalSize(int32(cfg.Width), int32(cfg.Height)); err != nil {
		h.log.Warningf("sdl logical size %dx%d: %v", cfg.Width, cfg.Height, err)
	}

	for i := 0; i < sdl.NumJoysticks(); i++ {
		if sdl.IsGameController(i) {
			h.controller = sdl.GameControllerOpen(i)
			if h.controller != nil {
				h.log.Infof("game controller %q attached", h.controller.Name())
				break
			}
		}
	}
	return h, nil
}

func (h *sdlHost) Poll() (input.Snapshot, []Event) {
	var events []Event
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			events = append(events, EventQuit)
		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_FOCUS_GAINED:
				events = append(events, EventActivated)
			case sdl.WINDOWEVENT_FOCUS_LOST:
				events = append(events, EventDeactivated)
			}
		}
	}

	var keys input.KeySet
	state := sdl.GetKeyboardState()
	for _, b := range sdlKeys {
		if b.scancode < len(state) && state[b.scancode] != 0 {
			keys = keys.With(b.key)
		}
	}

	mx, _, buttons := sdl.GetMouseState()
	width, _ := h.window.GetSize()

	snap := input.Snapshot{
		Keys:        keys,
		PointerX:    float64(mx),
		PointerDown: buttons&sdl.ButtonLMask() != 0,
		WindowWidth: int(width),
	}
	if h.controller != nil {
		snap.Back = h.controller.Button(sdl.CONTROLLER_BUTTON_BACK) != 0
	}
	return snap, events
}

func (h *sdlHost) Target() render.Target {
	return h
}

func (h *sdlHost) SetTitle(title string) {
	if title == h.title {
		return
	}
	h.title = title
	h.window.SetTitle(title)
}

func (h *sdlHost) Clear() error {
	c := h.cfg.Clear
	h.textures.beginFrame()
	if err := h.renderer.SetDrawColor(c.R, c.G, c.B, 0xff); err != nil {
		return err
	}
	return h.renderer.Clear()
}

func (h *sdlHost) DrawAdditive(src *image.RGBA, dst image.Rectangle) error {
	if src == nil || src.Rect.Empty() {
		return render.ErrNoSource
	}
	tex, err := h.textures.acquire(src.Rect.Size())
	if err != nil {
		return err
	}
	if err := tex.Update(nil, unsafe.Pointer(&src.Pix[0]), src.Stride); err != nil {
		return fmt.Errorf("sdl texture update: %w", err)
	}
	rect := sdl.Rect{X: int32(dst.Min.X), Y: int32(dst.Min.Y), W: int32(dst.Dx()), H: int32(dst.Dy())}
	return h.renderer.Copy(tex, nil, &rect)
}

func (h *sdlHost) createTexture(size image.Point) (*sdl.Texture, error) {
	tex, err := h.renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(size.X), int32(size.Y),
	)
	if err != nil {
		return nil, fmt.Errorf("sdl texture %v: %w", size, err)
	}
	if err := tex.SetBlendMode(sdl.BLENDMODE_ADD); err != nil {
		tex.Destroy()
		return nil, err
	}
	return tex, nil
}

func (h *sdlHost) DrawText(pos image.Point, text string) error {
	if !gfx.StringRGBA(h.renderer, int32(pos.X), int32(pos.Y), text, 0xff, 0xff, 0xff, 0xff) {
		return fmt.Errorf("sdl text: %v", sdl.GetError())
	}
	return nil
}

func (h *sdlHost) Present() error {
	h.renderer.Present()
	if err := h.textures.endFrame(); err != nil {
		h.log.Warningf("sdl texture destroy: %v", err)
	}
	return nil
}

func (h *sdlHost) Close() error {
	if err := h.textures.release(); err != nil {
		h.log.Warningf("sdl texture destroy: %v", err)
	}
	if h.controller != nil {
		h.controller.Close()
		h.controller = nil
	}
	if h.renderer != nil {
		h.renderer.Destroy()
		h.renderer = nil
	}
	if h.window != nil {
		h.window.Destroy()
		h.window = nil
	}
	sdl.Quit()
	return nil
}

// SupportsSDL reports whether the binary was built with the sdl tag.
func SupportsSDL() bool { return true }
