package render

import (
	"fmt"
	"image"

	"github.com/guidoenr/bloomer/internal/bloom"
	"github.com/guidoenr/bloomer/internal/params"
)

// Orchestrator sequences one frame: bloom at the working size, then the
// source and the bloom layer added over the full output, then the overlay.
type Orchestrator struct {
	engine  bloom.Engine
	source  *image.RGBA
	width   int
	height  int
	overlay string
	origin  image.Point
}

// NewOrchestrator binds an engine and a source image to a fixed output size.
func NewOrchestrator(engine bloom.Engine, source *image.RGBA, width, height int) (*Orchestrator, error) {
	if source == nil || source.Rect.Empty() {
		return nil, ErrNoSource
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Orchestrator{
		engine: engine,
		source: source,
		width:  width,
		height: height,
		origin: image.Pt(1, 1),
	}, nil
}

// SetOverlay sets the text drawn last on every frame. Empty disables it.
func (o *Orchestrator) SetOverlay(text string) {
	o.overlay = text
}

// Sync pushes st to the engine and copies back the pass count it derives.
func (o *Orchestrator) Sync(st *params.State) {
	o.engine.Configure(st.Settings())
	st.DownsamplePasses = o.engine.DownsamplePasses()
}

// Draw renders one frame into t. If the engine fails nothing is drawn.
func (o *Orchestrator) Draw(t Target, st params.State) error {
	w, h := st.WorkingSize(o.width, o.height)

	o.engine.Configure(st.Settings())
	layer, err := o.engine.Draw(o.source, w, h)
	if err != nil {
		return fmt.Errorf("bloom draw %dx%d: %w", w, h, err)
	}
	if layer == nil || layer.Rect.Dx() != w || layer.Rect.Dy() != h {
		got := image.Rectangle{}
		if layer != nil {
			got = layer.Rect
		}
		return fmt.Errorf("%w: got %v want %dx%d", ErrLayerSize, got, w, h)
	}

	full := image.Rect(0, 0, o.width, o.height)
	if err := t.Clear(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if err := t.DrawAdditive(o.source, full); err != nil {
		return fmt.Errorf("draw source: %w", err)
	}
	if err := t.DrawAdditive(layer, full); err != nil {
		return fmt.Errorf("draw bloom: %w", err)
	}
	if o.overlay != "" {
		if err := t.DrawText(o.origin, o.overlay); err != nil {
			return fmt.Errorf("draw overlay: %w", err)
		}
	}
	return nil
}
