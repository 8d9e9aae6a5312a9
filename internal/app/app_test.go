package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/guidoenr/bloomer/internal/bloom"
	"github.com/guidoenr/bloomer/internal/host"
	"github.com/guidoenr/bloomer/internal/input"
	"github.com/guidoenr/bloomer/internal/params"
	"github.com/guidoenr/bloomer/internal/render"
	"github.com/guidoenr/bloomer/internal/web"
)

type poll struct {
	snap   input.Snapshot
	events []host.Event
}

type fakeHost struct {
	polls    []poll
	canvas   *render.Canvas
	titles   []string
	presents int
	closed   int
}

func newFakeHost(w, h int, polls ...poll) *fakeHost {
	return &fakeHost{
		polls:  polls,
		canvas: render.NewCanvas(w, h, color.RGBA{}),
	}
}

func (f *fakeHost) Poll() (input.Snapshot, []host.Event) {
	if len(f.polls) == 0 {
		return input.Snapshot{WindowWidth: 1280}, nil
	}
	p := f.polls[0]
	f.polls = f.polls[1:]
	return p.snap, p.events
}

func (f *fakeHost) Target() render.Target { return f.canvas }
func (f *fakeHost) SetTitle(title string) { f.titles = append(f.titles, title) }
func (f *fakeHost) Present() error        { f.presents++; return nil }
func (f *fakeHost) Close() error          { f.closed++; return nil }

type fakeEngine struct {
	settings bloom.Settings
	draws    int
	drawErr  error
	closed   int
}

func (f *fakeEngine) Configure(s bloom.Settings) { f.settings = s }

func (f *fakeEngine) Draw(src *image.RGBA, w, h int) (*image.RGBA, error) {
	if f.drawErr != nil {
		return nil, f.drawErr
	}
	f.draws++
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func (f *fakeEngine) DownsamplePasses() int {
	if f.settings.Preset == bloom.Cheap {
		return 2
	}
	return 5
}

func (f *fakeEngine) Close() error {
	f.closed++
	if f.closed > 1 {
		return bloom.ErrClosed
	}
	return nil
}

type recordingMonitor struct {
	snaps []web.Snapshot
}

func (m *recordingMonitor) Publish(s web.Snapshot) { m.snaps = append(m.snaps, s) }

type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestApp(t *testing.T, h *fakeHost, e *fakeEngine) *App {
	t.Helper()
	clock := &stepClock{t: time.Unix(0, 0), step: 20 * time.Millisecond}
	a, err := New(Config{
		Width:     1280,
		Height:    800,
		TargetFPS: 1000,
		Overlay:   "help",
		Host:      h,
		Engine:    e,
		Source:    image.NewRGBA(image.Rect(0, 0, 4, 4)),
		State:     params.Defaults(),
		Now:       clock.Now,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestPresetKeyAndPointerReachStatus(t *testing.T) {
	h := newFakeHost(1280, 800, poll{snap: input.Snapshot{
		Keys:        input.Keys(input.KeyF2),
		PointerX:    320,
		PointerDown: true,
		WindowWidth: 1280,
	}})
	e := &fakeEngine{}
	a := newTestApp(t, h, e)

	done, err := a.step()
	if err != nil || done {
		t.Fatalf("step: done=%v err=%v", done, err)
	}
	st := a.State()
	if st.Preset != bloom.SuperWide || st.Threshold != 0.25 {
		t.Fatalf("state %+v", st)
	}
	title := h.titles[len(h.titles)-1]
	for _, want := range []string{"Preset: SuperWide with 5 Passes", "Threshold: 0.25", "FPS: 50.0"} {
		if !strings.Contains(title, want) {
			t.Fatalf("title %q missing %q", title, want)
		}
	}
	if e.settings.Preset != bloom.SuperWide || e.draws != 1 || h.presents != 1 {
		t.Fatalf("engine %+v draws=%d presents=%d", e.settings, e.draws, h.presents)
	}
	texts := h.canvas.Texts()
	if len(texts) != 1 || texts[0].Text != "help" {
		t.Fatalf("overlay %v", texts)
	}
}

func TestInactiveTicksDoNothing(t *testing.T) {
	h := newFakeHost(1280, 800,
		poll{
			snap:   input.Snapshot{Keys: input.Keys(input.KeyF5, input.KeyF7), PointerDown: true, PointerX: 0, WindowWidth: 1280},
			events: []host.Event{host.EventDeactivated},
		},
		poll{snap: input.Snapshot{Keys: input.Keys(input.KeyF5), WindowWidth: 1280}},
	)
	e := &fakeEngine{}
	a := newTestApp(t, h, e)
	titles := len(h.titles)
	before := a.State()

	for i := 0; i < 2; i++ {
		if _, err := a.step(); err != nil {
			t.Fatal(err)
		}
	}
	if a.Active() {
		t.Fatalf("expected inactive")
	}
	if a.State() != before {
		t.Fatalf("state changed while inactive: %+v", a.State())
	}
	if len(h.titles) != titles || e.draws != 0 || h.presents != 0 {
		t.Fatalf("work done while inactive: titles=%d draws=%d presents=%d", len(h.titles)-titles, e.draws, h.presents)
	}
}

func TestReactivationResumes(t *testing.T) {
	h := newFakeHost(1280, 800,
		poll{events: []host.Event{host.EventDeactivated}},
		poll{snap: input.Snapshot{Keys: input.Keys(input.KeyF5), WindowWidth: 1280}, events: []host.Event{host.EventActivated}},
	)
	e := &fakeEngine{}
	a := newTestApp(t, h, e)

	a.step()
	a.step()
	if !a.Active() || a.State().Preset != bloom.Cheap || a.State().DownsamplePasses != 2 {
		t.Fatalf("active=%v state=%+v", a.Active(), a.State())
	}
	if e.draws != 1 {
		t.Fatalf("draws=%d", e.draws)
	}
}

func TestFirstFrameAfterReactivationMeasuresOneTick(t *testing.T) {
	idle := poll{snap: input.Snapshot{WindowWidth: 1280}}
	h := newFakeHost(1280, 800,
		poll{events: []host.Event{host.EventDeactivated}},
		idle, idle, idle, idle,
		poll{snap: input.Snapshot{WindowWidth: 1280}, events: []host.Event{host.EventActivated}},
	)
	e := &fakeEngine{}
	a := newTestApp(t, h, e)

	for i := 0; i < 6; i++ {
		if _, err := a.step(); err != nil {
			t.Fatal(err)
		}
	}
	if e.draws != 1 {
		t.Fatalf("draws=%d", e.draws)
	}
	if !strings.Contains(a.Status(), "FPS: 50.0") {
		t.Fatalf("status %q, want the 20ms tick interval", a.Status())
	}
}

func TestEscapeFinishesFrameThenExits(t *testing.T) {
	h := newFakeHost(1280, 800, poll{snap: input.Snapshot{Keys: input.Keys(input.KeyEscape, input.KeyF7), WindowWidth: 1280}})
	e := &fakeEngine{}
	a := newTestApp(t, h, e)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.draws != 1 || h.presents != 1 {
		t.Fatalf("draw not completed before exit: draws=%d presents=%d", e.draws, h.presents)
	}
	if !a.State().HalfResolution {
		t.Fatalf("update from exit tick lost")
	}
}

func TestQuitEventExits(t *testing.T) {
	h := newFakeHost(1280, 800, poll{events: []host.Event{host.EventQuit}})
	a := newTestApp(t, h, &fakeEngine{})
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestEngineFailureIsFatal(t *testing.T) {
	boom := errors.New("device lost")
	h := newFakeHost(1280, 800)
	e := &fakeEngine{drawErr: boom}
	a := newTestApp(t, h, e)

	err := a.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected engine error, got %v", err)
	}
	if h.presents != 0 {
		t.Fatalf("presented after failure")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newFakeHost(1280, 800)
	a := newTestApp(t, h, &fakeEngine{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCloseDisposesOnce(t *testing.T) {
	h := newFakeHost(8, 8)
	e := &fakeEngine{}
	a := newTestApp(t, h, e)
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if e.closed != 1 || h.closed != 1 {
		t.Fatalf("engine closed %d, host closed %d", e.closed, h.closed)
	}
}

func TestMonitorReceivesSnapshots(t *testing.T) {
	h := newFakeHost(1280, 800, poll{snap: input.Snapshot{Keys: input.Keys(input.KeyF7, input.KeyF10), WindowWidth: 1280}})
	mon := &recordingMonitor{}
	clock := &stepClock{t: time.Unix(0, 0), step: 20 * time.Millisecond}
	a, err := New(Config{
		Width: 1280, Height: 800,
		Host: h, Engine: &fakeEngine{},
		Source:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
		State:   params.Defaults(),
		Monitor: mon,
		Now:     clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}
	a.step()
	if len(mon.snaps) != 1 {
		t.Fatalf("snapshots %d", len(mon.snaps))
	}
	s := mon.snaps[0]
	if s.Frame != 1 || !s.HalfResolution || s.StreakLength != 2 || s.Width != 640 || s.Height != 400 || s.Status != a.Status() {
		t.Fatalf("snapshot %+v", s)
	}
}

func TestNewRequiresHostEngineAndSource(t *testing.T) {
	if _, err := New(Config{Engine: &fakeEngine{}}); err == nil {
		t.Fatalf("expected error without host")
	}
	if _, err := New(Config{Host: newFakeHost(1, 1)}); err == nil {
		t.Fatalf("expected error without engine")
	}
	if _, err := New(Config{Host: newFakeHost(1, 1), Engine: &fakeEngine{}, Width: 1, Height: 1}); !errors.Is(err, render.ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestActivationZeroValueIsActive(t *testing.T) {
	var act Activation
	if !act.Active() {
		t.Fatalf("zero value should be active")
	}
	act.OnDeactivated()
	act.OnDeactivated()
	if act.Active() {
		t.Fatalf("expected inactive")
	}
	act.OnActivated()
	if !act.Active() {
		t.Fatalf("expected active")
	}
}

func TestAutopilotYieldsToRealInput(t *testing.T) {
	p := newAutopilot(time.Second, 1)

	real := input.Snapshot{PointerDown: true, PointerX: 10, WindowWidth: 100}
	if got := p.Next(real, 100*time.Millisecond); got != real {
		t.Fatalf("real input overridden: %+v", got)
	}

	got := p.Next(input.Snapshot{WindowWidth: 100}, 100*time.Millisecond)
	if !got.PointerDown || got.PointerX < 0 || got.PointerX > 100 {
		t.Fatalf("autopilot pointer %+v", got)
	}
	if !got.Keys.Empty() {
		t.Fatalf("key pressed before period elapsed: %v", got.Keys)
	}

	got = p.Next(input.Snapshot{WindowWidth: 100}, 900*time.Millisecond)
	if got.Keys.Empty() {
		t.Fatalf("expected a key once the period elapsed")
	}
}
