package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/guidoenr/bloomer/internal/bloom"
	"github.com/guidoenr/bloomer/internal/fps"
	"github.com/guidoenr/bloomer/internal/host"
	"github.com/guidoenr/bloomer/internal/input"
	"github.com/guidoenr/bloomer/internal/log"
	"github.com/guidoenr/bloomer/internal/params"
	"github.com/guidoenr/bloomer/internal/render"
	"github.com/guidoenr/bloomer/internal/status"
	"github.com/guidoenr/bloomer/internal/web"
)

// Publisher receives a snapshot after every active update.
type Publisher interface {
	Publish(web.Snapshot)
}

// Config configures the application runtime.
type Config struct {
	Width     int
	Height    int
	TargetFPS float64
	Overlay   string

	Host   host.Host
	Engine bloom.Engine
	Source *image.RGBA
	State  params.State

	Monitor         Publisher
	AutopilotPeriod time.Duration
	ProfilePath     string
	Log             log.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// App runs the per-frame loop: input, timing and diagnostics in update, then
// bloom and compositing in draw.
type App struct {
	cfg        Config
	host       host.Host
	engine     bloom.Engine
	orch       *render.Orchestrator
	controller input.Controller
	state      params.State
	meter      fps.Meter
	activation Activation
	pilot      *autopilot
	prof       *profiler
	monitor    Publisher
	log        log.Logger
	now        func() time.Time

	status string
	last   time.Time
	frame  uint64
	exit   bool
	closed bool
}

// New constructs the application using the provided configuration.
func New(cfg Config) (*App, error) {
	if cfg.Host == nil {
		return nil, errors.New("app: no host")
	}
	if cfg.Engine == nil {
		return nil, errors.New("app: no bloom engine")
	}
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = 60
	}
	if cfg.Log == nil {
		cfg.Log = log.New("app")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	orch, err := render.NewOrchestrator(cfg.Engine, cfg.Source, cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	orch.SetOverlay(cfg.Overlay)

	a := &App{
		cfg:     cfg,
		host:    cfg.Host,
		engine:  cfg.Engine,
		orch:    orch,
		state:   cfg.State,
		monitor: cfg.Monitor,
		log:     cfg.Log,
		now:     cfg.Now,
		prof:    newProfiler(cfg.ProfilePath, cfg.Log),
	}
	if cfg.AutopilotPeriod > 0 {
		a.pilot = newAutopilot(cfg.AutopilotPeriod, cfg.Now().UnixNano())
		a.log.Noticef("autopilot enabled, period %s", cfg.AutopilotPeriod)
	}

	a.orch.Sync(&a.state)
	a.status = status.Format(a.state, 0)
	a.host.SetTitle(a.status)
	a.last = a.now()
	return a, nil
}

// Run starts the frame loop. It returns nil once exit is requested, the
// context's error on cancellation, or the first fatal frame error.
func (a *App) Run(ctx context.Context) error {
	frameDuration := time.Duration(float64(time.Second) / a.cfg.TargetFPS)
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	a.log.Infof("running at %dx%d, target %.0f fps", a.cfg.Width, a.cfg.Height, a.cfg.TargetFPS)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := a.step()
			if err != nil {
				return err
			}
			if done {
				a.log.Info("exit requested")
				return nil
			}
		}
	}
}

// Close disposes the engine and releases the host.
func (a *App) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return errors.Join(
		a.engine.Close(),
		a.host.Close(),
		a.prof.Close(),
	)
}

// State returns the current effect state.
func (a *App) State() params.State {
	return a.state
}

// Status returns the last formatted status line.
func (a *App) Status() string {
	return a.status
}

// Active reports whether updates and draws currently run.
func (a *App) Active() bool {
	return a.activation.Active()
}

func (a *App) step() (bool, error) {
	snap, events := a.host.Poll()
	for _, ev := range events {
		switch ev {
		case host.EventActivated:
			a.activation.OnActivated()
			a.log.Debug("activated")
		case host.EventDeactivated:
			a.activation.OnDeactivated()
			a.log.Debug("deactivated")
		case host.EventQuit:
			a.exit = true
		}
	}

	now := a.now()
	elapsed := now.Sub(a.last)
	a.last = now

	if !a.activation.Active() {
		return a.exit, nil
	}

	a.frame++
	a.prof.beginFrame(a.frame)
	a.update(snap, elapsed)
	a.prof.markSection("update")
	if err := a.draw(); err != nil {
		return false, err
	}
	a.prof.endFrame()
	return a.exit, nil
}

func (a *App) update(snap input.Snapshot, elapsed time.Duration) {
	if a.pilot != nil {
		snap = a.pilot.Next(snap, elapsed)
	}

	prev := a.state
	if a.controller.Apply(snap, &a.state) {
		a.exit = true
	}
	a.orch.Sync(&a.state)
	a.logChanges(prev)

	if _, err := a.meter.Update(elapsed); err != nil {
		a.log.Debugf("frame timer: %v", err)
	}

	a.status = status.Format(a.state, a.meter.Average())
	a.host.SetTitle(a.status)
	a.publish()
}

func (a *App) draw() error {
	if err := a.orch.Draw(a.host.Target(), a.state); err != nil {
		return fmt.Errorf("frame %d: %w", a.frame, err)
	}
	a.prof.markSection("draw")
	if err := a.host.Present(); err != nil {
		return fmt.Errorf("frame %d: present: %w", a.frame, err)
	}
	a.prof.markSection("present")
	return nil
}

func (a *App) logChanges(prev params.State) {
	cur := a.state
	if cur.Preset != prev.Preset {
		a.log.Infof("preset %s -> %s (%d passes)", prev.Preset, cur.Preset, cur.DownsamplePasses)
	}
	if cur.StreakLength != prev.StreakLength {
		a.log.Infof("streak length %d -> %d", prev.StreakLength, cur.StreakLength)
	}
	if cur.HalfResolution != prev.HalfResolution {
		w, h := cur.WorkingSize(a.cfg.Width, a.cfg.Height)
		a.log.Infof("working size %dx%d", w, h)
	}
}

func (a *App) publish() {
	if a.monitor == nil {
		return
	}
	w, h := a.state.WorkingSize(a.cfg.Width, a.cfg.Height)
	a.monitor.Publish(web.Snapshot{
		Frame:          a.frame,
		Time:           a.last,
		Active:         a.activation.Active(),
		Preset:         a.state.Preset.String(),
		Passes:         a.state.DownsamplePasses,
		Threshold:      a.state.Threshold,
		StreakLength:   a.state.StreakLength,
		UseLuminance:   a.state.UseLuminance,
		HalfResolution: a.state.HalfResolution,
		Width:          w,
		Height:         h,
		FPS:            a.meter.Average(),
		Status:         a.status,
	})
}
