package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/guidoenr/bloomer/internal/app"
	"github.com/guidoenr/bloomer/internal/bloom"
	"github.com/guidoenr/bloomer/internal/config"
	"github.com/guidoenr/bloomer/internal/content"
	"github.com/guidoenr/bloomer/internal/host"
	"github.com/guidoenr/bloomer/internal/input"
	"github.com/guidoenr/bloomer/internal/log"
	"github.com/guidoenr/bloomer/internal/params"
	"github.com/guidoenr/bloomer/internal/status"
	"github.com/guidoenr/bloomer/internal/web"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

const (
	exitRuntime = 1
	exitConfig  = 2
	exitLoad    = 3
)

func run(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String("config"))
	if err != nil {
		return cli.NewExitError(err.Error(), exitConfig)
	}
	applyFlags(ctx, cfg)
	if err := cfg.Validate(); err != nil {
		return cli.NewExitError(err.Error(), exitConfig)
	}
	setupLogging(ctx, cfg.Log.Level)

	width, height := cfg.Window.Width, cfg.Window.Height
	engine, err := bloom.NewCPU(cfg.Content.Root, width, height)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("load bloom engine: %v", err), exitLoad)
	}

	if ctx.Bool("list-presets") {
		defer engine.Close()
		fmt.Print(presetTable(engine))
		fmt.Println(strings.Join(input.Help(), "\n"))
		return nil
	}

	source, err := loadSource(cfg, width, height)
	if err != nil {
		engine.Close()
		return cli.NewExitError(err.Error(), exitLoad)
	}

	backend, err := pickBackend(cfg.Window.Backend)
	if err != nil {
		engine.Close()
		return cli.NewExitError(err.Error(), exitConfig)
	}

	restoreLog, err := redirectLog(backend, ctx.String("log-file"))
	if err != nil {
		engine.Close()
		return cli.NewExitError(err.Error(), exitConfig)
	}
	defer restoreLog()

	clearColor, _ := cfg.ClearColor()
	h, err := host.Open(backend, host.Config{
		Width:  width,
		Height: height,
		Title:  "bloomer",
		Clear:  clearColor,
		Log:    log.New("host"),
	})
	if err != nil {
		engine.Close()
		return cli.NewExitError(fmt.Sprintf("open %s host: %v", backend, err), exitLoad)
	}

	runCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var monitor app.Publisher
	if cfg.Monitor.Enabled {
		srv := web.NewServer(web.Config{
			Addr:     cfg.Monitor.Addr,
			Interval: cfg.Monitor.Interval,
			Presets:  presetInfos(engine),
			Log:      log.New("web"),
		})
		go func() {
			if err := srv.Start(runCtx); err != nil {
				logger.Errorf("%v", err)
			}
		}()
		monitor = srv
	}

	overlay := ""
	if cfg.Overlay.Enabled {
		overlay = cfg.Overlay.Text
		if overlay == "" {
			overlay = status.Help
		}
	}

	autopilot := cfg.Autopilot.Period
	if !cfg.Autopilot.Enabled {
		autopilot = 0
	}

	a, err := app.New(app.Config{
		Width:           width,
		Height:          height,
		TargetFPS:       cfg.Window.TargetFPS,
		Overlay:         overlay,
		Host:            h,
		Engine:          engine,
		Source:          source,
		State:           initialState(cfg),
		Monitor:         monitor,
		AutopilotPeriod: autopilot,
		ProfilePath:     cfg.Log.Profile,
		Log:             log.New("app"),
	})
	if err != nil {
		h.Close()
		engine.Close()
		return cli.NewExitError(err.Error(), exitLoad)
	}

	err = a.Run(runCtx)
	if cerr := a.Close(); cerr != nil {
		logger.Warningf("cleanup: %v", cerr)
	}
	restoreLog()
	if err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewExitError(fmt.Sprintf("runtime error: %v", err), exitRuntime)
	}
	logger.Info("bye")
	return nil
}

func applyFlags(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet("backend") {
		cfg.Window.Backend = ctx.String("backend")
	}
	if ctx.IsSet("width") {
		cfg.Window.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Window.Height = ctx.Int("height")
	}
	if ctx.IsSet("fps") {
		cfg.Window.TargetFPS = ctx.Float64("fps")
	}
	if ctx.IsSet("content") {
		cfg.Content.Root = ctx.String("content")
	}
	if ctx.IsSet("source") {
		cfg.Content.Source = ctx.String("source")
	}
	if ctx.IsSet("pattern") {
		cfg.Content.Pattern = ctx.String("pattern")
	}
	if ctx.IsSet("preset") {
		cfg.Bloom.Preset = ctx.String("preset")
	}
	if ctx.IsSet("threshold") {
		cfg.Bloom.Threshold = ctx.Float64("threshold")
	}
	if ctx.Bool("half-res") {
		cfg.Bloom.HalfResolution = true
	}
	if ctx.Bool("no-overlay") {
		cfg.Overlay.Enabled = false
	}
	if ctx.IsSet("monitor") {
		cfg.Monitor.Enabled = true
		cfg.Monitor.Addr = ctx.String("monitor")
	}
	if ctx.Bool("autopilot") {
		cfg.Autopilot.Enabled = true
	}
	if ctx.IsSet("profile") {
		cfg.Log.Profile = ctx.String("profile")
	}
}

func initialState(cfg *config.Config) params.State {
	st := params.Defaults()
	st.SetPreset(cfg.Preset())
	st.SetThreshold(cfg.Bloom.Threshold)
	st.SetStreakLength(cfg.Bloom.StreakLength)
	st.UseLuminance = cfg.Bloom.UseLuminance
	st.HalfResolution = cfg.Bloom.HalfResolution
	return st
}

func loadSource(cfg *config.Config, width, height int) (*image.RGBA, error) {
	if cfg.Content.Source != "" {
		img, err := content.Load(cfg.Content.Root, cfg.Content.Source)
		if err != nil {
			return nil, err
		}
		logger.Infof("source %s (%dx%d)", content.Resolve(cfg.Content.Root, cfg.Content.Source), img.Rect.Dx(), img.Rect.Dy())
		return img, nil
	}
	logger.Infof("generating %s source at %dx%d", cfg.Content.Pattern, width, height)
	return content.Generate(cfg.Content.Pattern, width, height)
}

// pickBackend resolves an empty backend: a terminal when stdout is one,
// otherwise an SDL window when compiled in.
func pickBackend(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return host.BackendTerminal, nil
	}
	if host.SupportsSDL() {
		return host.BackendSDL, nil
	}
	return "", fmt.Errorf("stdout is not a terminal and this binary has no sdl support (backends: %s)", strings.Join(host.Backends(), ", "))
}

// redirectLog keeps log output off the screen while the terminal backend
// draws on it. The returned func restores stderr and is safe to call twice.
func redirectLog(backend, path string) (func(), error) {
	if backend != host.BackendTerminal {
		return func() {}, nil
	}
	var sink io.Writer = io.Discard
	var file *os.File
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		sink, file = f, f
	}
	log.SetSink(sink)

	restored := false
	return func() {
		if restored {
			return
		}
		restored = true
		log.SetSink(os.Stderr)
		if file != nil {
			file.Close()
		}
	}, nil
}

func presetInfos(engine *bloom.CPU) []web.PresetInfo {
	var out []web.PresetInfo
	for _, p := range bloom.Presets() {
		b := engine.Bundle(p)
		key, _ := input.PresetKey(p)
		out = append(out, web.PresetInfo{
			Name:     p.String(),
			Key:      strings.ToUpper(key.String()),
			Passes:   b.Passes,
			Strength: b.Strength[:b.Passes],
			Radius:   b.Radius[:b.Passes],
		})
	}
	return out
}

func presetTable(engine *bloom.CPU) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Key", "Preset", "Passes", "Strength", "Radius"})
	for _, info := range presetInfos(engine) {
		table.Append([]string{
			info.Key,
			info.Name,
			fmt.Sprintf("%d", info.Passes),
			joinFloats(info.Strength),
			joinFloats(info.Radius),
		})
	}
	table.Render()
	return buf.String()
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, " ")
}
