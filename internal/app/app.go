// Package app ties the configuration, the decoders and the X display
// together for the commands of the binary.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/1broseidon/xwallpaper/internal/compose"
	"github.com/1broseidon/xwallpaper/internal/config"
	"github.com/1broseidon/xwallpaper/internal/daemon"
	"github.com/1broseidon/xwallpaper/internal/decode"
	"github.com/1broseidon/xwallpaper/internal/imagecache"
	"github.com/1broseidon/xwallpaper/internal/ipc"
	"github.com/1broseidon/xwallpaper/internal/outputs"
	"github.com/1broseidon/xwallpaper/internal/placement"
	"github.com/1broseidon/xwallpaper/internal/runtimepath"
	"github.com/1broseidon/xwallpaper/internal/x11"
)

// Set applies cfg to the X display. In daemon mode it keeps running until
// ctx is cancelled or the connection ends, redrawing screens whose size
// changes.
func Set(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d, err := x11.Open(cfg.Display, logger)
	if err != nil {
		return err
	}

	cache := imagecache.New()
	defer cache.Close()

	chain := decode.DefaultChain(d, logger)
	logger.Debug("decoders", "order", chain.Decoders())
	renderer, err := compose.NewRenderer(cfg.Options, cache, chain, cfg.Filter, logger)
	if err != nil {
		d.Close()
		return err
	}
	for _, job := range renderer.Jobs() {
		logger.Debug("option", "file", job.File, "mode", job.Mode.String(), "output", job.Output, "screen", job.Screen)
	}
	if err := renderer.Load(); err != nil {
		d.Close()
		return err
	}

	render := func(n int) error {
		return renderScreen(d, n, cfg, renderer, logger)
	}
	for _, screen := range d.Screens() {
		if err := render(screen.Index); err != nil {
			d.Close()
			return err
		}
	}
	d.Sync()

	if !cfg.Daemon {
		d.Close()
		return nil
	}
	return watch(ctx, d, cfg, render, logger)
}

func renderScreen(d *x11.Display, n int, cfg *config.Config, renderer *compose.Renderer, logger *slog.Logger) error {
	screen, ok := d.Screen(n)
	if !ok {
		return fmt.Errorf("screen %d does not exist", n)
	}
	opts := x11.TargetOptions{
		ReuseAtoms: cfg.ReuseAtoms,
		Atoms:      cfg.Atoms,
		Root:       cfg.Root,
		RandR:      cfg.RandR,
		Daemon:     cfg.Daemon,
	}
	if tile, ok := renderer.NativeTile(); ok {
		logger.Debug("letting the server tile", "width", tile.Width, "height", tile.Height)
		opts.Tile = image.Pt(tile.Width, tile.Height)
	}
	target, err := d.NewTarget(screen, opts)
	if err != nil {
		return fmt.Errorf("screen %d: %w", n, err)
	}
	drawn, err := renderer.RenderScreen(n, target)
	if err != nil {
		return err
	}
	logger.Debug("screen composed", "screen", n, "regions", drawn, "pixmap", target.Pixmap())
	return target.Finish(cfg.Clear())
}

func watch(ctx context.Context, d *x11.Display, cfg *config.Config, render daemon.RenderFunc, logger *slog.Logger) error {
	xchanges, err := d.WatchScreenChanges()
	if err != nil {
		d.Close()
		return err
	}

	changes := make(chan daemon.ScreenChange)
	go func() {
		defer close(changes)
		for c := range xchanges {
			select {
			case changes <- daemon.ScreenChange{Screen: c.Screen, Width: c.Width, Height: c.Height}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var screens []int
	for _, screen := range d.Screens() {
		screens = append(screens, screen.Index)
	}
	r := daemon.NewReconciler(daemon.ReconcilerConfig{
		Render: func(n int) error {
			err := render(n)
			d.Sync()
			return err
		},
		Cleanup: func() error {
			created := d.Created()
			d.Close()
			if created == 0 {
				return nil
			}
			logger.Debug("killing X client", "pixmap", created)
			return x11.KillCreated(cfg.Display, created)
		},
		Screens: screens,
		Logger:  logger,
	})

	if server := startControl(cfg, r, logger); server != nil {
		defer server.Stop()
	}
	return r.Run(ctx, changes)
}

// control answers the daemon's control socket.
type control struct {
	cfg        *config.Config
	reconciler *daemon.Reconciler
}

func (c *control) Status() ipc.StatusData {
	status := ipc.StatusData{
		Display: c.cfg.Display,
		Screens: c.reconciler.Screens(),
		Renders: c.reconciler.Renders(),
	}
	if status.Display == "" {
		status.Display = os.Getenv("DISPLAY")
	}
	for _, o := range c.cfg.Options {
		status.Files = append(status.Files, o.File)
	}
	return status
}

func (c *control) Redraw(ctx context.Context) error {
	return c.reconciler.Redraw(ctx)
}

// startControl opens the control socket. The daemon runs without one when
// the socket cannot be created.
func startControl(cfg *config.Config, r *daemon.Reconciler, logger *slog.Logger) *ipc.Server {
	path, err := runtimepath.SocketPath(cfg.Display)
	if err != nil {
		logger.Warn("control socket disabled", "error", err)
		return nil
	}
	server := ipc.NewServer(path, &control{cfg: cfg, reconciler: r}, logger)
	if err := server.Start(); err != nil {
		logger.Warn("control socket disabled", "error", err)
		return nil
	}
	return server
}

// Control returns a client for the daemon serving display.
func Control(display string) (*ipc.Client, error) {
	path, err := runtimepath.SocketPath(display)
	if err != nil {
		return nil, err
	}
	return ipc.NewClient(path), nil
}

// ScreenInfo describes one screen for listings.
type ScreenInfo struct {
	Index   int
	Width   uint16
	Height  uint16
	Depth   int
	RandR   bool
	Outputs []outputs.Region
}

// ListOutputs reports the screens of a display and their connected outputs.
func ListOutputs(display string, logger *slog.Logger) ([]ScreenInfo, error) {
	d, err := x11.Open(display, logger)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	var out []ScreenInfo
	for _, screen := range d.Screens() {
		layout, err := d.Layout(screen, true)
		if err != nil {
			return nil, fmt.Errorf("screen %d: %w", screen.Index, err)
		}
		out = append(out, ScreenInfo{
			Index:   screen.Index,
			Width:   screen.Width,
			Height:  screen.Height,
			Depth:   int(screen.Depth),
			RandR:   layout.RandR,
			Outputs: layout.Outputs,
		})
	}
	return out, nil
}

// RenderSpec describes an offline screen.
type RenderSpec struct {
	Path     string
	Width    uint16
	Height   uint16
	Monitors []outputs.Info
}

// Render composes cfg onto an in-memory screen and writes it to spec.Path.
// Only options for screen 0 apply. XPM color names outside the built-in
// table resolve to black since no server is asked.
func Render(cfg *config.Config, spec RenderSpec, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if spec.Width == 0 || spec.Height == 0 {
		return 0, errors.New("render size must be non-zero")
	}

	cache := imagecache.New()
	defer cache.Close()

	renderer, err := compose.NewRenderer(cfg.Options, cache, decode.DefaultChain(nil, logger), cfg.Filter, logger)
	if err != nil {
		return 0, err
	}

	monitors := spec.Monitors
	if !cfg.RandR {
		monitors = nil
	}
	canvas := compose.NewCanvas(spec.Width, spec.Height, monitors)
	drawn, err := renderer.RenderScreen(0, canvas)
	if err != nil {
		return drawn, err
	}
	if err := canvas.Snapshot(spec.Path); err != nil {
		return drawn, err
	}
	return drawn, nil
}

// ParseMonitor parses NAME=WxH+X+Y into a connected output.
func ParseMonitor(s string) (outputs.Info, error) {
	name, geometry, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return outputs.Info{}, fmt.Errorf("invalid monitor %q: want NAME=WxH+X+Y", s)
	}
	if name == outputs.AllName {
		return outputs.Info{}, fmt.Errorf("invalid monitor %q: %q is reserved", s, outputs.AllName)
	}
	box, err := placement.ParseBox(geometry)
	if err != nil {
		return outputs.Info{}, fmt.Errorf("invalid monitor %q: %w", s, err)
	}
	if box.X > 0x7fff || box.Y > 0x7fff {
		return outputs.Info{}, fmt.Errorf("invalid monitor %q: offset out of range", s)
	}
	return outputs.Info{
		Name:      name,
		Connected: true,
		HasCrtc:   true,
		X:         int16(box.X),
		Y:         int16(box.Y),
		Width:     box.Width,
		Height:    box.Height,
	}, nil
}
