// Package x11 draws wallpapers on X screens: pixmap management, image
// upload, root window properties and RandR output discovery.
package x11

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Screen is one root window of the display. Width and Height follow RandR
// screen change notifications.
type Screen struct {
	Index    int
	Root     xproto.Window
	Width    uint16
	Height   uint16
	Depth    byte
	Colormap xproto.Colormap
}

// Display manages the X11 connection and per-connection state.
type Display struct {
	XUtil *xgbutil.XUtil

	logger  *slog.Logger
	mu      sync.Mutex
	screens []Screen

	randrOnce sync.Once
	randrErr  error
	closeOnce sync.Once
	// done is closed by Close.
	done chan struct{}

	// killed is set once stale wallpaper clients were killed; later
	// replacements only free the old pixmap so the daemon never kills
	// itself.
	killed bool
	// created is the last pixmap this connection created and published.
	created xproto.Pixmap
}

// Open connects to the X server named by display, or $DISPLAY when empty.
func Open(display string, logger *slog.Logger) (*Display, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xu.Setup()
	if len(setup.Roots) == 0 {
		xu.Conn().Close()
		return nil, errors.New("no screen found")
	}
	screens := make([]Screen, 0, len(setup.Roots))
	for i, root := range setup.Roots {
		screens = append(screens, Screen{
			Index:    i,
			Root:     root.Root,
			Width:    root.WidthInPixels,
			Height:   root.HeightInPixels,
			Depth:    root.RootDepth,
			Colormap: root.DefaultColormap,
		})
	}
	return &Display{XUtil: xu, logger: logger, screens: screens, done: make(chan struct{})}, nil
}

// Screens returns a snapshot of the screens.
func (d *Display) Screens() []Screen {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Screen(nil), d.screens...)
}

// Screen returns screen n.
func (d *Display) Screen(n int) (Screen, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n < 0 || n >= len(d.screens) {
		return Screen{}, false
	}
	return d.screens[n], true
}

// ScreenForRoot finds the screen whose root window is root.
func (d *Display) ScreenForRoot(root xproto.Window) (Screen, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.screens {
		if s.Root == root {
			return s, true
		}
	}
	return Screen{}, false
}

// Resize records a new size for screen n.
func (d *Display) Resize(n int, width, height uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n >= 0 && n < len(d.screens) {
		d.screens[n].Width = width
		d.screens[n].Height = height
	}
}

// Created returns the pixmap this connection published last, or 0.
func (d *Display) Created() xproto.Pixmap {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created
}

// LookupColor resolves an X color name against screen 0's default colormap.
func (d *Display) LookupColor(name string) (r, g, b uint16, ok bool) {
	screen, found := d.Screen(0)
	if !found {
		return 0, 0, 0, false
	}
	reply, err := xproto.LookupColor(d.XUtil.Conn(), screen.Colormap, uint16(len(name)), name).Reply()
	if err != nil {
		d.logger.Debug("color lookup failed", "name", name, "error", err)
		return 0, 0, 0, false
	}
	return reply.ExactRed, reply.ExactGreen, reply.ExactBlue, true
}

// Sync waits until the server processed every request sent so far.
func (d *Display) Sync() {
	d.XUtil.Sync()
}

// Close disconnects from the X server. It is safe to call more than once;
// no request may be sent afterwards.
func (d *Display) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
		d.XUtil.Conn().Close()
	})
}

// KillCreated connects a second time and kills the client owning the pixmap
// this display created, releasing a wallpaper retained by a daemon.
func KillCreated(display string, pixmap xproto.Pixmap) error {
	if pixmap == 0 {
		return nil
	}
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return fmt.Errorf("failed to connect to X server for clean up: %w", err)
	}
	defer xu.Conn().Close()
	if err := xproto.KillClientChecked(xu.Conn(), uint32(pixmap)).Check(); err != nil {
		return fmt.Errorf("failed to kill X client: %w", err)
	}
	return nil
}
