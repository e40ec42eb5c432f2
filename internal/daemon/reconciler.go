// Package daemon keeps wallpapers in sync with screen size changes.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// ErrStopped is returned by Redraw once the reconciler is no longer running.
var ErrStopped = errors.New("daemon is not running")

// ScreenChange reports that a screen now has a new size.
type ScreenChange struct {
	Screen int
	Width  uint16
	Height uint16
}

// RenderFunc redraws one screen.
type RenderFunc func(screen int) error

// CleanupFunc releases what the daemon published, once the watch ends.
type CleanupFunc func() error

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Render  RenderFunc
	Cleanup CleanupFunc
	// Screens lists the screens redrawn on an explicit Redraw.
	Screens []int
	Logger  *slog.Logger
}

type redrawRequest struct {
	done chan error
}

// Reconciler redraws screens whenever their size changes.
type Reconciler struct {
	render  RenderFunc
	cleanup CleanupFunc
	screens []int
	logger  *slog.Logger

	redraws chan redrawRequest
	stopped chan struct{}
	renders atomic.Int64
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{
		render:  cfg.Render,
		cleanup: cfg.Cleanup,
		screens: cfg.Screens,
		logger:  logger,
		redraws: make(chan redrawRequest),
		stopped: make(chan struct{}),
	}
}

// Run redraws screens as changes arrive. It returns when the context is
// cancelled or the change stream is closed, after running the cleanup.
// Run must be called at most once.
func (r *Reconciler) Run(ctx context.Context, changes <-chan ScreenChange) error {
	defer close(r.stopped)

	r.logger.Debug("daemon started", "screens", len(r.screens))
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("daemon stopped", "reason", ctx.Err())
			return r.finish()
		case change, ok := <-changes:
			if !ok {
				r.logger.Debug("daemon stopped", "reason", "event stream closed")
				return r.finish()
			}
			r.logger.Debug("screen changed", "screen", change.Screen, "width", change.Width, "height", change.Height)
			if err := r.reconcile(change.Screen); err != nil {
				r.logger.Warn("error encountered while setting wallpaper", "screen", change.Screen, "error", err)
			}
		case req := <-r.redraws:
			req.done <- r.redrawAll()
		}
	}
}

// Redraw asks the running loop to redraw every screen and waits for the
// result. Renders happen on the loop goroutine, never concurrently with a
// size change.
func (r *Reconciler) Redraw(ctx context.Context) error {
	req := redrawRequest{done: make(chan error, 1)}
	select {
	case r.redraws <- req:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Screens lists the screens an explicit Redraw covers.
func (r *Reconciler) Screens() []int {
	return append([]int(nil), r.screens...)
}

// Renders is the number of redraws performed.
func (r *Reconciler) Renders() int {
	return int(r.renders.Load())
}

func (r *Reconciler) redrawAll() error {
	r.logger.Debug("redraw requested")
	var errs []error
	for _, screen := range r.screens {
		if err := r.reconcile(screen); err != nil {
			errs = append(errs, fmt.Errorf("screen %d: %w", screen, err))
		}
	}
	return errors.Join(errs...)
}

// reconcile redraws a single screen.
func (r *Reconciler) reconcile(screen int) (err error) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("render panic recovered", "screen", screen, "error", p)
			err = fmt.Errorf("render panic: %v", p)
		}
	}()

	r.renders.Add(1)
	return r.render(screen)
}

func (r *Reconciler) finish() error {
	if r.cleanup == nil {
		return nil
	}
	if err := r.cleanup(); err != nil {
		return fmt.Errorf("daemon cleanup: %w", err)
	}
	return nil
}
