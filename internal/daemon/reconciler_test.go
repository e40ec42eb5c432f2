package daemon

import (
	"context"
	"errors"
	"testing"
)

func TestReconciler_RendersEachChange(t *testing.T) {
	var rendered []int
	cleaned := false
	r := NewReconciler(ReconcilerConfig{
		Render: func(screen int) error {
			rendered = append(rendered, screen)
			return nil
		},
		Cleanup: func() error {
			cleaned = true
			return nil
		},
	})

	changes := make(chan ScreenChange, 3)
	changes <- ScreenChange{Screen: 0, Width: 1920, Height: 1080}
	changes <- ScreenChange{Screen: 1, Width: 800, Height: 600}
	close(changes)

	if err := r.Run(context.Background(), changes); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rendered) != 2 || rendered[0] != 0 || rendered[1] != 1 {
		t.Fatalf("rendered = %v, want [0 1]", rendered)
	}
	if r.Renders() != 2 {
		t.Fatalf("Renders() = %d, want 2", r.Renders())
	}
	if !cleaned {
		t.Fatalf("cleanup was not called")
	}
}

func TestReconciler_RenderErrorKeepsRunning(t *testing.T) {
	calls := 0
	r := NewReconciler(ReconcilerConfig{
		Render: func(screen int) error {
			calls++
			if calls == 1 {
				return errors.New("boom")
			}
			return nil
		},
	})

	changes := make(chan ScreenChange, 2)
	changes <- ScreenChange{}
	changes <- ScreenChange{}
	close(changes)

	if err := r.Run(context.Background(), changes); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestReconciler_RecoversPanic(t *testing.T) {
	calls := 0
	r := NewReconciler(ReconcilerConfig{
		Render: func(screen int) error {
			calls++
			if calls == 1 {
				panic("render exploded")
			}
			return nil
		},
	})

	changes := make(chan ScreenChange, 2)
	changes <- ScreenChange{}
	changes <- ScreenChange{}
	close(changes)

	if err := r.Run(context.Background(), changes); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestReconciler_ContextCancel(t *testing.T) {
	cleanupErr := errors.New("kill failed")
	r := NewReconciler(ReconcilerConfig{
		Render:  func(int) error { return nil },
		Cleanup: func() error { return cleanupErr },
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, make(chan ScreenChange))
	if !errors.Is(err, cleanupErr) {
		t.Fatalf("Run error = %v, want cleanup error", err)
	}
}

func TestReconciler_Redraw(t *testing.T) {
	var rendered []int
	r := NewReconciler(ReconcilerConfig{
		Render: func(screen int) error {
			rendered = append(rendered, screen)
			if screen == 1 {
				return errors.New("no root")
			}
			return nil
		},
		Screens: []int{0, 1, 2},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan ScreenChange)
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, changes) }()

	err := r.Redraw(context.Background())
	if err == nil {
		t.Fatalf("Redraw error = nil, want screen 1 failure")
	}
	if len(rendered) != 3 {
		t.Fatalf("rendered = %v, want all three screens", rendered)
	}

	close(changes)
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.Renders() != 3 {
		t.Fatalf("Renders() = %d, want 3", r.Renders())
	}
	if err := r.Redraw(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("Redraw after stop = %v, want ErrStopped", err)
	}
}
