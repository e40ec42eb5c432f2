package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// ScreenChange reports a new size for a screen.
type ScreenChange struct {
	Screen int
	Width  uint16
	Height uint16
}

// WatchScreenChanges selects RandR screen change notifications on every
// root window and reads events until the connection is closed. Each
// notification updates the screen size and is delivered on the returned
// channel, which is closed when the connection ends. Pending notifications
// are dropped once the display is closed.
func (d *Display) WatchScreenChanges() (<-chan ScreenChange, error) {
	if !d.HasRandR() {
		return nil, d.randrErr
	}
	conn := d.XUtil.Conn()
	for _, s := range d.Screens() {
		if err := randr.SelectInputChecked(conn, s.Root, randr.NotifyMaskScreenChange).Check(); err != nil {
			return nil, fmt.Errorf("failed to select randr input on screen %d: %w", s.Index, err)
		}
	}

	changes := make(chan ScreenChange, 16)
	go func() {
		defer close(changes)
		for {
			event, err := conn.WaitForEvent()
			if event == nil && err == nil {
				return
			}
			if err != nil {
				d.logger.Debug("X error received", "error", err)
				continue
			}
			ev, ok := event.(randr.ScreenChangeNotifyEvent)
			if !ok {
				continue
			}
			d.logger.Debug("event received", "sequence", ev.Sequence, "root", ev.Root, "width", ev.Width, "height", ev.Height)
			screen, found := d.ScreenForRoot(ev.Root)
			if !found {
				continue
			}
			d.Resize(screen.Index, ev.Width, ev.Height)
			if !deliver(changes, d.done, ScreenChange{Screen: screen.Index, Width: ev.Width, Height: ev.Height}) {
				return
			}
		}
	}()
	return changes, nil
}

// deliver sends c unless done is closed first.
func deliver(changes chan<- ScreenChange, done <-chan struct{}, c ScreenChange) bool {
	select {
	case changes <- c:
		return true
	case <-done:
		return false
	}
}
