package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xwallpaper/internal/outputs"
)

// ErrNoRandR is returned when the server lacks RandR 1.2.
var ErrNoRandR = errors.New("randr extension not available")

// HasRandR reports whether the server supports RandR 1.2. The answer is
// computed once per display.
func (d *Display) HasRandR() bool {
	d.randrOnce.Do(func() {
		conn := d.XUtil.Conn()
		if err := randr.Init(conn); err != nil {
			d.randrErr = fmt.Errorf("%w: %v", ErrNoRandR, err)
			return
		}
		version, err := randr.QueryVersion(conn, 1, 2).Reply()
		if err != nil {
			d.randrErr = fmt.Errorf("%w: %v", ErrNoRandR, err)
			return
		}
		if version.MajorVersion < 1 || (version.MajorVersion == 1 && version.MinorVersion < 2) {
			d.randrErr = fmt.Errorf("%w: server has %d.%d", ErrNoRandR, version.MajorVersion, version.MinorVersion)
		}
	})
	if d.randrErr != nil {
		d.logger.Debug("randr unavailable", "error", d.randrErr)
	}
	return d.randrErr == nil
}

// Outputs lists the RandR outputs of a screen, connected or not.
func (d *Display) Outputs(screen Screen) ([]outputs.Info, error) {
	if !d.HasRandR() {
		return nil, d.randrErr
	}
	conn := d.XUtil.Conn()
	resources, err := randr.GetScreenResources(conn, screen.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}
	if len(resources.Outputs) == 0 {
		return nil, errors.New("failed to retrieve randr outputs")
	}

	infos := make([]outputs.Info, 0, len(resources.Outputs))
	for _, output := range resources.Outputs {
		oi, err := randr.GetOutputInfo(conn, output, xproto.TimeCurrentTime).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to get output info: %w", err)
		}
		info := outputs.Info{
			Name:      string(oi.Name),
			Connected: oi.Connection == randr.ConnectionConnected,
			HasCrtc:   oi.Crtc != 0,
		}
		if info.Connected && info.HasCrtc {
			ci, err := randr.GetCrtcInfo(conn, oi.Crtc, xproto.TimeCurrentTime).Reply()
			if err != nil {
				return nil, fmt.Errorf("failed to get crtc info for %s: %w", info.Name, err)
			}
			info.X, info.Y = ci.X, ci.Y
			info.Width, info.Height = ci.Width, ci.Height
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Layout describes a screen's regions. With useRandR false, or without
// RandR on the server, the whole screen is the only region.
func (d *Display) Layout(screen Screen, useRandR bool) (outputs.Layout, error) {
	if !useRandR || !d.HasRandR() {
		d.logger.Debug("(no randr) screen dimensions", "screen", screen.Index, "width", screen.Width, "height", screen.Height)
		return outputs.Build(screen.Width, screen.Height, nil, false), nil
	}
	infos, err := d.Outputs(screen)
	if err != nil {
		return outputs.Layout{}, err
	}
	layout := outputs.Build(screen.Width, screen.Height, infos, true)
	d.logger.Debug("(randr) screen dimensions", "screen", screen.Index, "width", screen.Width, "height", screen.Height)
	return layout, nil
}
