package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

const (
	atomEsetroot = "ESETROOT_PMAP_ID"
	atomXsetroot = "_XROOTPMAP_ID"
)

// atomState is what a root window advertises as its current wallpaper.
type atomState struct {
	esetroot     xproto.Pixmap
	hasEsetroot  bool
	xrootpmap    xproto.Pixmap
	hasXrootpmap bool
}

// stale lists the pixmaps to dispose of before replacement is published.
// replacement is nil while only inspecting the atoms.
func (s atomState) stale(replacement *xproto.Pixmap) []xproto.Pixmap {
	var out []xproto.Pixmap
	if s.hasEsetroot && replacement != nil && s.esetroot != *replacement {
		out = append(out, s.esetroot)
	}
	if s.hasXrootpmap && (!s.hasEsetroot || s.esetroot != s.xrootpmap) {
		out = append(out, s.xrootpmap)
	}
	return out
}

// reusable is the pixmap both atoms agree on, or 0.
func (s atomState) reusable() xproto.Pixmap {
	if s.hasEsetroot && s.hasXrootpmap && s.esetroot == s.xrootpmap {
		return s.esetroot
	}
	return 0
}

func (d *Display) readPixmapAtom(root xproto.Window, name string) (xproto.Pixmap, bool) {
	reply, err := xprop.GetProperty(d.XUtil, root, name)
	if err != nil || reply == nil {
		return 0, false
	}
	if reply.Type != xproto.AtomPixmap || reply.Format != 32 || len(reply.Value) < 4 {
		return 0, false
	}
	return xproto.Pixmap(xgb.Get32(reply.Value)), true
}

func (d *Display) readAtoms(root xproto.Window) atomState {
	var s atomState
	s.esetroot, s.hasEsetroot = d.readPixmapAtom(root, atomEsetroot)
	s.xrootpmap, s.hasXrootpmap = d.readPixmapAtom(root, atomXsetroot)
	return s
}

// processAtoms disposes of stale wallpapers and, when replacement is not
// nil, publishes it (0 deletes the properties). The owners of old pixmaps
// are killed only the first time; afterwards the previous pixmap is ours
// and is freed instead. It returns the pixmap both atoms agreed on before.
func (d *Display) processAtoms(root xproto.Window, replacement *xproto.Pixmap) xproto.Pixmap {
	state := d.readAtoms(root)
	conn := d.XUtil.Conn()

	d.mu.Lock()
	killed := d.killed
	if replacement != nil {
		d.killed = true
	}
	d.mu.Unlock()

	for _, old := range state.stale(replacement) {
		if killed {
			d.logger.Debug("freeing previous pixmap", "pixmap", old)
			xproto.FreePixmap(conn, old)
		} else {
			d.logger.Debug("killing client owning previous pixmap", "pixmap", old)
			xproto.KillClient(conn, uint32(old))
		}
	}

	if replacement != nil {
		for _, name := range []string{atomEsetroot, atomXsetroot} {
			if *replacement == 0 {
				atom, err := xprop.Atm(d.XUtil, name)
				if err != nil {
					d.logger.Warn("failed to update atoms", "atom", name, "error", err)
					continue
				}
				xproto.DeleteProperty(conn, root, atom)
				continue
			}
			if err := xprop.ChangeProp32(d.XUtil, root, name, "PIXMAP", uint(*replacement)); err != nil {
				d.logger.Warn("failed to update atoms", "atom", name, "error", err)
			}
		}
	}
	return state.reusable()
}
