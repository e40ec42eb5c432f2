package x11

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xwallpaper/internal/outputs"
)

// TargetOptions select how a screen's wallpaper is prepared and published.
type TargetOptions struct {
	// ReuseAtoms draws into the pixmap advertised by a previous run when it
	// still matches the screen.
	ReuseAtoms bool
	Atoms      bool
	Root       bool
	RandR      bool
	// Daemon remembers created pixmaps so they can be released on exit.
	Daemon bool
	// Tile sizes the pixmap to the tile instead of the screen; the server
	// repeats it across the root window.
	Tile image.Point
}

// ScreenTarget is the pixmap being drawn for one screen.
type ScreenTarget struct {
	d       *Display
	screen  Screen
	opts    TargetOptions
	layout  outputs.Layout
	pixmap  xproto.Pixmap
	gc      xproto.Gcontext
	created bool
	order   binary.ByteOrder
}

// NewTarget prepares the pixmap for screen: the previous wallpaper when it
// can be reused, otherwise a fresh pixmap filled with black.
func (d *Display) NewTarget(screen Screen, opts TargetOptions) (*ScreenTarget, error) {
	t := &ScreenTarget{d: d, screen: screen, opts: opts, order: binary.LittleEndian}
	if d.XUtil.Setup().ImageByteOrder == xproto.ImageOrderMSBFirst {
		t.order = binary.BigEndian
	}

	width, height := screen.Width, screen.Height
	if opts.Tile.X > 0 && opts.Tile.Y > 0 {
		width, height = uint16(opts.Tile.X), uint16(opts.Tile.Y)
		t.layout = outputs.Build(width, height, nil, false)
	} else {
		layout, err := d.Layout(screen, opts.RandR)
		if err != nil {
			return nil, err
		}
		t.layout = layout
	}

	conn := d.XUtil.Conn()
	if opts.ReuseAtoms {
		if old := d.processAtoms(screen.Root, nil); old != 0 {
			geom, err := xproto.GetGeometry(conn, xproto.Drawable(old)).Reply()
			if err == nil && geom.Width == width && geom.Height == height && geom.Depth == screen.Depth {
				t.pixmap = old
			}
		}
	}

	if t.pixmap != 0 {
		d.logger.Debug("reusing atom pixmap", "screen", screen.Index, "width", width, "height", height)
		gc, err := t.newGC()
		if err != nil {
			return nil, err
		}
		t.gc = gc
		return t, nil
	}

	d.logger.Debug("creating pixmap", "screen", screen.Index, "width", width, "height", height)
	pixmap, err := xproto.NewPixmapId(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate pixmap id: %w", err)
	}
	if err := xproto.CreatePixmapChecked(conn, screen.Depth, pixmap, xproto.Drawable(screen.Root), width, height).Check(); err != nil {
		return nil, fmt.Errorf("failed to create pixmap: %w", err)
	}
	t.pixmap = pixmap
	t.created = true
	if opts.Daemon && opts.Atoms {
		d.mu.Lock()
		d.created = pixmap
		d.mu.Unlock()
	}

	gc, err := t.newGC()
	if err != nil {
		return nil, err
	}
	t.gc = gc
	xproto.PolyFillRectangle(conn, xproto.Drawable(pixmap), gc, []xproto.Rectangle{{Width: width, Height: height}})
	return t, nil
}

func (t *ScreenTarget) newGC() (xproto.Gcontext, error) {
	conn := t.d.XUtil.Conn()
	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate graphics context id: %w", err)
	}
	xproto.CreateGC(conn, gc, xproto.Drawable(t.pixmap), 0, nil)
	return gc, nil
}

// Layout returns the regions known when the target was prepared.
func (t *ScreenTarget) Layout() (outputs.Layout, error) { return t.layout, nil }

// Depth is the root window depth.
func (t *ScreenTarget) Depth() int { return int(t.screen.Depth) }

// Pixmap is the pixmap being drawn.
func (t *ScreenTarget) Pixmap() xproto.Pixmap { return t.pixmap }

// Put uploads img at the region's position, split into as many PutImage
// requests as the server's request size limit needs.
func (t *ScreenTarget) Put(region outputs.Region, img *image.RGBA) error {
	data, stride, err := Encode(img, t.screen.Depth, t.order)
	if err != nil {
		return err
	}
	rows := img.Bounds().Dy()
	width := uint16(img.Bounds().Dx())

	maxRows, err := RowsPerRequest(uint32(t.d.XUtil.Setup().MaximumRequestLength), stride)
	if err != nil {
		return err
	}
	if maxRows < rows {
		t.d.logger.Debug("image exceeds request size limitations", "rows", rows, "rows_per_request", maxRows)
	}

	conn := t.d.XUtil.Conn()
	for y := 0; y < rows; y += maxRows {
		n := min(maxRows, rows-y)
		t.d.logger.Debug("put image",
			"region", region.String(),
			"offset", y,
			"rows", n,
		)
		xproto.PutImage(conn, xproto.ImageFormatZPixmap, xproto.Drawable(t.pixmap), t.gc,
			width, uint16(n), region.X, region.Y+int16(y), 0, t.screen.Depth,
			data[y*stride:(y+n)*stride])
	}
	return nil
}

// Finish publishes the pixmap on the root window and in the root
// properties. With clear set the wallpaper is removed instead.
func (t *ScreenTarget) Finish(clear bool) error {
	conn := t.d.XUtil.Conn()
	root := t.screen.Root
	result := t.pixmap
	if clear {
		result = 0
	}

	freed := false
	xproto.FreeGC(conn, t.gc)
	if t.opts.Root {
		xproto.ChangeWindowAttributes(conn, root, xproto.CwBackPixmap, []uint32{uint32(t.pixmap)})
		if result == 0 {
			xproto.ChangeWindowAttributes(conn, root, xproto.CwBackPixmap, []uint32{xproto.BackPixmapNone})
			xproto.FreePixmap(conn, t.pixmap)
			freed = true
		}
	}
	if t.opts.Atoms {
		t.d.processAtoms(root, &result)
		if t.created {
			xproto.SetCloseDownMode(conn, xproto.CloseDownRetainPermanent)
		}
	} else if !freed {
		xproto.FreePixmap(conn, t.pixmap)
	}
	if err := xproto.ClearAreaChecked(conn, false, root, 0, 0, 0, 0).Check(); err != nil {
		return fmt.Errorf("failed to clear root window: %w", err)
	}
	return nil
}
