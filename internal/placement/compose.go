package placement

import (
	"fmt"
	"image"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
)

// Compose renders src into dst according to req. dst must be
// req.Width x req.Height; req.SourceWidth/Height are taken from src.
func Compose(dst *image.RGBA, src *bitmap.Bitmap, req Request) error {
	req.SourceWidth, req.SourceHeight = src.Width, src.Height
	if b := dst.Bounds(); b.Dx() != req.Width || b.Dy() != req.Height {
		return fmt.Errorf("destination is %dx%d, request wants %dx%d", b.Dx(), b.Dy(), req.Width, req.Height)
	}
	if req.Trim != nil && !req.Trim.Fits(src.Width, src.Height) {
		return fmt.Errorf("%w: %s exceeds %dx%d image", ErrBox, req.Trim, src.Width, src.Height)
	}

	img, err := src.Opaque()
	if err != nil {
		return err
	}
	if req.Mode == Tile {
		TileInto(dst, img, req.Window())
		return nil
	}
	Apply(dst, Plan(req), img)
	return nil
}
