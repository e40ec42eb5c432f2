package placement

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Request describes one image placed onto one destination region.
type Request struct {
	// SourceWidth and SourceHeight are the full image dimensions.
	SourceWidth  int
	SourceHeight int
	// Trim restricts the source; nil means the whole image.
	Trim   *Box
	Mode   Mode
	Width  int
	Height int
	Filter Filter
}

// Window returns the trimmed source rectangle.
func (r Request) Window() image.Rectangle {
	if r.Trim == nil {
		return image.Rect(0, 0, r.SourceWidth, r.SourceHeight)
	}
	t := r.Trim
	return image.Rect(int(t.X), int(t.Y), int(t.X)+int(t.Width), int(t.Y)+int(t.Height))
}

// Transform maps destination pixels back into source space:
//
//	src = Origin + dst / Scale
//
// Scale is measured in destination pixels per source pixel.
type Transform struct {
	ScaleX  float64
	ScaleY  float64
	OriginX float64
	OriginY float64
	Filter  Filter
	// Window is the source rectangle the scale was derived from.
	Window image.Rectangle
}

// Plan computes the transform for every mode but Tile. Focus scales the
// window chosen by FocusWindow so that all of it stays visible: the window
// already has the output's aspect ratio up to one truncated pixel, and that
// pixel must not cut into the trim box. Center always uses the fast filter;
// other modes keep req.Filter.
func Plan(req Request) Transform {
	window := req.Window()
	mode := req.Mode
	if mode == Focus {
		window = FocusWindow(req.SourceWidth, req.SourceHeight, window, req.Width, req.Height)
		mode = Zoom
	}

	sw, sh := float64(window.Dx()), float64(window.Dy())
	dw, dh := float64(req.Width), float64(req.Height)
	sx, sy := dw/sw, dh/sh
	filter := req.Filter

	switch mode {
	case Center:
		sx, sy = 1, 1
		filter = FilterFast
	case Maximize:
		s := max(sx, sy)
		sx, sy = s, s
	case Zoom:
		s := min(sx, sy)
		sx, sy = s, s
	}

	return Transform{
		ScaleX:  sx,
		ScaleY:  sy,
		OriginX: float64(window.Min.X) + (sw-dw/sx)/2,
		OriginY: float64(window.Min.Y) + (sh-dh/sy)/2,
		Filter:  filter,
		Window:  window,
	}
}

// sourcePoint maps a destination coordinate into source space.
func (t Transform) sourcePoint(x, y float64) (float64, float64) {
	return t.OriginX + x/t.ScaleX, t.OriginY + y/t.ScaleY
}

// Translate returns the offset applied before scaling, in destination
// units: (source/scale - destination)/2 + offset/scale, where scale is
// source pixels per destination pixel.
func (t Transform) Translate() (float64, float64) {
	return t.OriginX * t.ScaleX, t.OriginY * t.ScaleY
}

// SourceToDest is the inverse affine matrix in the form x/image/draw wants,
// shifted so destination (0,0) lands on origin.
func (t Transform) SourceToDest(origin image.Point) f64.Aff3 {
	return f64.Aff3{
		t.ScaleX, 0, float64(origin.X) - t.OriginX*t.ScaleX,
		0, t.ScaleY, float64(origin.Y) - t.OriginY*t.ScaleY,
	}
}

// Apply clears dst to black and resamples src into it. Destination pixels
// that map outside src stay black.
func Apply(dst *image.RGBA, t Transform, src image.Image) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.Black, image.Point{}, draw.Src)
	t.Filter.Interpolator().Transform(dst, t.SourceToDest(b.Min), src, src.Bounds(), draw.Src, nil)
}
