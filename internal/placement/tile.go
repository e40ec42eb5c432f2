package placement

import (
	"image"

	"golang.org/x/image/draw"
)

// Tiles schedules copies of a tileW x tileH tile across a dstW x dstH
// region, starting at the origin. Tiles on the right and bottom edges are
// clipped.
func Tiles(tileW, tileH, dstW, dstH int) []image.Rectangle {
	if tileW < 1 || tileH < 1 {
		return nil
	}
	var out []image.Rectangle
	for y := 0; y < dstH; y += tileH {
		h := min(tileH, dstH-y)
		for x := 0; x < dstW; x += tileW {
			w := min(tileW, dstW-x)
			out = append(out, image.Rect(x, y, x+w, y+h))
		}
	}
	return out
}

// TileInto repeats window of src across dst without scaling.
func TileInto(dst *image.RGBA, src image.Image, window image.Rectangle) {
	b := dst.Bounds()
	for _, r := range Tiles(window.Dx(), window.Dy(), b.Dx(), b.Dy()) {
		draw.Draw(dst, r.Add(b.Min), src, window.Min, draw.Src)
	}
}
