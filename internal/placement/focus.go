package placement

import "image"

// FocusWindow derives the source window for Focus mode. The window matches
// the destination aspect ratio, contains the whole trim box and zooms in no
// further than needed to avoid borders. Its offsets may be negative, and it
// may exceed the source, when the source is too small to satisfy both.
func FocusWindow(pixW, pixH int, trim image.Rectangle, dstW, dstH int) image.Rectangle {
	srcW, srcH := trim.Dx(), trim.Dy()
	ratio := float32(dstW) / float32(dstH)

	// Minimum box: depends only on the image size.
	var w, h int
	if pixW > dstW && pixH > dstH {
		w, h = dstW, dstH
	} else {
		rx := float32(dstW) / float32(pixW)
		ry := float32(dstH) / float32(pixH)
		if rx < ry {
			w, h = scaleSide(float32(pixH)*ratio), pixH
		} else {
			w, h = pixW, scaleSide(float32(pixW)/ratio)
		}
	}

	// Zoom out until the trim box fits.
	if srcW > w || srcH > h {
		rx := float32(srcW) / float32(w)
		ry := float32(srcH) / float32(h)
		if rx < ry {
			w, h = scaleSide(float32(srcH)*ratio), srcH
		} else {
			w, h = srcW, scaleSide(float32(srcW)/ratio)
		}
	}

	x := max(0, trim.Min.X-(w-srcW)/2)
	y := max(0, trim.Min.Y-(h-srcH)/2)
	if w > pixW-x {
		if w > pixW {
			x = (pixW - w) / 2
		} else {
			x = pixW - w
		}
	}
	if h > pixH-y {
		if h > pixH {
			y = (pixH - h) / 2
		} else {
			y = pixH - h
		}
	}
	return image.Rect(x, y, x+w, y+h)
}

// scaleSide truncates a derived side length into 1..65535.
func scaleSide(v float32) int {
	switch {
	case v < 1:
		return 1
	case v > 0xffff:
		return 0xffff
	}
	return int(v)
}
