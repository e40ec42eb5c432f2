package decode

import (
	"image"
	"image/color"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
)

// FromImage converts a standard library image into a bitmap. 16-bit samples
// keep their high byte, grayscale is replicated into all colour channels and
// images without alpha get alpha 0xFF. CMYK uses the naive conversion
// channel = 255 - min(255, colour+K).
func FromImage(img image.Image) (*bitmap.Bitmap, error) {
	b := img.Bounds()
	if err := checkDimensions("image", b.Dx(), b.Dy()); err != nil {
		return nil, err
	}

	var at func(x, y int) uint32
	switch src := img.(type) {
	case *image.NRGBA:
		at = func(x, y int) uint32 {
			p := src.Pix[src.PixOffset(x, y):]
			return bitmap.ARGB(p[3], p[0], p[1], p[2])
		}
	case *image.RGBA:
		at = func(x, y int) uint32 {
			p := src.Pix[src.PixOffset(x, y):]
			return bitmap.ARGB(p[3], p[0], p[1], p[2])
		}
	case *image.NRGBA64:
		at = func(x, y int) uint32 {
			p := src.Pix[src.PixOffset(x, y):]
			return bitmap.ARGB(p[6], p[0], p[2], p[4])
		}
	case *image.RGBA64:
		at = func(x, y int) uint32 {
			p := src.Pix[src.PixOffset(x, y):]
			return bitmap.ARGB(p[6], p[0], p[2], p[4])
		}
	case *image.Gray:
		at = func(x, y int) uint32 {
			v := src.Pix[src.PixOffset(x, y)]
			return bitmap.ARGB(0xff, v, v, v)
		}
	case *image.Gray16:
		at = func(x, y int) uint32 {
			v := src.Pix[src.PixOffset(x, y)]
			return bitmap.ARGB(0xff, v, v, v)
		}
	case *image.Paletted:
		palette := make([]uint32, len(src.Palette))
		for i, c := range src.Palette {
			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			palette[i] = bitmap.ARGB(n.A, n.R, n.G, n.B)
		}
		at = func(x, y int) uint32 {
			idx := int(src.Pix[src.PixOffset(x, y)])
			if idx >= len(palette) {
				return 0
			}
			return palette[idx]
		}
	case *image.YCbCr:
		at = func(x, y int) uint32 {
			yi, ci := src.YOffset(x, y), src.COffset(x, y)
			r, g, bl := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
			return bitmap.ARGB(0xff, r, g, bl)
		}
	case *image.NYCbCrA:
		at = func(x, y int) uint32 {
			yi, ci := src.YOffset(x, y), src.COffset(x, y)
			r, g, bl := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
			return bitmap.ARGB(src.A[src.AOffset(x, y)], r, g, bl)
		}
	case *image.CMYK:
		at = func(x, y int) uint32 {
			p := src.Pix[src.PixOffset(x, y):]
			k := p[3]
			return bitmap.ARGB(0xff, cmykChannel(p[0], k), cmykChannel(p[1], k), cmykChannel(p[2], k))
		}
	default:
		return nil, formatErrf("image", "unsupported pixel layout %T", img)
	}

	bm, err := bitmap.New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < bm.Height; y++ {
		row := bm.Row(y)
		for x := range row {
			row[x] = at(b.Min.X+x, b.Min.Y+y)
		}
	}
	return bm, nil
}

func cmykChannel(c, k uint8) uint8 {
	sum := int(c) + int(k)
	if sum > 255 {
		sum = 255
	}
	return uint8(255 - sum)
}
