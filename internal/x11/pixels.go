package x11

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/1broseidon/xwallpaper/internal/safemath"
)

// putImageHeader is the size of a PutImage request without pixel data.
const putImageHeader = 24

// BitsPerPixel returns the ZPixmap pixel size used for a root depth.
func BitsPerPixel(depth byte) int {
	if depth == 16 {
		return 16
	}
	return 32
}

// RowBytes is the padded length of one ZPixmap row.
func RowBytes(width int, depth byte) (int, error) {
	n, err := safemath.Mul(width, BitsPerPixel(depth)/8)
	if err != nil {
		return 0, err
	}
	return (n + 3) &^ 3, nil
}

// Encode converts img to ZPixmap data for depth, in the server's image
// byte order. Depth 16 is r5g6b5, 30 is x2r10g10b10, anything else is
// x8r8g8b8.
func Encode(img *image.RGBA, depth byte, order binary.ByteOrder) ([]byte, int, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	stride, err := RowBytes(w, depth)
	if err != nil {
		return nil, 0, err
	}
	data, err := safemath.Bytes(h, stride)
	if err != nil {
		return nil, 0, err
	}

	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		row := data[y*stride:]
		for x := 0; x < w; x++ {
			r, g, bl := src[x*4], src[x*4+1], src[x*4+2]
			switch depth {
			case 16:
				order.PutUint16(row[x*2:], uint16(r>>3)<<11|uint16(g>>2)<<5|uint16(bl>>3))
			case 30:
				order.PutUint32(row[x*4:], 3<<30|expand10(r)<<20|expand10(g)<<10|expand10(bl))
			default:
				order.PutUint32(row[x*4:], 0xff<<24|uint32(r)<<16|uint32(g)<<8|uint32(bl))
			}
		}
	}
	return data, stride, nil
}

func expand10(v uint8) uint32 {
	return uint32(v)<<2 | uint32(v)>>6
}

// RowsPerRequest is the number of rows of length rowLen that fit into one
// PutImage request when the server accepts maxRequest 4-byte units.
func RowsPerRequest(maxRequest uint32, rowLen int) (int, error) {
	maxLen := int(maxRequest) * 4
	if maxLen <= putImageHeader || rowLen <= 0 {
		return 0, fmt.Errorf("unable to put image on X server")
	}
	rows := (maxLen - putImageHeader) / rowLen
	if rows < 1 {
		return 0, fmt.Errorf("unable to put image on X server")
	}
	return rows, nil
}
