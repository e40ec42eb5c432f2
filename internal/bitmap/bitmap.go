// Package bitmap holds the canonical decoded image shared by all decoders
// and the compositor.
package bitmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/1broseidon/xwallpaper/internal/safemath"
)

// MaxDimension is the largest width or height accepted anywhere in the
// pipeline. X11 geometry is 16 bit.
const MaxDimension = 65535

// ErrDimensions reports a zero or oversized width/height.
var ErrDimensions = errors.New("illegal dimensions")

// Bitmap is a 32-bit-per-pixel image with pixels packed as 0xAARRGGBB.
// Colour channels are not premultiplied.
type Bitmap struct {
	Width  int
	Height int
	// Stride is the number of bytes per row; always a multiple of 4.
	Stride int
	Pix    []uint32

	opaque *image.RGBA
}

// CheckDimensions rejects sizes outside 1..MaxDimension.
func CheckDimensions(width, height int) error {
	if width < 1 || height < 1 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	return nil
}

// New allocates a zeroed (transparent black) bitmap.
func New(width, height int) (*Bitmap, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}
	pix, err := safemath.Uint32s(width, height)
	if err != nil {
		return nil, err
	}
	return &Bitmap{
		Width:  width,
		Height: height,
		Stride: width * 4,
		Pix:    pix,
	}, nil
}

// ARGB packs four channels into the canonical pixel format.
func ARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Channels unpacks a canonical pixel.
func Channels(p uint32) (a, r, g, b uint8) {
	return uint8(p >> 24), uint8(p >> 16), uint8(p >> 8), uint8(p)
}

func (b *Bitmap) offset(x, y int) int {
	return y*(b.Stride/4) + x
}

// Pixel returns the packed pixel at (x, y).
func (b *Bitmap) Pixel(x, y int) uint32 {
	return b.Pix[b.offset(x, y)]
}

// Set stores a packed pixel at (x, y).
func (b *Bitmap) Set(x, y int, p uint32) {
	b.Pix[b.offset(x, y)] = p
	b.opaque = nil
}

// Row returns the pixels of row y.
func (b *Bitmap) Row(y int) []uint32 {
	start := b.offset(0, y)
	return b.Pix[start : start+b.Width]
}

// ColorModel implements image.Image.
func (b *Bitmap) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (b *Bitmap) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

// At implements image.Image.
func (b *Bitmap) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(b.Bounds())) {
		return color.NRGBA{}
	}
	a, r, g, bl := Channels(b.Pixel(x, y))
	return color.NRGBA{R: r, G: g, B: bl, A: a}
}

// Opaque returns the bitmap as an *image.RGBA with the colour channels
// copied unchanged and alpha forced to 0xFF. The root window has no alpha
// channel, so that is what ends up on screen. The result is memoized and
// must not be modified.
func (b *Bitmap) Opaque() (*image.RGBA, error) {
	if b.opaque != nil {
		return b.opaque, nil
	}
	pix, err := safemath.Bytes(b.Height, b.Width*4)
	if err != nil {
		return nil, err
	}
	img := &image.RGBA{Pix: pix, Stride: b.Width * 4, Rect: b.Bounds()}
	for y := 0; y < b.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x, p := range b.Row(y) {
			_, r, g, bl := Channels(p)
			i := x * 4
			row[i+0] = r
			row[i+1] = g
			row[i+2] = bl
			row[i+3] = 0xff
		}
	}
	b.opaque = img
	return img, nil
}
