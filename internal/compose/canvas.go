package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/1broseidon/xwallpaper/internal/outputs"
)

// Canvas is an in-memory screen. It backs offline rendering and tests.
type Canvas struct {
	img    *image.RGBA
	layout outputs.Layout
	depth  int
}

// NewCanvas returns a width x height canvas filled with black and the
// given RandR outputs. With no outputs the canvas behaves like a screen
// without RandR.
func NewCanvas(width, height uint16, infos []outputs.Info) *Canvas {
	return NewCanvasColor(width, height, infos, color.RGBA{A: 0xff})
}

// NewCanvasColor is NewCanvas with a custom background.
func NewCanvasColor(width, height uint16, infos []outputs.Info, bg color.RGBA) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return &Canvas{
		img:    img,
		layout: outputs.Build(width, height, infos, len(infos) > 0),
		depth:  24,
	}
}

// SetDepth changes the depth reported to the renderer.
func (c *Canvas) SetDepth(depth int) { c.depth = depth }

func (c *Canvas) Layout() (outputs.Layout, error) { return c.layout, nil }

func (c *Canvas) Depth() int { return c.depth }

// Put copies img to the region's position. Parts outside the canvas are
// clipped.
func (c *Canvas) Put(region outputs.Region, img *image.RGBA) error {
	r := region.Rect()
	if r.Dx() != img.Bounds().Dx() || r.Dy() != img.Bounds().Dy() {
		return fmt.Errorf("image is %dx%d, region %s", img.Bounds().Dx(), img.Bounds().Dy(), region)
	}
	draw.Draw(c.img, r, img, img.Bounds().Min, draw.Src)
	return nil
}

// Image returns the canvas pixels.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Snapshot writes the canvas to path; the format follows the extension.
func (c *Canvas) Snapshot(path string) error {
	if err := imaging.Save(c.img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
