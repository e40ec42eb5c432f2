package decode

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/gen2brain/jpegn"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
)

// JPEG decodes baseline and progressive JPEG files. Grayscale, YCbCr and
// CMYK sources are supported; anything the library reports as malformed,
// including an internal panic, is a format failure for this attempt only.
type JPEG struct{}

func (JPEG) Name() string { return "jpeg" }

func (JPEG) Decode(r io.Reader) (*bitmap.Bitmap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("jpeg: read: %w", err)
	}
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		return nil, formatErrf("jpeg", "missing SOI marker")
	}

	cfg, err := guardJPEG(func() (image.Image, image.Config, error) {
		cfg, err := jpegn.DecodeConfig(bytes.NewReader(data))
		return nil, cfg, err
	})
	if err != nil {
		return nil, err
	}
	if err := checkDimensions("jpeg", cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	var img image.Image
	if _, err := guardJPEG(func() (image.Image, image.Config, error) {
		var err error
		img, err = jpegn.Decode(bytes.NewReader(data))
		return img, image.Config{}, err
	}); err != nil {
		return nil, err
	}

	switch img.(type) {
	case *image.Gray, *image.YCbCr, *image.RGBA, *image.NRGBA, *image.CMYK:
	default:
		return nil, formatErrf("jpeg", "unsupported output colour space %T", img)
	}
	return FromImage(img)
}

// guardJPEG runs one library call and converts both returned errors and
// panics into format failures, so a corrupt stream never escapes this
// decoder.
func guardJPEG(call func() (image.Image, image.Config, error)) (cfg image.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = formatErrf("jpeg", "decoder aborted: %v", r)
		}
	}()
	_, cfg, err = call()
	if err != nil {
		return cfg, formatErr("jpeg", err)
	}
	return cfg, nil
}
