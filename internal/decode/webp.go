package decode

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/webp"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
)

// WEBP decodes still WebP images, lossy or lossless, with or without alpha.
type WEBP struct{}

func (WEBP) Name() string { return "webp" }

func (WEBP) Decode(r io.Reader) (*bitmap.Bitmap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("webp: read: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil, formatErrf("webp", "missing RIFF/WEBP signature")
	}

	cfg, err := webp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, formatErr("webp", err)
	}
	if err := checkDimensions("webp", cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, formatErr("webp", err)
	}
	return FromImage(img)
}
