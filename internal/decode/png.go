package decode

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
)

const pngSignature = "\x89PNG\r\n\x1a\n"

// PNG decodes Portable Network Graphics. Palette, grayscale and low bit
// depths are expanded by image/png; tRNS transparency becomes alpha and
// 16-bit samples are reduced to their high byte.
type PNG struct{}

func (PNG) Name() string { return "png" }

func (PNG) Decode(r io.Reader) (*bitmap.Bitmap, error) {
	header := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, header); err != nil || string(header) != pngSignature {
		return nil, formatErrf("png", "missing signature")
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("png: read: %w", err)
	}
	data := append(header, rest...)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, formatErr("png", err)
	}
	if err := checkDimensions("png", cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, formatErr("png", err)
	}
	return FromImage(img)
}
