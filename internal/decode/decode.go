// Package decode turns image files into canonical bitmaps.
//
// Each supported container format has its own Decoder. A Chain tries them in
// order against the same rewindable stream; a decoder that does not
// recognise its input returns an error wrapping ErrFormat and the chain moves
// on. Any other error (allocation limits, I/O failures) stops the chain.
package decode

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
)

// ErrFormat reports that a decoder does not accept its input.
var ErrFormat = errors.New("unrecognized image data")

// ErrNoDecoder is returned by Chain.Decode when every decoder refused.
var ErrNoDecoder = errors.New("no decoder accepted the input")

// Decoder converts one container format into a bitmap.
type Decoder interface {
	Name() string
	Decode(r io.Reader) (*bitmap.Bitmap, error)
}

// ColorResolver resolves symbolic colour names the local table does not
// know. The display connection implements it for the XPM decoder.
type ColorResolver interface {
	LookupColor(name string) (r, g, b uint16, ok bool)
}

func formatErr(format string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrFormat, format, err)
}

func formatErrf(format, msg string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrFormat, format, fmt.Sprintf(msg, args...))
}

// checkDimensions validates a header-declared size before anything is
// allocated for it.
func checkDimensions(format string, width, height int) error {
	if err := bitmap.CheckDimensions(width, height); err != nil {
		return formatErr(format, err)
	}
	return nil
}

// Chain is an ordered list of decoders.
type Chain struct {
	decoders []Decoder
	logger   *slog.Logger
}

// NewChain builds a chain trying decoders in the given order.
func NewChain(logger *slog.Logger, decoders ...Decoder) *Chain {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Chain{decoders: decoders, logger: logger}
}

// DefaultChain returns PNG, JPEG, WEBP, XPM and farbfeld decoders in that
// order. resolver may be nil when no display is available.
func DefaultChain(resolver ColorResolver, logger *slog.Logger) *Chain {
	return NewChain(logger,
		PNG{},
		JPEG{},
		WEBP{},
		XPM{Resolver: resolver},
		Farbfeld{},
	)
}

// Decoders returns the names of the decoders in trial order.
func (c *Chain) Decoders() []string {
	names := make([]string, 0, len(c.decoders))
	for _, d := range c.decoders {
		names = append(names, d.Name())
	}
	return names
}

// Decode rewinds rs before each attempt and returns the first bitmap a
// decoder produces, together with that decoder's name.
func (c *Chain) Decode(rs io.ReadSeeker) (*bitmap.Bitmap, string, error) {
	for _, d := range c.decoders {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, "", fmt.Errorf("rewind input: %w", err)
		}
		bm, err := d.Decode(rs)
		if err == nil {
			return bm, d.Name(), nil
		}
		if !errors.Is(err, ErrFormat) {
			return nil, d.Name(), err
		}
		c.logger.Debug("decoder declined input", "decoder", d.Name(), "reason", err)
	}
	return nil, "", ErrNoDecoder
}
