// Package placement maps a decoded bitmap onto a destination region.
//
// Every mode except Tile is expressed as one affine transform from
// destination pixels back into source space. Focus first derives a crop
// window from the trim box and then behaves like Maximize.
package placement

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// ErrBox reports a malformed or out of range trim box.
var ErrBox = errors.New("invalid trim box")

// Mode is a placement policy.
type Mode int

const (
	Center Mode = iota + 1
	Focus
	Maximize
	Stretch
	Tile
	Zoom
)

var modeNames = map[Mode]string{
	Center:   "center",
	Focus:    "focus",
	Maximize: "maximize",
	Stretch:  "stretch",
	Tile:     "tile",
	Zoom:     "zoom",
}

// Modes lists every mode in flag order.
func Modes() []Mode {
	return []Mode{Center, Focus, Maximize, Stretch, Tile, Zoom}
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// ParseMode accepts a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("unknown mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Box is a trim box in source pixels.
type Box struct {
	Width  uint16
	Height uint16
	X      uint16
	Y      uint16
}

// ParseBox parses WxH or WxH+X+Y. Width and height must be non-zero and the
// box must not extend past 65535 on either axis.
func ParseBox(s string) (Box, error) {
	size, offsets, hasOffsets := strings.Cut(s, "+")
	w, h, ok := strings.Cut(size, "x")
	if !ok {
		return Box{}, fmt.Errorf("%w: %s", ErrBox, s)
	}

	var vals [4]uint64
	fields := []string{w, h}
	if hasOffsets {
		x, y, ok := strings.Cut(offsets, "+")
		if !ok {
			return Box{}, fmt.Errorf("%w: %s", ErrBox, s)
		}
		fields = append(fields, x, y)
	}
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 16)
		if err != nil {
			return Box{}, fmt.Errorf("%w: %s", ErrBox, s)
		}
		vals[i] = v
	}

	b := Box{Width: uint16(vals[0]), Height: uint16(vals[1]), X: uint16(vals[2]), Y: uint16(vals[3])}
	if b.Width == 0 || b.Height == 0 ||
		uint32(b.X)+uint32(b.Width) > 0xffff || uint32(b.Y)+uint32(b.Height) > 0xffff {
		return Box{}, fmt.Errorf("%w: %s", ErrBox, s)
	}
	return b, nil
}

func (b Box) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", b.Width, b.Height, b.X, b.Y)
}

func (b Box) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Box) UnmarshalText(text []byte) error {
	parsed, err := ParseBox(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Fits reports whether the box lies inside a width x height image.
func (b Box) Fits(width, height int) bool {
	return int(b.X)+int(b.Width) <= width && int(b.Y)+int(b.Height) <= height
}

// Filter selects the resampling kernel.
type Filter int

const (
	// FilterAuto lets the caller pick a filter for the target depth.
	FilterAuto Filter = iota
	FilterFast
	FilterNearest
	FilterBilinear
	FilterBest
)

var filterNames = map[Filter]string{
	FilterAuto:     "auto",
	FilterFast:     "fast",
	FilterNearest:  "nearest",
	FilterBilinear: "bilinear",
	FilterBest:     "best",
}

func (f Filter) String() string {
	if s, ok := filterNames[f]; ok {
		return s
	}
	return "filter(" + strconv.Itoa(int(f)) + ")"
}

// ParseFilter accepts a filter name. "good" is an alias for bilinear.
func ParseFilter(s string) (Filter, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "good" {
		return FilterBilinear, nil
	}
	for f, n := range filterNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

func (f *Filter) UnmarshalText(text []byte) error {
	parsed, err := ParseFilter(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Interpolator returns the x/image/draw kernel for the filter. FilterAuto
// resolves to the best kernel.
func (f Filter) Interpolator() draw.Interpolator {
	switch f {
	case FilterFast, FilterNearest:
		return draw.NearestNeighbor
	case FilterBilinear:
		return draw.ApproxBiLinear
	default:
		return draw.CatmullRom
	}
}
