package decode

import (
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// x11Overrides lists names where the X11 rgb.txt database disagrees with the
// SVG/CSS table shipped by colornames.
var x11Overrides = map[string][3]uint8{
	"gray":   {0xbe, 0xbe, 0xbe},
	"grey":   {0xbe, 0xbe, 0xbe},
	"green":  {0x00, 0xff, 0x00},
	"maroon": {0xb0, 0x30, 0x60},
	"purple": {0xa0, 0x20, 0xf0},
}

// parseHexColor accepts #RGB, #RRGGBB, #RRRGGGBBB and #RRRRGGGGBBBB. Short
// forms are shifted into the high bits as X11 does, so #f00 is 0xf000.
func parseHexColor(s string) (r, g, b uint16, ok bool) {
	if len(s) < 4 || s[0] != '#' {
		return 0, 0, 0, false
	}
	digits := s[1:]
	if len(digits)%3 != 0 || len(digits) > 12 {
		return 0, 0, 0, false
	}
	n := len(digits) / 3
	var out [3]uint16
	for i := range out {
		v, err := strconv.ParseUint(digits[i*n:(i+1)*n], 16, 16)
		if err != nil {
			return 0, 0, 0, false
		}
		out[i] = uint16(v << (16 - 4*n))
	}
	return out[0], out[1], out[2], true
}

// normalizeColorName folds case and drops blanks: "Light Blue" and
// "lightblue" name the same colour in the X11 database.
func normalizeColorName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// lookupLocalColor resolves a symbolic name without a display connection.
func lookupLocalColor(name string) (r, g, b uint8, ok bool) {
	key := normalizeColorName(name)
	if c, found := x11Overrides[key]; found {
		return c[0], c[1], c[2], true
	}
	if c, found := colornames.Map[key]; found {
		return c.R, c.G, c.B, true
	}
	return 0, 0, 0, false
}

// resolveColor turns one colour table value into a canonical pixel. None and
// an empty value are fully transparent; names nobody can resolve are opaque
// black.
func resolveColor(value string, resolver ColorResolver) uint32 {
	if value == "" || strings.EqualFold(value, "none") {
		return 0
	}
	if r, g, b, ok := parseHexColor(value); ok {
		return 0xff000000 | uint32(r>>8)<<16 | uint32(g>>8)<<8 | uint32(b>>8)
	}
	if r, g, b, ok := lookupLocalColor(value); ok {
		return 0xff000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	}
	if resolver != nil {
		if r, g, b, ok := resolver.LookupColor(value); ok {
			return 0xff000000 | uint32(r>>8)<<16 | uint32(g>>8)<<8 | uint32(b>>8)
		}
	}
	return 0xff000000
}
