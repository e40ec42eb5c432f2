package decode

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
	"github.com/1broseidon/xwallpaper/internal/safemath"
)

const xpmMagic = "/* XPM */"

// maxXPMCharsPerPixel bounds the key length of a colour table entry.
const maxXPMCharsPerPixel = 8

// XPM decodes XPM3 text pixmaps. Symbolic colour names the local table does
// not know are sent to Resolver, which is normally the display connection.
type XPM struct {
	Resolver ColorResolver
}

func (XPM) Name() string { return "xpm" }

func (d XPM) Decode(r io.Reader) (*bitmap.Bitmap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("xpm: read: %w", err)
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte(xpmMagic)) {
		return nil, formatErrf("xpm", "missing %q header", xpmMagic)
	}

	strs, err := xpmStrings(trimmed[len(xpmMagic):])
	if err != nil {
		return nil, err
	}
	if len(strs) == 0 {
		return nil, formatErrf("xpm", "missing values line")
	}

	width, height, ncolors, cpp, err := parseXPMValues(strs[0])
	if err != nil {
		return nil, err
	}
	// Compared by subtraction: ncolors is only bounded by strconv.
	if ncolors > len(strs)-1 || height > len(strs)-1-ncolors {
		return nil, formatErrf("xpm", "expected %d strings, found %d", 1+ncolors+height, len(strs))
	}

	colors := make(map[string]uint32, ncolors)
	for _, line := range strs[1 : 1+ncolors] {
		if len(line) < cpp {
			return nil, formatErrf("xpm", "colour entry %q shorter than %d characters", line, cpp)
		}
		colors[line[:cpp]] = resolveColor(pickXPMColor(line[cpp:]), d.Resolver)
	}

	rowLen, err := safemath.Mul(width, cpp)
	if err != nil {
		return nil, err
	}
	rows := strs[1+ncolors : 1+ncolors+height]
	for y, line := range rows {
		if len(line) < rowLen {
			return nil, formatErrf("xpm", "row %d has %d characters, need %d", y, len(line), rowLen)
		}
	}
	bm, err := bitmap.New(width, height)
	if err != nil {
		return nil, err
	}
	for y, line := range rows {
		row := bm.Row(y)
		for x := range row {
			// Keys missing from the colour table become transparent black.
			row[x] = colors[line[x*cpp:(x+1)*cpp]]
		}
	}
	return bm, nil
}

// parseXPMValues reads "width height ncolors cpp [x_hotspot y_hotspot] [XPMEXT]".
func parseXPMValues(line string) (width, height, ncolors, cpp int, err error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return 0, 0, 0, 0, formatErrf("xpm", "malformed values line %q", line)
	}
	var vals [4]int
	for i := range vals {
		v, convErr := strconv.Atoi(fields[i])
		if convErr != nil || v < 0 {
			return 0, 0, 0, 0, formatErrf("xpm", "malformed values line %q", line)
		}
		vals[i] = v
	}
	width, height, ncolors, cpp = vals[0], vals[1], vals[2], vals[3]

	if err := checkDimensions("xpm", width, height); err != nil {
		return 0, 0, 0, 0, err
	}
	if ncolors < 1 {
		return 0, 0, 0, 0, formatErrf("xpm", "no colours defined")
	}
	if cpp < 1 || cpp > maxXPMCharsPerPixel {
		return 0, 0, 0, 0, formatErrf("xpm", "unsupported %d characters per pixel", cpp)
	}
	return width, height, ncolors, cpp, nil
}

// pickXPMColor selects the colour for one table entry, preferring the colour
// visual, then grayscale, 4-level grayscale and finally monochrome. Values
// may contain blanks ("c light blue").
func pickXPMColor(spec string) string {
	values := make(map[string]string, 4)
	var key string
	var words []string
	flush := func() {
		if key != "" {
			values[key] = strings.Join(words, " ")
		}
		words = words[:0]
	}
	for _, tok := range strings.Fields(spec) {
		switch tok {
		case "c", "m", "g", "g4", "s":
			flush()
			key = tok
		default:
			words = append(words, tok)
		}
	}
	flush()

	for _, k := range []string{"c", "g", "g4", "m"} {
		if v, ok := values[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

// xpmStrings extracts the C string literals that follow the XPM header,
// skipping comments between them.
func xpmStrings(src []byte) ([]string, error) {
	var out []string
	for i := 0; i < len(src); i++ {
		switch {
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return nil, formatErrf("xpm", "unterminated comment")
			}
			i += end + 3
		case src[i] == '"':
			var sb strings.Builder
			j := i + 1
			for ; j < len(src) && src[j] != '"'; j++ {
				if src[j] == '\n' {
					return nil, formatErrf("xpm", "unterminated string")
				}
				if src[j] == '\\' && j+1 < len(src) {
					j++
				}
				sb.WriteByte(src[j])
			}
			if j >= len(src) {
				return nil, formatErrf("xpm", "unterminated string")
			}
			out = append(out, sb.String())
			i = j
		}
	}
	return out, nil
}
