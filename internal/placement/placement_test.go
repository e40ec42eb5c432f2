package placement

import (
	"errors"
	"image"
	"image/color"
	"math"
	"reflect"
	"testing"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
)

var (
	red   = color.RGBA{R: 0xff, A: 0xff}
	green = color.RGBA{G: 0xff, A: 0xff}
	black = color.RGBA{A: 0xff}
)

func newBitmap(t *testing.T, w, h int, pixels ...uint32) *bitmap.Bitmap {
	t.Helper()
	bm, err := bitmap.New(w, h)
	if err != nil {
		t.Fatalf("new bitmap: %v", err)
	}
	copy(bm.Pix, pixels)
	return bm
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestPlanMaximizeAndZoom(t *testing.T) {
	req := Request{SourceWidth: 100, SourceHeight: 200, Width: 400, Height: 100}

	req.Mode = Zoom
	zoom := Plan(req)
	if !approx(zoom.ScaleX, 0.5) || !approx(zoom.ScaleY, 0.5) {
		t.Fatalf("expected zoom scale 0.5, got %v/%v", zoom.ScaleX, zoom.ScaleY)
	}

	req.Mode = Maximize
	maximize := Plan(req)
	if !approx(maximize.ScaleX, 4) || !approx(maximize.ScaleY, 4) {
		t.Fatalf("expected maximize scale 4, got %v/%v", maximize.ScaleX, maximize.ScaleY)
	}
	// 400/4 = 100 source columns cover the destination width exactly,
	// 100/4 = 25 source rows are centered in 200.
	if !approx(maximize.OriginX, 0) || !approx(maximize.OriginY, 87.5) {
		t.Fatalf("unexpected maximize origin %v,%v", maximize.OriginX, maximize.OriginY)
	}
}

func TestPlanStretch(t *testing.T) {
	tr := Plan(Request{SourceWidth: 100, SourceHeight: 200, Width: 400, Height: 100, Mode: Stretch, Filter: FilterBest})
	if !approx(tr.ScaleX, 4) || !approx(tr.ScaleY, 0.5) {
		t.Fatalf("unexpected stretch scale %v/%v", tr.ScaleX, tr.ScaleY)
	}
	if tr.OriginX != 0 || tr.OriginY != 0 {
		t.Fatalf("expected stretch origin at 0,0, got %v,%v", tr.OriginX, tr.OriginY)
	}
	if tr.Filter != FilterBest {
		t.Fatalf("expected filter to be kept, got %v", tr.Filter)
	}
}

func TestPlanCenterUsesFastFilter(t *testing.T) {
	tr := Plan(Request{SourceWidth: 10, SourceHeight: 10, Width: 30, Height: 20, Mode: Center, Filter: FilterBest})
	if tr.ScaleX != 1 || tr.ScaleY != 1 {
		t.Fatalf("expected unit scale, got %v/%v", tr.ScaleX, tr.ScaleY)
	}
	if tr.Filter != FilterFast {
		t.Fatalf("expected fast filter, got %v", tr.Filter)
	}
	if tr.OriginX != -10 || tr.OriginY != -5 {
		t.Fatalf("expected centered origin -10,-5, got %v,%v", tr.OriginX, tr.OriginY)
	}
	if x, y := tr.Translate(); x != -10 || y != -5 {
		t.Fatalf("unexpected translate %v,%v", x, y)
	}
}

func TestPlanCenterWithTrim(t *testing.T) {
	trim := &Box{Width: 4, Height: 4, X: 6, Y: 2}
	tr := Plan(Request{SourceWidth: 10, SourceHeight: 10, Width: 4, Height: 4, Mode: Center, Trim: trim})
	if x, y := tr.sourcePoint(0, 0); x != 6 || y != 2 {
		t.Fatalf("expected destination origin to map to trim offset, got %v,%v", x, y)
	}
}

func TestFocusWindow(t *testing.T) {
	tests := []struct {
		name       string
		pixW, pixH int
		trim       image.Rectangle
		dstW, dstH int
		want       image.Rectangle
	}{
		{
			name: "centered focus on small source",
			pixW: 1000, pixH: 1000,
			trim: image.Rect(450, 450, 550, 550),
			dstW: 2000, dstH: 1000,
			want: image.Rect(0, 250, 1000, 750),
		},
		{
			name: "large source keeps output size",
			pixW: 4000, pixH: 3000,
			trim: image.Rect(0, 0, 100, 100),
			dstW: 1920, dstH: 1080,
			want: image.Rect(0, 0, 1920, 1080),
		},
		{
			name: "focus near the far edge is clamped",
			pixW: 4000, pixH: 3000,
			trim: image.Rect(3900, 2900, 4000, 3000),
			dstW: 1920, dstH: 1080,
			want: image.Rect(2080, 1920, 4000, 3000),
		},
		{
			name: "trim box wider than source allows",
			pixW: 4000, pixH: 3000,
			trim: image.Rect(500, 0, 3500, 3000),
			dstW: 1920, dstH: 1080,
			want: image.Rect(-666, 0, 4667, 3000),
		},
		{
			name: "very wide output floors height at one",
			pixW: 10, pixH: 10,
			trim: image.Rect(0, 0, 1, 1),
			dstW: 65535, dstH: 1,
			want: image.Rect(0, 0, 10, 1),
		},
		{
			name: "very tall output floors width at one",
			pixW: 10, pixH: 10,
			trim: image.Rect(4, 4, 5, 5),
			dstW: 1, dstH: 65535,
			want: image.Rect(4, 0, 5, 10),
		},
		{
			name: "grown width is capped",
			pixW: 10, pixH: 10,
			trim: image.Rect(0, 0, 10, 10),
			dstW: 65535, dstH: 1,
			want: image.Rect(-32762, 0, 32773, 10),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FocusWindow(tt.pixW, tt.pixH, tt.trim, tt.dstW, tt.dstH)
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPlanFocusCentersTrimBox(t *testing.T) {
	trim := &Box{Width: 100, Height: 100, X: 450, Y: 450}
	tr := Plan(Request{SourceWidth: 1000, SourceHeight: 1000, Width: 2000, Height: 1000, Mode: Focus, Trim: trim})
	if tr.Window != image.Rect(0, 250, 1000, 750) {
		t.Fatalf("unexpected focus window %v", tr.Window)
	}
	if !approx(tr.ScaleX, 2) || !approx(tr.ScaleY, 2) {
		t.Fatalf("expected scale 2, got %v/%v", tr.ScaleX, tr.ScaleY)
	}
	if x, y := tr.sourcePoint(0, 0); !approx(x, 0) || !approx(y, 250) {
		t.Fatalf("expected destination origin at 0,250, got %v,%v", x, y)
	}
}

func TestPlanFocusKeepsWholeTrimVisible(t *testing.T) {
	tr := Plan(Request{SourceWidth: 1000, SourceHeight: 1000, Width: 1920, Height: 1080, Mode: Focus})
	if tr.Window != image.Rect(-388, 0, 1389, 1000) {
		t.Fatalf("unexpected focus window %v", tr.Window)
	}
	// 1920/1777 would crop the rows; 1080/1000 keeps all of them.
	if !approx(tr.ScaleX, 1.08) || !approx(tr.ScaleY, 1.08) {
		t.Fatalf("expected scale 1.08, got %v/%v", tr.ScaleX, tr.ScaleY)
	}
	if _, top := tr.sourcePoint(0, 0); !approx(top, 0) {
		t.Fatalf("expected first row at 0, got %v", top)
	}
	if _, bottom := tr.sourcePoint(0, 1080); !approx(bottom, 1000) {
		t.Fatalf("expected last row at 1000, got %v", bottom)
	}
}

func TestTiles(t *testing.T) {
	got := Tiles(3, 3, 7, 4)
	want := []image.Rectangle{
		image.Rect(0, 0, 3, 3), image.Rect(3, 0, 6, 3), image.Rect(6, 0, 7, 3),
		image.Rect(0, 3, 3, 4), image.Rect(3, 3, 6, 4), image.Rect(6, 3, 7, 4),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if len(Tiles(2, 2, 4, 4)) != 4 {
		t.Fatalf("expected exact 2x2 grid")
	}
}

func TestComposeTile(t *testing.T) {
	src := newBitmap(t, 2, 1, 0xffff0000, 0xff00ff00)
	dst := image.NewRGBA(image.Rect(0, 0, 5, 2))
	if err := Compose(dst, src, Request{Mode: Tile, Width: 5, Height: 2}); err != nil {
		t.Fatalf("compose: %v", err)
	}
	want := []color.RGBA{red, green, red, green, red}
	for y := 0; y < 2; y++ {
		for x, w := range want {
			if got := dst.RGBAAt(x, y); got != w {
				t.Fatalf("pixel (%d,%d): expected %v, got %v", x, y, w, got)
			}
		}
	}
}

func TestComposeTileWithTrim(t *testing.T) {
	src := newBitmap(t, 3, 1, 0xffff0000, 0xff00ff00, 0xff0000ff)
	dst := image.NewRGBA(image.Rect(0, 0, 3, 1))
	req := Request{Mode: Tile, Width: 3, Height: 1, Trim: &Box{Width: 1, Height: 1, X: 1}}
	if err := Compose(dst, src, req); err != nil {
		t.Fatalf("compose: %v", err)
	}
	for x := 0; x < 3; x++ {
		if got := dst.RGBAAt(x, 0); got != green {
			t.Fatalf("pixel %d: expected green, got %v", x, got)
		}
	}
}

func TestComposeCenterIdentity(t *testing.T) {
	src := newBitmap(t, 3, 2, 0x00112233, 0xff445566, 0x80778899, 0xffaabbcc, 0xffddeeff, 0xff000000)
	dst := image.NewRGBA(image.Rect(0, 0, 3, 2))
	if err := Compose(dst, src, Request{Mode: Center, Width: 3, Height: 2}); err != nil {
		t.Fatalf("compose: %v", err)
	}
	for i, p := range src.Pix {
		x, y := i%3, i/3
		_, r, g, b := bitmap.Channels(p)
		want := color.RGBA{R: r, G: g, B: b, A: 0xff}
		if got := dst.RGBAAt(x, y); got != want {
			t.Fatalf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
		}
	}
}

func TestComposeCenterPadsWithBlack(t *testing.T) {
	src := newBitmap(t, 2, 2, 0xffff0000, 0xffff0000, 0xffff0000, 0xffff0000)
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range dst.Pix {
		dst.Pix[i] = 0x7f
	}
	if err := Compose(dst, src, Request{Mode: Center, Width: 4, Height: 4}); err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got := dst.RGBAAt(0, 0); got != black {
		t.Fatalf("expected black corner, got %v", got)
	}
	if got := dst.RGBAAt(1, 1); got != red {
		t.Fatalf("expected red center, got %v", got)
	}
	if got := dst.RGBAAt(3, 2); got != black {
		t.Fatalf("expected black edge, got %v", got)
	}
}

func TestComposeZoomLetterboxes(t *testing.T) {
	src := newBitmap(t, 2, 1, 0xffff0000, 0xffff0000)
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	req := Request{Mode: Zoom, Width: 4, Height: 4, Filter: FilterNearest}
	if err := Compose(dst, src, req); err != nil {
		t.Fatalf("compose: %v", err)
	}
	for y, want := range []color.RGBA{black, red, red, black} {
		if got := dst.RGBAAt(2, y); got != want {
			t.Fatalf("row %d: expected %v, got %v", y, want, got)
		}
	}
}

func TestComposeMaximizeCovers(t *testing.T) {
	src := newBitmap(t, 2, 1, 0xffff0000, 0xff00ff00)
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	req := Request{Mode: Maximize, Width: 4, Height: 4, Filter: FilterNearest}
	if err := Compose(dst, src, req); err != nil {
		t.Fatalf("compose: %v", err)
	}
	for y := 0; y < 4; y++ {
		for x, want := range []color.RGBA{red, red, green, green} {
			if got := dst.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

func TestComposeRejectsOversizedTrim(t *testing.T) {
	src := newBitmap(t, 2, 2)
	dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
	err := Compose(dst, src, Request{Mode: Stretch, Width: 2, Height: 2, Trim: &Box{Width: 2, Height: 2, X: 1}})
	if !errors.Is(err, ErrBox) {
		t.Fatalf("expected ErrBox, got %v", err)
	}
}

func TestParseBox(t *testing.T) {
	tests := []struct {
		in   string
		want Box
		ok   bool
	}{
		{in: "100x200", want: Box{Width: 100, Height: 200}, ok: true},
		{in: "100x200+5+6", want: Box{Width: 100, Height: 200, X: 5, Y: 6}, ok: true},
		{in: "65535x1", want: Box{Width: 65535, Height: 1}, ok: true},
		{in: "65535x1+1+0", ok: false},
		{in: "0x10", ok: false},
		{in: "10x0", ok: false},
		{in: "10x10+5", ok: false},
		{in: "10x10+1+2+3", ok: false},
		{in: "70000x10", ok: false},
		{in: "-1x10", ok: false},
		{in: "10", ok: false},
	}
	for _, tt := range tests {
		got, err := ParseBox(tt.in)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("ParseBox(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, ErrBox) {
			t.Errorf("ParseBox(%q): expected ErrBox, got %v", tt.in, err)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("fill"); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
	var m Mode
	if err := m.UnmarshalText([]byte("Zoom")); err != nil || m != Zoom {
		t.Fatalf("UnmarshalText = %v, %v", m, err)
	}
}

func TestParseFilter(t *testing.T) {
	tests := map[string]Filter{
		"nearest":  FilterNearest,
		"bilinear": FilterBilinear,
		"good":     FilterBilinear,
		"BEST":     FilterBest,
		"fast":     FilterFast,
	}
	for in, want := range tests {
		got, err := ParseFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseFilter(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFilter("lanczos"); err == nil {
		t.Fatalf("expected unknown filter to fail")
	}
}
