package x11

import (
	"encoding/binary"
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 0xff, A: 0xff})
	img.SetRGBA(1, 0, color.RGBA{G: 0xff, A: 0xff})
	img.SetRGBA(2, 0, color.RGBA{B: 0xff, A: 0xff})
	img.SetRGBA(0, 1, color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff})
	return img
}

func TestEncode_Depth24(t *testing.T) {
	data, stride, err := Encode(testImage(), 24, binary.LittleEndian)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if stride != 12 {
		t.Fatalf("stride = %d, want 12", stride)
	}
	want := []byte{
		0x00, 0x00, 0xff, 0xff, 0x00, 0xff, 0x00, 0xff, 0xff, 0x00, 0x00, 0xff,
		0x56, 0x34, 0x12, 0xff, 0x00, 0x00, 0x00, 0xff, 0x00, 0x00, 0x00, 0xff,
	}
	if !reflect.DeepEqual(data, want) {
		t.Fatalf("data = % x, want % x", data, want)
	}
}

func TestEncode_BigEndian(t *testing.T) {
	data, _, err := Encode(testImage(), 32, binary.BigEndian)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := data[:4]; !reflect.DeepEqual(got, []byte{0xff, 0xff, 0x00, 0x00}) {
		t.Fatalf("first pixel = % x", got)
	}
}

func TestEncode_Depth16(t *testing.T) {
	data, stride, err := Encode(testImage(), 16, binary.LittleEndian)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// 3 pixels of 2 bytes, padded to 4-byte scanlines.
	if stride != 8 {
		t.Fatalf("stride = %d, want 8", stride)
	}
	tests := []struct {
		x, y int
		want uint16
	}{
		{0, 0, 0xf800},
		{1, 0, 0x07e0},
		{2, 0, 0x001f},
		{0, 1, 0x11aa},
	}
	for _, tt := range tests {
		got := binary.LittleEndian.Uint16(data[tt.y*stride+tt.x*2:])
		if got != tt.want {
			t.Fatalf("pixel (%d,%d) = %#04x, want %#04x", tt.x, tt.y, got, tt.want)
		}
	}
	if data[6] != 0 || data[7] != 0 {
		t.Fatalf("padding not zero: % x", data[6:8])
	}
}

func TestEncode_Depth30(t *testing.T) {
	data, _, err := Encode(testImage(), 30, binary.LittleEndian)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	tests := []struct {
		x    int
		want uint32
	}{
		{0, 0xc0000000 | 0x3ff<<20},
		{1, 0xc0000000 | 0x3ff<<10},
		{2, 0xc0000000 | 0x3ff},
	}
	for _, tt := range tests {
		if got := binary.LittleEndian.Uint32(data[tt.x*4:]); got != tt.want {
			t.Fatalf("pixel %d = %#08x, want %#08x", tt.x, got, tt.want)
		}
	}
}

func TestEncode_SubImage(t *testing.T) {
	sub := testImage().SubImage(image.Rect(0, 1, 1, 2)).(*image.RGBA)
	data, _, err := Encode(sub, 24, binary.LittleEndian)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := []byte{0x56, 0x34, 0x12, 0xff}; !reflect.DeepEqual(data, want) {
		t.Fatalf("data = % x, want % x", data, want)
	}
}

func TestRowsPerRequest(t *testing.T) {
	tests := []struct {
		name       string
		maxRequest uint32
		rowLen     int
		want       int
		wantErr    bool
	}{
		{"default server", 65535, 1920 * 4, 34, false},
		{"one row", 7, 4, 1, false},
		{"row too long", 16, 100, 0, true},
		{"header only", 6, 4, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RowsPerRequest(tt.maxRequest, tt.rowLen)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("rows = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAtomState(t *testing.T) {
	p := func(v xproto.Pixmap) *xproto.Pixmap { return &v }
	tests := []struct {
		name        string
		state       atomState
		replacement *xproto.Pixmap
		stale       []xproto.Pixmap
		reusable    xproto.Pixmap
	}{
		{
			name:  "no atoms",
			state: atomState{},
		},
		{
			name:        "matching atoms replaced",
			state:       atomState{esetroot: 5, hasEsetroot: true, xrootpmap: 5, hasXrootpmap: true},
			replacement: p(9),
			stale:       []xproto.Pixmap{5},
			reusable:    5,
		},
		{
			name:        "matching atoms reused",
			state:       atomState{esetroot: 5, hasEsetroot: true, xrootpmap: 5, hasXrootpmap: true},
			replacement: p(5),
			reusable:    5,
		},
		{
			name:     "inspect only",
			state:    atomState{esetroot: 5, hasEsetroot: true, xrootpmap: 5, hasXrootpmap: true},
			reusable: 5,
		},
		{
			name:  "mismatched atoms",
			state: atomState{esetroot: 5, hasEsetroot: true, xrootpmap: 7, hasXrootpmap: true},
			stale: []xproto.Pixmap{7},
		},
		{
			name:        "mismatched atoms replaced",
			state:       atomState{esetroot: 5, hasEsetroot: true, xrootpmap: 7, hasXrootpmap: true},
			replacement: p(9),
			stale:       []xproto.Pixmap{5, 7},
		},
		{
			name:  "only xrootpmap",
			state: atomState{xrootpmap: 7, hasXrootpmap: true},
			stale: []xproto.Pixmap{7},
		},
		{
			name:        "cleared",
			state:       atomState{esetroot: 5, hasEsetroot: true},
			replacement: p(0),
			stale:       []xproto.Pixmap{5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.stale(tt.replacement); !reflect.DeepEqual(got, tt.stale) {
				t.Fatalf("stale = %v, want %v", got, tt.stale)
			}
			if got := tt.state.reusable(); got != tt.reusable {
				t.Fatalf("reusable = %v, want %v", got, tt.reusable)
			}
		})
	}
}
