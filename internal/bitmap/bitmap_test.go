package bitmap

import (
	"errors"
	"image/color"
	"testing"
)

func TestNew_RejectsIllegalDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 1},
		{"zero height", 1, 0},
		{"negative", -5, 5},
		{"too wide", MaxDimension + 1, 1},
		{"too tall", 1, MaxDimension + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.width, tt.height); !errors.Is(err, ErrDimensions) {
				t.Fatalf("New(%d, %d) error = %v, want ErrDimensions", tt.width, tt.height, err)
			}
		})
	}
}

func TestNew_Layout(t *testing.T) {
	b, err := New(3, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Stride != 12 {
		t.Fatalf("stride = %d, want 12", b.Stride)
	}
	if len(b.Pix) != b.Stride/4*b.Height {
		t.Fatalf("len(Pix) = %d, want %d", len(b.Pix), b.Stride/4*b.Height)
	}
	for i, p := range b.Pix {
		if p != 0 {
			t.Fatalf("pixel %d = %#x, want zero", i, p)
		}
	}
}

func TestSetAndAt(t *testing.T) {
	b, err := New(2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.Set(1, 0, ARGB(0x80, 0x11, 0x22, 0x33))

	if got := b.Pixel(1, 0); got != 0x80112233 {
		t.Fatalf("Pixel = %#x, want 0x80112233", got)
	}
	want := color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80}
	if got := b.At(1, 0); got != want {
		t.Fatalf("At = %v, want %v", got, want)
	}
	if got := b.At(5, 5); got != (color.NRGBA{}) {
		t.Fatalf("At out of bounds = %v, want zero", got)
	}
}

func TestOpaque_ForcesAlphaAndKeepsColour(t *testing.T) {
	b, err := New(2, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.Set(0, 0, ARGB(0x00, 0xaa, 0xbb, 0xcc))
	b.Set(1, 0, ARGB(0xff, 0x01, 0x02, 0x03))

	img, err := b.Opaque()
	if err != nil {
		t.Fatalf("Opaque: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0xaa, 0xbb, 0xcc, 0xff}) {
		t.Errorf("pixel 0 = %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{0x01, 0x02, 0x03, 0xff}) {
		t.Errorf("pixel 1 = %v", got)
	}

	again, _ := b.Opaque()
	if again != img {
		t.Errorf("expected memoized image")
	}
	b.Set(0, 0, 0)
	fresh, _ := b.Opaque()
	if fresh == img {
		t.Errorf("expected Set to invalidate memoized image")
	}
}
