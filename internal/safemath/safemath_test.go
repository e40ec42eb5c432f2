package safemath

import (
	"errors"
	"math"
	"testing"
)

func TestMul(t *testing.T) {
	tests := []struct {
		name    string
		a, b    int
		want    int
		wantErr bool
	}{
		{"zero left", 0, math.MaxInt, 0, false},
		{"zero right", math.MaxInt, 0, 0, false},
		{"small", 1920, 1080, 2073600, false},
		{"max times one", math.MaxInt, 1, math.MaxInt, false},
		{"exact limit", math.MaxInt / 2, 2, math.MaxInt - 1, false},
		{"just over", math.MaxInt/2 + 1, 2, 0, true},
		{"huge", math.MaxInt, math.MaxInt, 0, true},
		{"negative", -1, 4, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Mul(tt.a, tt.b)
			if tt.wantErr {
				if !errors.Is(err, ErrLimit) {
					t.Fatalf("Mul(%d, %d) error = %v, want ErrLimit", tt.a, tt.b, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Mul(%d, %d) unexpected error: %v", tt.a, tt.b, err)
			}
			if got != tt.want {
				t.Errorf("Mul(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMul_MatchesProductWhenItFits(t *testing.T) {
	values := []int{0, 1, 2, 3, 255, 65535, 65536, 1 << 20, math.MaxInt32 - 1, math.MaxInt32, math.MaxInt / 3, math.MaxInt}
	for _, a := range values {
		for _, b := range values {
			got, err := Mul(a, b)
			fits := b == 0 || a <= math.MaxInt/b
			if fits {
				if err != nil || got != a*b {
					t.Errorf("Mul(%d, %d) = %d, %v; want %d", a, b, got, err, a*b)
				}
			} else if err == nil {
				t.Errorf("Mul(%d, %d) = %d, want overflow", a, b, got)
			}
		}
	}
}

func TestMul3(t *testing.T) {
	got, err := Mul3(65535, 65535, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 65535*65535*4 {
		t.Fatalf("Mul3 = %d, want %d", got, 65535*65535*4)
	}

	if _, err := Mul3(math.MaxInt/2, 3, 1); !errors.Is(err, ErrLimit) {
		t.Fatalf("expected ErrLimit, got %v", err)
	}
	if _, err := Mul3(2, 1, math.MaxInt/2+1); !errors.Is(err, ErrLimit) {
		t.Fatalf("expected ErrLimit for overflow in first step, got %v", err)
	}
}

func TestBytes(t *testing.T) {
	buf, err := Bytes(3, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buf) != 24 {
		t.Fatalf("len = %d, want 24", len(buf))
	}
	if _, err := Bytes(math.MaxInt, 2); !errors.Is(err, ErrLimit) {
		t.Fatalf("expected ErrLimit, got %v", err)
	}
}
