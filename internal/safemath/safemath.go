// Package safemath provides overflow-checked arithmetic for buffer sizing.
//
// Every allocation whose size depends on image or screen dimensions goes
// through Mul or Mul3. An overflow is reported as ErrLimit, which callers
// treat as fatal: dimensions large enough to overflow only come from corrupt
// or hostile input.
package safemath

import (
	"errors"
	"fmt"
	"math"
)

// ErrLimit reports that a size computation exceeded the platform limit.
var ErrLimit = errors.New("memory allocation would exceed system limits")

// MaxSize is the largest size a Go slice can be indexed with.
const MaxSize = math.MaxInt

// Mul returns a*b or ErrLimit if the product does not fit into an int.
// Negative operands are rejected as well.
func Mul(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("%w: negative operand %d*%d", ErrLimit, a, b)
	}
	if b != 0 && MaxSize/b < a {
		return 0, ErrLimit
	}
	return a * b, nil
}

// Mul3 returns a*b*c, evaluated as (a*c)*b.
func Mul3(a, b, c int) (int, error) {
	n, err := Mul(a, c)
	if err != nil {
		return 0, err
	}
	return Mul(n, b)
}

// Uint32s allocates a zeroed []uint32 of width*height elements after
// verifying that width*height*4 bytes can be addressed.
func Uint32s(width, height int) ([]uint32, error) {
	if _, err := Mul3(width, height, 4); err != nil {
		return nil, err
	}
	return make([]uint32, width*height), nil
}

// Bytes allocates a zeroed byte slice of rows*stride bytes.
func Bytes(rows, stride int) ([]byte, error) {
	n, err := Mul(rows, stride)
	if err != nil {
		return nil, err
	}
	return make([]byte, n), nil
}
