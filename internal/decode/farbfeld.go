package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
	"github.com/1broseidon/xwallpaper/internal/safemath"
)

const farbfeldMagic = "farbfeld"

// Farbfeld decodes the suckless farbfeld format: an 8 byte magic, big endian
// 32-bit width and height, then 16-bit RGBA samples row by row.
type Farbfeld struct{}

func (Farbfeld) Name() string { return "farbfeld" }

func (Farbfeld) Decode(r io.Reader) (*bitmap.Bitmap, error) {
	var header [16]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, formatErr("farbfeld", err)
	}
	if string(header[:8]) != farbfeldMagic {
		return nil, formatErrf("farbfeld", "invalid magic")
	}

	width := binary.BigEndian.Uint32(header[8:12])
	height := binary.BigEndian.Uint32(header[12:16])
	if width > bitmap.MaxDimension || height > bitmap.MaxDimension {
		return nil, formatErrf("farbfeld", "dimensions %dx%d too large", width, height)
	}
	if err := checkDimensions("farbfeld", int(width), int(height)); err != nil {
		return nil, err
	}

	rowLen, err := safemath.Mul(int(width), 8)
	if err != nil {
		return nil, err
	}
	if err := checkRemaining(r, rowLen, int(height)); err != nil {
		return nil, err
	}
	bm, err := bitmap.New(int(width), int(height))
	if err != nil {
		return nil, err
	}

	row := make([]byte, rowLen)
	for y := 0; y < bm.Height; y++ {
		if _, err := io.ReadFull(r, row); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, formatErrf("farbfeld", "truncated at row %d", y)
			}
			return nil, fmt.Errorf("farbfeld: read: %w", err)
		}
		pixels := bm.Row(y)
		for x := range pixels {
			p := row[x*8:]
			pixels[x] = bitmap.ARGB(p[6], p[0], p[2], p[4])
		}
	}
	return bm, nil
}

// checkRemaining rejects a header whose pixel data cannot fit in what is
// left of a seekable stream, before the bitmap is allocated.
func checkRemaining(r io.Reader, rowLen, rows int) error {
	s, ok := r.(io.Seeker)
	if !ok {
		return nil
	}
	need, err := safemath.Mul(rowLen, rows)
	if err != nil {
		return err
	}
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("farbfeld: seek: %w", err)
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return fmt.Errorf("farbfeld: seek: %w", err)
	}
	if end-cur < int64(need) {
		return formatErrf("farbfeld", "truncated: %d bytes of pixel data, need %d", end-cur, need)
	}
	return nil
}
