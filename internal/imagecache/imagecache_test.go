package imagecache

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
	"github.com/1broseidon/xwallpaper/internal/decode"
)

type countingDecoder struct {
	calls int
}

func (d *countingDecoder) Name() string { return "counting" }

func (d *countingDecoder) Decode(r io.Reader) (*bitmap.Bitmap, error) {
	d.calls++
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return bitmap.New(2, 2)
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("image"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestOpenSharesHardLinks(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "a.img")
	link := filepath.Join(dir, "b.img")
	writeFile(t, original)
	if err := os.Link(original, link); err != nil {
		t.Skipf("hard links unsupported: %v", err)
	}

	cache := New()
	defer cache.Close()
	first, err := cache.Open(original)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, err := cache.Open(link)
	if err != nil {
		t.Fatalf("open link: %v", err)
	}
	if first != second {
		t.Fatalf("expected hard link to share the entry")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}

	dec := &countingDecoder{}
	chain := decode.NewChain(nil, dec)
	bm1, err := first.Load(chain)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	bm2, err := second.Load(chain)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if bm1 != bm2 {
		t.Fatalf("expected the same bitmap for both loads")
	}
	if dec.calls != 1 {
		t.Fatalf("expected one decode, got %d", dec.calls)
	}
	if first.Decoder() != "counting" {
		t.Fatalf("expected decoder name to be recorded, got %q", first.Decoder())
	}
}

func TestOpenDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.img")
	b := filepath.Join(dir, "b.img")
	writeFile(t, a)
	writeFile(t, b)

	cache := New()
	defer cache.Close()
	ea, err := cache.Open(a)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	eb, err := cache.Open(b)
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	if ea == eb || cache.Len() != 2 {
		t.Fatalf("expected two entries")
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := New().Open(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadRemembersFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk")
	writeFile(t, path)

	cache := New()
	e, err := cache.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	chain := decode.DefaultChain(nil, nil)
	if _, err := e.Load(chain); !errors.Is(err, decode.ErrNoDecoder) {
		t.Fatalf("expected ErrNoDecoder, got %v", err)
	}
	if _, err := e.Load(chain); !errors.Is(err, decode.ErrNoDecoder) {
		t.Fatalf("expected remembered ErrNoDecoder, got %v", err)
	}
}
