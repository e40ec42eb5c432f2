// Package imagecache shares decoded bitmaps between options that name the
// same file, including hard links and differently spelled paths.
package imagecache

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/xwallpaper/internal/bitmap"
	"github.com/1broseidon/xwallpaper/internal/decode"
)

// Key identifies a file by device and inode.
type Key struct {
	Dev uint64
	Ino uint64
}

// Entry is one opened image file. The file stays open until the first Load.
type Entry struct {
	Path string
	Key  Key

	mu      sync.Mutex
	file    *os.File
	bm      *bitmap.Bitmap
	decoder string
	err     error
	loaded  bool
}

// Cache maps file identities to entries. It is safe for concurrent use and
// is meant to live as long as the process so daemon re-renders never decode
// twice.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*Entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]*Entry)}
}

// Open opens path and returns the entry for its identity. When the same file
// was opened before, the new descriptor is closed and the existing entry is
// returned.
func (c *Cache) Open(path string) (*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	key := Key{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		f.Close()
		return e, nil
	}
	e := &Entry{Path: path, Key: key, file: f}
	c.entries[key] = e
	return e, nil
}

// Len reports the number of distinct files in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close releases descriptors of entries that were never loaded.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		e.mu.Lock()
		if e.file != nil {
			e.file.Close()
			e.file = nil
		}
		e.mu.Unlock()
	}
}

// Load decodes the file on first use and returns the cached bitmap on every
// later call. A decode failure is remembered as well.
func (e *Entry) Load(chain *decode.Chain) (*bitmap.Bitmap, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return e.bm, e.err
	}
	e.loaded = true

	if e.file == nil {
		e.err = fmt.Errorf("%s: file already closed", e.Path)
		return nil, e.err
	}
	bm, name, err := chain.Decode(e.file)
	e.file.Close()
	e.file = nil
	if err != nil {
		e.err = fmt.Errorf("failed to parse %s: %w", e.Path, err)
		return nil, e.err
	}
	if bm.Width > bitmap.MaxDimension || bm.Height > bitmap.MaxDimension {
		e.err = fmt.Errorf("%s has illegal dimensions: %w", e.Path, bitmap.ErrDimensions)
		return nil, e.err
	}
	e.bm = bm
	e.decoder = name
	return bm, nil
}

// Decoder names the decoder that produced the bitmap, or "" before Load.
func (e *Entry) Decoder() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decoder
}
