// Package cache keeps derived float64 matrices on disk, keyed by the
// parameters they were computed from.
package cache

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/monet-trippy/internal/fsutil"
	"github.com/banshee-data/monet-trippy/internal/monitoring"
)

// ErrMiss is returned by Load when no entry exists for a key.
var ErrMiss = errors.New("cache: miss")

const (
	magic     = "TRPC"
	headerLen = 12
	extension = ".zst"
)

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// Cache stores matrices as zstd-compressed files under Dir.
type Cache struct {
	FS  fsutil.FileSystem
	Dir string
}

// New returns a cache rooted at dir, creating it if needed.
func New(fsys fsutil.FileSystem, dir string) (*Cache, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Cache{FS: fsys, Dir: dir}, nil
}

// KeyHash is the hex sha1 of the key's k=v pairs in sorted key order.
func KeyHash(key map[string]any) string {
	names := make([]string, 0, len(key))
	for k := range key {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, k := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		fmt.Fprintf(&b, "%s=%v", k, key[k])
	}
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Path is the file that holds the entry for key.
func (c *Cache) Path(key map[string]any) string {
	return filepath.Join(c.Dir, KeyHash(key)+extension)
}

// Load returns the matrix stored for key, or ErrMiss.
func (c *Cache) Load(key map[string]any) (*mat.Dense, error) {
	path := c.Path(key)
	raw, err := c.FS.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	data, err := decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	return decode(data)
}

// Store writes m under key, replacing any existing entry.
func (c *Cache) Store(key map[string]any, m *mat.Dense) error {
	raw := encoder.EncodeAll(encode(m), nil)
	path := c.Path(key)
	if err := c.FS.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	monitoring.Logf("[cache] stored %s (%s)", filepath.Base(path), humanize.Bytes(uint64(len(raw))))
	return nil
}

// GetOrCompute loads the entry for key, calling compute and storing its
// result on a miss. A corrupt entry is recomputed.
func (c *Cache) GetOrCompute(key map[string]any, compute func() (*mat.Dense, error)) (*mat.Dense, error) {
	m, err := c.Load(key)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ErrMiss) {
		monitoring.Logf("[cache] discarding entry: %v", err)
	}
	m, err = compute()
	if err != nil {
		return nil, err
	}
	if err := c.Store(key, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Purge removes every entry and reports how many bytes were freed.
func (c *Cache) Purge() (uint64, error) {
	names, err := c.FS.List(c.Dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list cache dir: %w", err)
	}
	var freed uint64
	for _, n := range names {
		if filepath.Ext(n) != extension {
			continue
		}
		path := filepath.Join(c.Dir, n)
		if info, err := c.FS.Stat(path); err == nil {
			freed += uint64(info.Size())
		}
		if err := c.FS.Remove(path); err != nil {
			return freed, fmt.Errorf("failed to remove %s: %w", n, err)
		}
	}
	monitoring.Logf("[cache] purged %s from %s", humanize.Bytes(freed), c.Dir)
	return freed, nil
}

func encode(m *mat.Dense) []byte {
	rows, cols := m.Dims()
	buf := make([]byte, headerLen+8*rows*cols)
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(rows))
	binary.LittleEndian.PutUint32(buf[8:], uint32(cols))
	off := headerLen
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(m.At(i, j)))
			off += 8
		}
	}
	return buf
}

func decode(buf []byte) (*mat.Dense, error) {
	if len(buf) < headerLen || !bytes.Equal(buf[:4], []byte(magic)) {
		return nil, fmt.Errorf("cache: bad header")
	}
	rows := int(binary.LittleEndian.Uint32(buf[4:]))
	cols := int(binary.LittleEndian.Uint32(buf[8:]))
	if rows == 0 || cols == 0 || len(buf)-headerLen != 8*rows*cols {
		return nil, fmt.Errorf("cache: %dx%d entry with %d data bytes", rows, cols, len(buf)-headerLen)
	}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[headerLen+8*i:]))
	}
	return mat.NewDense(rows, cols, data), nil
}
