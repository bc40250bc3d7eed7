package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/monet-trippy/internal/fsutil"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(fsutil.NewMemoryFileSystem(), "/cache")
	require.NoError(t, err)
	return c
}

func TestKeyHashIgnoresOrder(t *testing.T) {
	a := KeyHash(map[string]any{"seed": 1, "fps": 60.0})
	b := KeyHash(map[string]any{"fps": 60.0, "seed": 1})
	assert.Equal(t, a, b)
	assert.Len(t, a, 40)
	assert.NotEqual(t, a, KeyHash(map[string]any{"fps": 60.0, "seed": 2}))
}

func TestStoreLoad(t *testing.T) {
	c := newTestCache(t)
	key := map[string]any{"condition_hash": "abc"}

	_, err := c.Load(key)
	assert.ErrorIs(t, err, ErrMiss)

	m := mat.NewDense(2, 3, []float64{1, -2.5, 3, 1e-300, 0, 42})
	require.NoError(t, c.Store(key, m))

	got, err := c.Load(key)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, got))
}

func TestGetOrCompute(t *testing.T) {
	c := newTestCache(t)
	key := map[string]any{"seed": 7}
	calls := 0
	compute := func() (*mat.Dense, error) {
		calls++
		return mat.NewDense(1, 2, []float64{7, 8}), nil
	}

	for i := 0; i < 3; i++ {
		m, err := c.GetOrCompute(key, compute)
		require.NoError(t, err)
		assert.Equal(t, 8.0, m.At(0, 1))
	}
	assert.Equal(t, 1, calls)
}

func TestGetOrComputeError(t *testing.T) {
	c := newTestCache(t)
	boom := errors.New("boom")
	_, err := c.GetOrCompute(map[string]any{"k": 1}, func() (*mat.Dense, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.FS.Exists(c.Path(map[string]any{"k": 1})))
}

func TestCorruptEntryIsRecomputed(t *testing.T) {
	c := newTestCache(t)
	key := map[string]any{"k": "corrupt"}
	require.NoError(t, c.FS.WriteFile(c.Path(key), []byte("not zstd"), 0o644))

	_, err := c.Load(key)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)

	m, err := c.GetOrCompute(key, func() (*mat.Dense, error) {
		return mat.NewDense(1, 1, []float64{3}), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.At(0, 0))

	got, err := c.Load(key)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.At(0, 0))
}

func TestDecodeRejectsTruncated(t *testing.T) {
	buf := encode(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	_, err := decode(buf[:len(buf)-1])
	assert.Error(t, err)
	_, err = decode([]byte("XXXX"))
	assert.Error(t, err)
}

func TestPurge(t *testing.T) {
	c := newTestCache(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Store(map[string]any{"i": i}, mat.NewDense(4, 4, nil)))
	}
	require.NoError(t, c.FS.WriteFile("/cache/notes.txt", []byte("keep"), 0o644))

	freed, err := c.Purge()
	require.NoError(t, err)
	assert.Greater(t, freed, uint64(0))

	names, err := c.FS.List("/cache")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt"}, names)
}
