package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// both runs a check against the OS and the in-memory implementation.
func both(t *testing.T, check func(t *testing.T, fsys FileSystem, dir string)) {
	t.Run("os", func(t *testing.T) {
		check(t, OSFileSystem{}, t.TempDir())
	})
	t.Run("memory", func(t *testing.T) {
		mfs := NewMemoryFileSystem()
		require.NoError(t, mfs.MkdirAll("/cache", 0o755))
		check(t, mfs, "/cache")
	})
}

func TestWriteAndRead(t *testing.T) {
	both(t, func(t *testing.T, fsys FileSystem, dir string) {
		name := filepath.Join(dir, "movie.bin")
		require.NoError(t, fsys.WriteFile(name, []byte("first"), 0o644))
		require.NoError(t, fsys.WriteFile(name, []byte("second"), 0o644))

		data, err := fsys.ReadFile(name)
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))

		info, err := fsys.Stat(name)
		require.NoError(t, err)
		assert.Equal(t, int64(6), info.Size())
		assert.True(t, fsys.Exists(name))
	})
}

func TestCreate(t *testing.T) {
	both(t, func(t *testing.T, fsys FileSystem, dir string) {
		name := filepath.Join(dir, "report.html")
		w, err := fsys.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("<html>"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		data, err := fsys.ReadFile(name)
		require.NoError(t, err)
		assert.Equal(t, "<html>", string(data))
	})
}

func TestListAndRemove(t *testing.T) {
	both(t, func(t *testing.T, fsys FileSystem, dir string) {
		for _, n := range []string{"b.zst", "a.zst"} {
			require.NoError(t, fsys.WriteFile(filepath.Join(dir, n), []byte(n), 0o644))
		}
		names, err := fsys.List(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.zst", "b.zst"}, names)

		require.NoError(t, fsys.Remove(filepath.Join(dir, "a.zst")))
		assert.False(t, fsys.Exists(filepath.Join(dir, "a.zst")))

		err = fsys.Remove(filepath.Join(dir, "a.zst"))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})
}

func TestReadMissing(t *testing.T) {
	both(t, func(t *testing.T, fsys FileSystem, dir string) {
		_, err := fsys.ReadFile(filepath.Join(dir, "nope"))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
		_, err = fsys.Stat(filepath.Join(dir, "nope"))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})
}

func TestOSWriteFileLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	fsys := OSFileSystem{}
	require.NoError(t, fsys.WriteFile(filepath.Join(dir, "x"), []byte("x"), 0o600))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x", entries[0].Name())

	info, err := os.Stat(filepath.Join(dir, "x"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestMemoryFileSystemMkdirAll(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll("/a/b/c", 0o755))
	assert.True(t, mfs.Exists("/a"))
	assert.True(t, mfs.Exists("/a/b"))

	info, err := mfs.Stat("/a/b/c")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = mfs.List("/missing")
	assert.Error(t, err)
}

func TestMemoryFileSystemIsolatesData(t *testing.T) {
	mfs := NewMemoryFileSystem()
	buf := []byte("abc")
	require.NoError(t, mfs.WriteFile("/f", buf, 0o644))
	buf[0] = 'z'

	data, err := mfs.ReadFile("/f")
	require.NoError(t, err)
	data[1] = 'z'

	again, err := mfs.ReadFile("/f")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}
