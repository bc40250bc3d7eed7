package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/monet-trippy/internal/cache"
	"github.com/banshee-data/monet-trippy/internal/fsutil"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
	"github.com/banshee-data/monet-trippy/internal/testutil"
)

// ramp returns a movie whose frame t is filled with gray level 10*t, except
// for pixel (0, 0) which is 10*t+4.
func ramp(frames int) *stimulus.Movie {
	m := stimulus.NewMovie(frames, 4, 5, 30)
	for t := 0; t < frames; t++ {
		f := m.Frame(t)
		for i := range f.Pix {
			f.Pix[i] = uint8(10 * t)
		}
		f.Pix[0] += 4
	}
	return m
}

func TestFrameStats(t *testing.T) {
	stats := FrameStats(ramp(3))
	r, c := stats.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 2, c)
	for f := 0; f < 3; f++ {
		assert.InDelta(t, float64(10*f)+0.2, stats.At(f, StatMean), 1e-12)
		// One pixel at +3.8 and nineteen at -0.2 around the mean, n-1 weighting.
		assert.InDelta(t, 0.894427190999916, stats.At(f, StatStd), 1e-12)
	}

	assert.Nil(t, FrameStats(stimulus.NewMovie(0, 4, 5, 30)))
}

func TestFrameStatsCached(t *testing.T) {
	c, err := cache.New(fsutil.NewMemoryFileSystem(), "cache")
	require.NoError(t, err)

	tr, err := stimulus.NewTrippy(testutil.SmallParams().Seeded(4))
	require.NoError(t, err)

	calls := 0
	compute := func() (*mat.Dense, error) {
		calls++
		m, err := tr.Movie()
		if err != nil {
			return nil, err
		}
		return FrameStats(m), nil
	}
	a, err := c.GetOrCompute(StatsCacheKey(tr), compute)
	require.NoError(t, err)
	b, err := c.GetOrCompute(StatsCacheKey(tr), compute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, mat.Equal(a, b))
	assert.Equal(t, "frame_stats", StatsCacheKey(tr)["kind"])
}

func TestWriteAVI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Trippy.avi")
	require.NoError(t, WriteAVI(path, ramp(5), DefaultQuality))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "AVI ", string(data[8:12]))
	// Every frame is stored as a JPEG starting with an SOI marker.
	assert.Equal(t, 5, bytes.Count(data, []byte{0xFF, 0xD8, 0xFF}))
}

func TestWriteAVIRejects(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		movie   *stimulus.Movie
		quality int
	}{
		{"empty", stimulus.NewMovie(0, 4, 5, 30), DefaultQuality},
		{"quality zero", ramp(1), 0},
		{"quality too high", ramp(1), 101},
		{"fps too low", stimulus.NewMovie(1, 4, 5, 0.2), DefaultQuality},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".avi")
			assert.Error(t, WriteAVI(path, tt.movie, tt.quality))
			_, err := os.Stat(path)
			assert.True(t, os.IsNotExist(err), "no file should be created")
		})
	}
}

func TestDefaultFilename(t *testing.T) {
	tr := &stimulus.Trippy{}
	assert.Equal(t, "Trippy.avi", DefaultFilename(tr, ""))
	assert.Equal(t, "Trippy_seed7.avi", DefaultFilename(tr, "_seed7"))
	assert.Equal(t, "Monet2.avi", DefaultFilename(&stimulus.Monet2{}, ""))
	assert.Equal(t, "Visual_x.avi", DefaultFilename(nil, "_x"))
}

func TestPlotFrameMeans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "means.png")
	require.NoError(t, PlotFrameMeans(path, "ramp", FrameStats(ramp(4)), 30))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])

	assert.Error(t, PlotFrameMeans(path, "ramp", FrameStats(ramp(4)), 0))
}

func TestWriteLuminanceHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLuminanceHTML(&buf, "Trippy seed 4", FrameStats(ramp(3)), 30))

	html := buf.String()
	assert.True(t, strings.Contains(html, "Trippy seed 4"))
	assert.Contains(t, html, "0.033")
}
