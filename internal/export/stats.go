package export

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// Columns of the matrix returned by FrameStats.
const (
	StatMean = iota
	StatStd
)

// FrameStats returns a (frames x 2) matrix holding the mean and standard
// deviation of each frame's gray levels, or nil for an empty movie.
func FrameStats(m *stimulus.Movie) *mat.Dense {
	if m.Frames == 0 || m.Width*m.Height == 0 {
		return nil
	}
	out := mat.NewDense(m.Frames, 2, nil)
	vals := make([]float64, m.Width*m.Height)
	for t := 0; t < m.Frames; t++ {
		for i, v := range m.Frame(t).Pix {
			vals[i] = float64(v)
		}
		mean, std := stat.MeanStdDev(vals, nil)
		out.Set(t, StatMean, mean)
		out.Set(t, StatStd, std)
	}
	return out
}

// StatsCacheKey identifies the luminance summary of a visual in the array
// cache. Trippy conditions without a seed are told apart by a digest of
// their packed phase movie.
func StatsCacheKey(v stimulus.Visual) map[string]any {
	key := map[string]any{"kind": "frame_stats"}
	for k, val := range v.Params() {
		key[k] = val
	}
	if tr, ok := v.(*stimulus.Trippy); ok {
		if _, seeded := tr.Seed(); !seeded {
			key["packed_sha1"] = packedDigest(tr.PackedPhase())
		}
	}
	return key
}

func packedDigest(m mat.Matrix) string {
	h := sha1.New()
	r, c := m.Dims()
	var buf [8]byte
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(m.At(i, j)))
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
