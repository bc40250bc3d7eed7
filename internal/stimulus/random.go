package stimulus

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext/prng"
)

// phaseCompensator widens the random phase range so the upscaled field
// reaches roughly SpatialFrequency cycles per point.
const phaseCompensator = 8.0

// legacyUniform draws doubles in [0, 1) from MT19937 the way the legacy
// stimulus generator did: 27 high bits of one word and 26 of the next form a
// 53-bit mantissa.
type legacyUniform struct {
	src *prng.MT19937
}

func newLegacyUniform(seed uint32) *legacyUniform {
	src := prng.NewMT19937()
	src.Seed(uint64(seed))
	return &legacyUniform{src: src}
}

func (u *legacyUniform) Float64() float64 {
	a := u.src.Uint32() >> 5
	b := u.src.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) / 9007199254740992.0
}

// packedRows is the number of packed frames needed so that, after
// upsampling and valid filtering, exactly FrameCount frames remain. The
// legacy generator evaluated the frame rate in single precision here.
func packedRows(p Params) int {
	nframes := math.Ceil(p.Duration * float64(float32(p.FrameRate)))
	k2 := math.Ceil(float64(p.TemporalKernelLength) / 4)
	return int(math.Ceil((nframes + float64(p.TemporalKernelLength) - 1) / k2))
}

// synthesizePackedPhase fills a packedRows x NodesX*NodesY matrix in row
// order with scale*uniform draws from a generator seeded with seed.
func synthesizePackedPhase(p Params, seed uint32) *mat.Dense {
	rows, cols := packedRows(p), p.NodesX*p.NodesY
	scale := phaseCompensator * float64(p.UpscaleFactor) * p.SpatialFrequency
	rng := newLegacyUniform(seed)
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = scale * rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}
