package stimulus

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Params are the inputs of a Trippy reconstruction. Either PackedPhase or
// Seed must be set; PackedPhase wins when both are present.
type Params struct {
	// Seed of the legacy Mersenne Twister stream used to synthesize
	// PackedPhase. Only the low 32 bits are significant.
	Seed *uint32
	// PackedPhase has one row per packed frame and NodesX*NodesY columns.
	PackedPhase *mat.Dense

	FrameRate            float64 // Hz, monitor refresh rate
	TextureWidth         int     // output width in pixels
	TextureHeight        int     // output height in pixels
	NodesX               int
	NodesY               int
	UpscaleFactor        int     // spatial upsampling ratio on both axes
	Duration             float64 // seconds
	TemporalFrequency    float64 // phase drift added per second
	TemporalKernelLength int     // odd, >= 3; length of the Hann lowpass
	SpatialFrequency     float64 // cy/point, only used for synthesis from Seed
}

// DefaultParams returns the parameters of a standard 15 s clip.
func DefaultParams() Params {
	return Params{
		FrameRate:            60,
		TextureWidth:         160,
		TextureHeight:        90,
		NodesX:               12,
		NodesY:               6,
		UpscaleFactor:        24,
		Duration:             15,
		TemporalFrequency:    4.0,
		TemporalKernelLength: 61,
		SpatialFrequency:     0.08,
	}
}

// Seeded returns a copy of p that synthesizes its packed phase from seed.
func (p Params) Seeded(seed uint32) Params {
	p.Seed = &seed
	p.PackedPhase = nil
	return p
}

// FrameCount is ceil(Duration*FrameRate), the number of displayed frames.
func (p Params) FrameCount() int {
	return int(math.Ceil(p.Duration * p.FrameRate))
}

// temporalUpsampling is the factor by which packed frames are stretched in time.
func (p Params) temporalUpsampling() int {
	return int(math.Ceil(float64(p.TemporalKernelLength) / 4))
}

// Validate checks the invariants that do not depend on the packed data.
func (p Params) Validate() error {
	if p.TemporalKernelLength < 3 || p.TemporalKernelLength%2 == 0 {
		return paramErr("temp_kernel_length", "must be odd and >= 3, got %d", p.TemporalKernelLength)
	}
	if !(p.FrameRate > 0) || math.IsInf(p.FrameRate, 0) {
		return paramErr("fps", "must be positive, got %v", p.FrameRate)
	}
	if !(p.Duration > 0) || math.IsInf(p.Duration, 0) {
		return paramErr("duration", "must be positive, got %v", p.Duration)
	}
	if p.UpscaleFactor < 1 {
		return paramErr("up_factor", "must be a positive integer, got %d", p.UpscaleFactor)
	}
	if p.NodesX < 1 || p.NodesY < 1 {
		return paramErr("nodes", "must be positive, got %dx%d", p.NodesX, p.NodesY)
	}
	if p.TextureWidth < 1 || p.TextureHeight < 1 {
		return paramErr("tex_size", "must be positive, got %dx%d", p.TextureWidth, p.TextureHeight)
	}
	if p.TextureWidth > p.NodesX*p.UpscaleFactor {
		return paramErr("tex_xdim", "%d exceeds upscaled node width %d", p.TextureWidth, p.NodesX*p.UpscaleFactor)
	}
	if p.TextureHeight > p.NodesY*p.UpscaleFactor {
		return paramErr("tex_ydim", "%d exceeds upscaled node height %d", p.TextureHeight, p.NodesY*p.UpscaleFactor)
	}
	if p.PackedPhase != nil {
		if _, c := p.PackedPhase.Dims(); c != p.NodesX*p.NodesY {
			return paramErr("packed_phase_movie", "has %d columns, want nodes %dx%d = %d",
				c, p.NodesX, p.NodesY, p.NodesX*p.NodesY)
		}
	} else if p.Seed == nil {
		return paramErr("rng_seed", "required when packed_phase_movie is absent")
	}
	return nil
}
