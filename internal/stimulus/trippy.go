package stimulus

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/monet-trippy/internal/monitoring"
)

// Trippy is the smoothly drifting random phase stimulus. It is immutable
// after construction; the phase movie and the rendered movie are computed on
// first use and reused afterwards.
type Trippy struct {
	p Params

	phaseOnce sync.Once
	phase     *PhaseMovie
	phaseErr  error

	movieOnce sync.Once
	movie     *Movie
}

// NewTrippy validates p and fixes its packed phase movie, synthesizing it
// from p.Seed when p.PackedPhase is nil. A supplied packed movie is copied
// and the seed is dropped.
func NewTrippy(p Params) (*Trippy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.PackedPhase != nil {
		p.PackedPhase = mat.DenseCopyOf(p.PackedPhase)
		p.Seed = nil
	} else {
		seed := *p.Seed
		p.Seed = &seed
		p.PackedPhase = synthesizePackedPhase(p, seed)
	}
	return &Trippy{p: p}, nil
}

// Parameters returns a copy of the construction parameters. The packed phase
// is shared and must not be modified.
func (t *Trippy) Parameters() Params { return t.p }

// PackedPhase returns the packed phase movie. Callers must not modify it.
func (t *Trippy) PackedPhase() mat.Matrix { return t.p.PackedPhase }

// Seed returns the generator seed, or false if the packed movie was supplied.
func (t *Trippy) Seed() (uint32, bool) {
	if t.p.Seed == nil {
		return 0, false
	}
	return *t.p.Seed, true
}

// FPS is the display frame rate.
func (t *Trippy) FPS() float64 { return t.p.FrameRate }

// FrameCount is the number of displayed frames.
func (t *Trippy) FrameCount() int { return t.p.FrameCount() }

// Params summarizes the stimulus with the record field names.
func (t *Trippy) Params() map[string]any {
	out := map[string]any{
		"fps":                t.p.FrameRate,
		"tex_size":           [2]int{t.p.TextureWidth, t.p.TextureHeight},
		"nodes":              [2]int{t.p.NodesX, t.p.NodesY},
		"up_factor":          t.p.UpscaleFactor,
		"duration":           t.p.Duration,
		"temp_freq":          t.p.TemporalFrequency,
		"temp_kernel_length": t.p.TemporalKernelLength,
		"spatial_freq":       t.p.SpatialFrequency,
	}
	if seed, ok := t.Seed(); ok {
		out["rng_seed"] = seed
	} else {
		out["rng_seed"] = nil
	}
	return out
}

// PhaseMovie reconstructs the phase of every displayed pixel in radians.
func (t *Trippy) PhaseMovie() (*PhaseMovie, error) {
	t.phaseOnce.Do(func() {
		defer monitoring.Timed("trippy phase movie")()
		t.phase, t.phaseErr = reconstruct(t.p)
	})
	return t.phase, t.phaseErr
}

// Movie renders the phase movie as the gray levels shown on screen.
func (t *Trippy) Movie() (*Movie, error) {
	phase, err := t.PhaseMovie()
	if err != nil {
		return nil, err
	}
	t.movieOnce.Do(func() {
		t.movie = Render(phase, t.p.FrameRate)
	})
	return t.movie, nil
}

// reconstruct runs the temporal interpolation and the separable spatial
// upscale. Node n of the packed movie sits at row n%NodesY, column n/NodesY.
func reconstruct(p Params) (*PhaseMovie, error) {
	phase, err := interpTime(p.PackedPhase, p)
	if err != nil {
		return nil, err
	}
	frames, _ := phase.Dims()

	nx, ny, f := p.NodesX, p.NodesY, p.UpscaleFactor
	w, h := p.TextureWidth, p.TextureHeight
	along := newAxisUpscaler(nx, f)
	down := newAxisUpscaler(ny, f)

	out := newPhaseMovie(frames, h, w)
	nodeRow := make([]float64, nx)
	wide := make([]float64, ny*nx*f) // ny rows of upscaled width
	column := make([]float64, ny)
	tall := make([]float64, ny*f)
	for t := 0; t < frames; t++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				nodeRow[x] = phase.At(t, y+ny*x)
			}
			along.upscale(wide[y*nx*f:(y+1)*nx*f], nodeRow)
		}
		frame := out.Frame(t)
		for x := 0; x < w; x++ {
			for y := 0; y < ny; y++ {
				column[y] = wide[y*nx*f+x]
			}
			down.upscale(tall, column)
			for y := 0; y < h; y++ {
				frame[y*w+x] = 2 * math.Pi * tall[y]
			}
		}
	}
	return out, nil
}
