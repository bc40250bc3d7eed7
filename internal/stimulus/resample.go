package stimulus

import (
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// upsample stretches x by factor, leaving factor-1 zeros between samples and
// delaying the result by phase samples, so out[phase+i*factor] = x[i] and
// len(out) = len(x)*factor.
//
// It is computed as a polyphase FIR resampler (up=factor, down=1) whose taps
// are the legacy window [0]*2*phase + [1/factor] scaled by factor. Keeping the
// filter form rather than writing the samples directly reproduces the legacy
// arithmetic exactly, including the product (1/factor)*factor.
func upsample(x []float64, factor, phase int) []float64 {
	taps := make([]float64, 2*phase+2) // one leading zero centres the output
	taps[len(taps)-1] = 1 / float64(factor)
	floats.Scale(float64(factor), taps)

	skip := phase + 1
	out := make([]float64, len(x)*factor)
	for m := range out {
		k := m + skip
		var acc float64
		for j := k % factor; j < len(taps); j += factor {
			i := k - j
			if i < 0 {
				break
			}
			if src := i / factor; src < len(x) {
				acc += taps[j] * x[src]
			}
		}
		out[m] = acc
	}
	return out
}

// temporalKernel is a Hann window of length n+2 with its zero end points
// dropped, normalized to sum to gain.
func temporalKernel(n int, gain float64) []float64 {
	w := make([]float64, n+2)
	for i := range w {
		w[i] = 1
	}
	w = window.Hann(w)[1 : n+1]
	floats.Scale(gain/floats.Sum(w), w)
	return w
}

// interpTime upsamples the packed phase movie along time, low-pass filters it
// with the Hann kernel using valid convolution and adds the linear phase
// drift. The result has one row per displayed frame.
func interpTime(packed *mat.Dense, p Params) (*mat.Dense, error) {
	k2 := p.temporalUpsampling()
	rows, cols := packed.Dims()
	kernel := temporalKernel(p.TemporalKernelLength, float64(k2))

	nup := rows * k2
	nframes := nup - len(kernel) + 1
	if want := p.FrameCount(); nframes != want {
		return nil, &ConsistencyError{Expected: want, Got: nframes}
	}

	out := mat.NewDense(nframes, cols, nil)
	col := make([]float64, rows)
	for c := 0; c < cols; c++ {
		mat.Col(col, c, packed)
		up := upsample(col, k2, 0)
		for t := 0; t < nframes; t++ {
			var acc float64
			for k, w := range kernel {
				acc += up[t+len(kernel)-1-k] * w
			}
			drift := float64(t+1) / p.FrameRate * p.TemporalFrequency
			out.Set(t, c, acc+drift)
		}
	}
	return out, nil
}
