package stimulus

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// axisUpscaler upscales 1-D signals of a fixed node count by factor. The
// kernel spectrum depends only on the lengths, so one upscaler serves every
// row (or column) of every frame.
//
// FROZEN: the output of upscale is compared pixel for pixel against archived
// reference movies. Do not change the kernel, the phase offset or the
// frequency-domain product, not even for speed.
type axisUpscaler struct {
	factor int
	fft    *fourier.CmplxFFT
	kernel []complex128 // spectrum of the zero-phase Gaussian
	buf    []complex128
}

func newAxisUpscaler(nodes, factor int) *axisUpscaler {
	length := nodes * factor
	k := gaussianKernel(length, factor)

	fft := fourier.NewCmplxFFT(length)
	shifted := make([]complex128, length)
	for i := range shifted {
		shifted[i] = complex(k[fft.UnshiftIdx(i)], 0)
	}
	return &axisUpscaler{
		factor: factor,
		fft:    fft,
		kernel: fft.Coefficients(nil, shifted),
		buf:    make([]complex128, length),
	}
}

// gaussianKernel is a centred Gaussian of the given length with
// sigma = (L-1)/(2*sqrt(0.5)*L/factor), scaled to sum to factor.
func gaussianKernel(length, factor int) []float64 {
	k := make([]float64, length)
	for i := range k {
		k[i] = 1
	}
	if length > 1 {
		l := float64(length)
		sigma := (l - 1) / (2 * math.Sqrt(0.5) * l / float64(factor))
		// window.Gaussian measures sigma in units of the half length.
		k = window.Gaussian{Sigma: sigma / ((l - 1) / 2)}.Transform(k)
	}
	floats.Scale(float64(factor)/floats.Sum(k), k)
	return k
}

// upscale zero-stuffs x with a half-factor phase offset, filters it with the
// Gaussian in the frequency domain and writes the real part into dst, which
// must have length len(x)*factor.
func (u *axisUpscaler) upscale(dst, x []float64) {
	stuffed := upsample(x, u.factor, u.factor/2)
	for i, v := range stuffed {
		u.buf[i] = complex(v, 0)
	}
	spec := u.fft.Coefficients(u.buf, u.buf)
	for i := range spec {
		spec[i] *= u.kernel[i]
	}
	seq := u.fft.Sequence(u.buf, spec)
	n := float64(len(seq))
	for i, v := range seq {
		dst[i] = real(v) / n
	}
}
