package stimulus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestGaussianKernel(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ length, factor int }{
		{288, 24},
		{144, 24},
		{48, 8},
		{1, 1},
	} {
		k := gaussianKernel(tc.length, tc.factor)
		require.Len(t, k, tc.length)
		assert.InDelta(t, float64(tc.factor), floats.Sum(k), 1e-9)
		for i := range k {
			assert.InDelta(t, k[i], k[len(k)-1-i], 1e-12)
		}
	}
}

func TestGaussianKernelWidth(t *testing.T) {
	// sigma = (L-1)/(2*sqrt(0.5)*nodes) samples; one sigma from the centre
	// the kernel falls to exp(-0.5) of its peak.
	k := gaussianKernel(288, 24)
	sigma := 287 / (2 * math.Sqrt(0.5) * 12)
	centre := 143.5
	peak := math.Exp(-0.5 * math.Pow((143-centre)/sigma, 2))
	at := math.Exp(-0.5 * math.Pow((110-centre)/sigma, 2))
	assert.InDelta(t, at/peak, k[110]/k[143], 1e-12)
}

func TestAxisUpscalerConstant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		nodes, factor int
	}{
		{"default width", 12, 24},
		{"default height", 6, 24},
		{"small", 6, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u := newAxisUpscaler(tt.nodes, tt.factor)
			x := make([]float64, tt.nodes)
			for i := range x {
				x[i] = 2.5
			}
			dst := make([]float64, tt.nodes*tt.factor)
			u.upscale(dst, x)
			for i, v := range dst {
				assert.InDelta(t, 2.5, v, 2.5e-3, "sample %d", i)
			}
		})
	}
}

func TestAxisUpscalerReusable(t *testing.T) {
	u := newAxisUpscaler(6, 24)
	a := []float64{0.1, 1.7, -0.3, 2.2, 0.9, 1.1}
	b := []float64{5, 4, 3, 2, 1, 0}

	first := make([]float64, 144)
	u.upscale(first, a)
	other := make([]float64, 144)
	u.upscale(other, b)
	again := make([]float64, 144)
	u.upscale(again, a)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, other)
}

func TestAxisUpscalerFollowsNodes(t *testing.T) {
	// Node i is centred at sample i*factor + factor/2, less half a sample
	// for the even-length kernel.
	u := newAxisUpscaler(12, 24)
	x := make([]float64, 12)
	x[5] = 1
	dst := make([]float64, 288)
	u.upscale(dst, x)
	assert.Contains(t, []int{5*24 + 11, 5*24 + 12}, floats.MaxIdx(dst))
}
