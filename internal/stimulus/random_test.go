package stimulus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegacyUniformSeedZero(t *testing.T) {
	u := newLegacyUniform(0)
	want := []float64{0.5488135039273248, 0.7151893663724195, 0.6027633760716439}
	for i, w := range want {
		assert.Equal(t, w, u.Float64(), "draw %d", i)
	}
}

func TestPackedRows(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Params)
		want   int
	}{
		{"defaults", func(p *Params) {}, 60},
		{"short kernel", func(p *Params) { p.TemporalKernelLength = 5 }, 452},
		{"ten seconds", func(p *Params) { p.Duration = 10 }, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			assert.Equal(t, tt.want, packedRows(p))
		})
	}
}

func TestSynthesizePackedPhase(t *testing.T) {
	p := DefaultParams()
	m := synthesizePackedPhase(p, 0)
	rows, cols := m.Dims()
	assert.Equal(t, 60, rows)
	assert.Equal(t, 72, cols)

	scale := phaseCompensator * float64(p.UpscaleFactor) * p.SpatialFrequency
	assert.Equal(t, scale*0.5488135039273248, m.At(0, 0))
	assert.Equal(t, scale*0.7151893663724195, m.At(0, 1))
	assert.InDelta(t, 8.429775420323708, m.At(0, 0), 1e-12)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if v < 0 || v >= scale {
				t.Fatalf("packed (%d, %d) = %v outside [0, %v)", i, j, v, scale)
			}
		}
	}

	other := synthesizePackedPhase(p, 1)
	assert.NotEqual(t, m.At(0, 0), other.At(0, 0))
}
