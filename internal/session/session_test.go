package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/monet-trippy/internal/db"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// fixedVisual is a stimulus with a known frame count.
type fixedVisual struct{ frames int }

func (f fixedVisual) Params() map[string]any          { return nil }
func (f fixedVisual) FrameCount() int                 { return f.frames }
func (f fixedVisual) FPS() float64                    { return 60 }
func (f fixedVisual) Movie() (*stimulus.Movie, error) { return nil, nil }

func TestNew(t *testing.T) {
	_, err := New(mat.NewDense(2, 3, nil), mat.NewDense(2, 3, nil))
	assert.NoError(t, err)
	_, err = New(mat.NewDense(2, 3, nil), mat.NewDense(3, 2, nil))
	assert.Error(t, err)
}

func TestAddTrial(t *testing.T) {
	s, err := New(mat.NewDense(1, 1, nil), mat.NewDense(1, 1, nil))
	require.NoError(t, err)

	require.NoError(t, s.AddTrial(fixedVisual{3}, []float64{0, 1, 2}))
	err = s.AddTrial(fixedVisual{3}, []float64{0, 1})
	assert.True(t, errors.Is(err, ErrFrameMismatch))
	assert.Len(t, s.Trials, 1)
}

func TestAddArchivedTrials(t *testing.T) {
	s, err := New(mat.NewDense(1, 1, nil), mat.NewDense(1, 1, nil))
	require.NoError(t, err)

	trials := []db.Trial{
		{TrialKey: db.TrialKey{TrialIdx: 1}, ConditionHash: "a", FlipTimes: []float64{0, 1}},
		{TrialKey: db.TrialKey{TrialIdx: 2}, ConditionHash: "a", FlipTimes: []float64{0}},
		{TrialKey: db.TrialKey{TrialIdx: 3}, ConditionHash: "bad", FlipTimes: []float64{0}},
		{TrialKey: db.TrialKey{TrialIdx: 4}, ConditionHash: "a", FlipTimes: []float64{2, 3}},
	}
	loads := 0
	load := func(hash string) (stimulus.Visual, error) {
		loads++
		if hash == "bad" {
			return nil, errors.New("no such condition")
		}
		return fixedVisual{2}, nil
	}

	skipped := s.AddArchivedTrials(trials, load)
	assert.Equal(t, 2, skipped)
	assert.Len(t, s.Trials, 2)
	assert.Equal(t, 2, loads)
}

func TestDecimateFrameTimes(t *testing.T) {
	times := []float64{0, 0.01, 0.02, 1, 1.01, 1.02, 2, 2.01, 2.02, 3}
	got, err := DecimateFrameTimes(times, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, got)

	_, err = DecimateFrameTimes(times, 2, 3)
	assert.Error(t, err, "3.33 volumes exceeds 2+1")

	_, err = DecimateFrameTimes(times[:8], 3, 3)
	assert.Error(t, err, "2.67 volumes is short of 3")

	_, err = DecimateFrameTimes(times, 0, 3)
	assert.Error(t, err)
}

func TestApplyDelays(t *testing.T) {
	got, err := ApplyDelays([]float64{0, 500}, []float64{1, 2, 3})
	require.NoError(t, err)
	want := mat.NewDense(2, 3, []float64{1, 2, 3, 1.5, 2.5, 3.5})
	assert.True(t, mat.Equal(want, got))

	_, err = ApplyDelays(nil, []float64{1})
	assert.Error(t, err)
}

func TestDiscrepancy(t *testing.T) {
	assert.Equal(t, 0.0, Discrepancy(15, 60, 900))
	assert.Equal(t, 2.0, Discrepancy(15, 60, 898))
	assert.Equal(t, -1.0, Discrepancy(15, 60, 901))
}
