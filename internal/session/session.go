// Package session pairs recorded neural traces with the stimulus trials
// shown while they were recorded.
package session

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/monet-trippy/internal/db"
	"github.com/banshee-data/monet-trippy/internal/monitoring"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// ErrFrameMismatch is returned when a trial's frame times do not match the
// number of frames of its stimulus.
var ErrFrameMismatch = errors.New("frame times must match stimulus movie")

// Trial is a stimulus together with the time each of its frames was shown.
type Trial struct {
	Visual     stimulus.Visual
	FrameTimes []float64
}

// VisualSession holds the traces of N units over T samples, the sample
// times of each unit (N x T, see ApplyDelays) and the trials shown.
type VisualSession struct {
	Traces *mat.Dense
	Times  *mat.Dense
	Trials []Trial
}

// New checks that traces and times have the same shape.
func New(traces, times *mat.Dense) (*VisualSession, error) {
	tr, tc := traces.Dims()
	mr, mc := times.Dims()
	if tr != mr || tc != mc {
		return nil, fmt.Errorf("traces are %dx%d but times are %dx%d", tr, tc, mr, mc)
	}
	return &VisualSession{Traces: traces, Times: times}, nil
}

// AddTrial appends a trial. frameTimes must have one entry per frame of v.
func (s *VisualSession) AddTrial(v stimulus.Visual, frameTimes []float64) error {
	if n := v.FrameCount(); len(frameTimes) != n {
		return fmt.Errorf("%w: %d frame times for %d frames", ErrFrameMismatch, len(frameTimes), n)
	}
	s.Trials = append(s.Trials, Trial{Visual: v, FrameTimes: frameTimes})
	return nil
}

// AddArchivedTrials adds every trial whose condition load can build. Each
// condition is built once. Trials that fail to build or whose flips do not
// match are skipped and counted.
func (s *VisualSession) AddArchivedTrials(trials []db.Trial, load func(hash string) (stimulus.Visual, error)) (skipped int) {
	visuals := make(map[string]stimulus.Visual)
	for _, t := range trials {
		v, ok := visuals[t.ConditionHash]
		if !ok {
			var err error
			if v, err = load(t.ConditionHash); err != nil {
				monitoring.Logf("[session] skipping trial %s: %v", t.TrialKey, err)
				skipped++
				continue
			}
			visuals[t.ConditionHash] = v
		}
		if err := s.AddTrial(v, t.FlipTimes); err != nil {
			monitoring.Logf("[session] invalid trial %s: %v", t.TrialKey, err)
			skipped++
		}
	}
	return skipped
}

// DecimateFrameTimes keeps one time per volume from a sync record with one
// time per imaging depth. The record must hold between nFrames and nFrames+1
// volumes.
func DecimateFrameTimes(times []float64, nFrames, nDepths int) ([]float64, error) {
	if nFrames < 1 || nDepths < 1 {
		return nil, fmt.Errorf("frames and depths must be positive, got %d and %d", nFrames, nDepths)
	}
	volumes := float64(len(times)) / float64(nDepths)
	if volumes < float64(nFrames) || volumes > float64(nFrames+1) {
		return nil, fmt.Errorf("%d sync times for %d depths is %.2f volumes, want %d to %d",
			len(times), nDepths, volumes, nFrames, nFrames+1)
	}
	out := make([]float64, nFrames)
	for i := range out {
		out[i] = times[i*nDepths]
	}
	return out, nil
}

// ApplyDelays shifts the frame times by each unit's scan delay in
// milliseconds, giving one row of times per unit.
func ApplyDelays(msDelay, frameTimes []float64) (*mat.Dense, error) {
	if len(msDelay) == 0 || len(frameTimes) == 0 {
		return nil, fmt.Errorf("need at least one delay and one frame time")
	}
	out := mat.NewDense(len(msDelay), len(frameTimes), nil)
	for i, d := range msDelay {
		row := out.RawRowView(i)
		for j, t := range frameTimes {
			row[j] = d/1000 + t
		}
	}
	return out, nil
}

// Discrepancy is the number of frames a trial should have shown minus the
// number of recorded flips.
func Discrepancy(duration, fps float64, flips int) float64 {
	return duration*fps - float64(flips)
}
