// Package verify reconstructs archived Trippy conditions and compares them
// pixel for pixel with the movies recorded when they were shown.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/monet-trippy/internal/db"
	"github.com/banshee-data/monet-trippy/internal/monitoring"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// ErrMismatch is matched by every *ComparisonMismatch.
var ErrMismatch = errors.New("verify: movies differ")

// ComparisonMismatch reports a reconstruction that differs from its
// reference by more than the tolerance, or has a different shape.
type ComparisonMismatch struct {
	Key        string
	MaxAbsDiff int
	Tolerance  int
	Shape      error
}

func (e *ComparisonMismatch) Error() string {
	if e.Shape != nil {
		return fmt.Sprintf("verify: %s: %v", e.Key, e.Shape)
	}
	return fmt.Sprintf("verify: %s: max |a-b| = %d exceeds tolerance %d", e.Key, e.MaxAbsDiff, e.Tolerance)
}

// Is lets errors.Is(err, ErrMismatch) match.
func (e *ComparisonMismatch) Is(target error) bool { return target == ErrMismatch }

// Compare returns the largest pixel difference between got and want, and a
// *ComparisonMismatch when it exceeds tolerance.
func Compare(key string, got, want *stimulus.Movie, tolerance int) (int, error) {
	d, err := stimulus.MaxAbsDiff(got, want)
	if err != nil {
		return 0, &ComparisonMismatch{Key: key, Tolerance: tolerance, Shape: err}
	}
	if d > tolerance {
		return d, &ComparisonMismatch{Key: key, MaxAbsDiff: d, Tolerance: tolerance}
	}
	return d, nil
}

// Store is the part of the archive a Runner reads and writes.
type Store interface {
	GetCondition(hash string) (stimulus.Condition, error)
	GetReferenceMovie(hash string) (*stimulus.Movie, error)
	RecordVerification(v *db.Verification) error
}

// Runner verifies conditions from Store using up to Workers goroutines.
type Runner struct {
	Store     Store
	Workers   int
	Tolerance int
}

// Result is the outcome for one condition. Err holds the reason a
// condition failed, whether it could not be reconstructed or did not match.
type Result struct {
	ConditionHash string
	MaxAbsDiff    int
	Err           error
}

// Passed reports whether the reconstruction matched its reference.
func (r Result) Passed() bool { return r.Err == nil }

// Report collects the results of one run in input order.
type Report struct {
	RunID   string
	Results []Result
}

// Failures counts the results that did not pass.
func (r *Report) Failures() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed() {
			n++
		}
	}
	return n
}

// VerifyCondition verifies a single condition in a run of its own.
func (r *Runner) VerifyCondition(ctx context.Context, hash string) (*Report, error) {
	return r.VerifyAll(ctx, []string{hash})
}

// VerifyAll verifies every hash and records each outcome under a new run
// id. A failing condition does not stop the run; a cancelled context or a
// store write error does.
func (r *Runner) VerifyAll(ctx context.Context, hashes []string) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Results: make([]Result, len(hashes)),
	}
	defer monitoring.Timed(fmt.Sprintf("verification run %s (%d conditions)", report.RunID, len(hashes)))()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Workers, 1))
	for i, hash := range hashes {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := r.verifyOne(hash)
			report.Results[i] = res
			return r.record(report.RunID, res)
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) verifyOne(hash string) Result {
	res := Result{ConditionHash: hash}
	cond, err := r.Store.GetCondition(hash)
	if err != nil {
		res.Err = err
		return res
	}
	tr, err := stimulus.TrippyFromCondition(cond)
	if err != nil {
		res.Err = err
		return res
	}
	got, err := tr.Movie()
	if err != nil {
		res.Err = err
		return res
	}
	want, err := r.Store.GetReferenceMovie(hash)
	if err != nil {
		res.Err = err
		return res
	}
	res.MaxAbsDiff, res.Err = Compare(hash, got, want, r.Tolerance)
	return res
}

func (r *Runner) record(runID string, res Result) error {
	v := &db.Verification{
		RunID:         runID,
		ConditionHash: res.ConditionHash,
		MaxAbsDiff:    res.MaxAbsDiff,
		Passed:        res.Passed(),
	}
	if res.Err != nil {
		v.Message = res.Err.Error()
		monitoring.Logf("[verify] %s failed: %v", res.ConditionHash, res.Err)
	}
	if err := r.Store.RecordVerification(v); err != nil {
		return fmt.Errorf("failed to record result for %s: %w", res.ConditionHash, err)
	}
	return nil
}
