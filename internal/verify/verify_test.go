package verify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/banshee-data/monet-trippy/internal/db"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
	"github.com/banshee-data/monet-trippy/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memStore struct {
	mu         sync.Mutex
	conditions map[string]stimulus.Condition
	movies     map[string]*stimulus.Movie
	recorded   []db.Verification
	recordErr  error
}

func newMemStore() *memStore {
	return &memStore{
		conditions: make(map[string]stimulus.Condition),
		movies:     make(map[string]*stimulus.Movie),
	}
}

func (s *memStore) GetCondition(hash string) (stimulus.Condition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conditions[hash]
	if !ok {
		return nil, db.ErrNotFound
	}
	return c, nil
}

func (s *memStore) GetReferenceMovie(hash string) (*stimulus.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[hash]
	if !ok {
		return nil, db.ErrNotFound
	}
	return m, nil
}

func (s *memStore) RecordVerification(v *db.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordErr != nil {
		return s.recordErr
	}
	s.recorded = append(s.recorded, *v)
	return nil
}

func render(t *testing.T, cond stimulus.Condition) *stimulus.Movie {
	t.Helper()
	tr, err := stimulus.TrippyFromCondition(cond)
	require.NoError(t, err)
	m, err := tr.Movie()
	require.NoError(t, err)
	// Copy so the store does not share pixels with the runner's movie.
	out := *m
	out.Pix = append([]uint8(nil), m.Pix...)
	return &out
}

func TestCompare(t *testing.T) {
	a := stimulus.NewMovie(1, 2, 2, 60)
	b := stimulus.NewMovie(1, 2, 2, 60)
	d, err := Compare("k", a, b, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	b.Pix[2] = 2
	d, err = Compare("k", a, b, 1)
	assert.Equal(t, 2, d)
	var cm *ComparisonMismatch
	require.ErrorAs(t, err, &cm)
	assert.Equal(t, 2, cm.MaxAbsDiff)
	assert.ErrorIs(t, err, ErrMismatch)

	_, err = Compare("k", a, b, 2)
	assert.NoError(t, err)

	_, err = Compare("k", a, stimulus.NewMovie(2, 2, 2, 60), 255)
	require.ErrorAs(t, err, &cm)
	assert.Error(t, cm.Shape)
}

func TestVerifyAll(t *testing.T) {
	store := newMemStore()
	for _, h := range []string{"good", "tampered", "unreferenced"} {
		store.conditions[h] = testutil.SmallCondition(int64(len(h)))
	}
	store.movies["good"] = render(t, store.conditions["good"])
	tampered := render(t, store.conditions["tampered"])
	tampered.Pix[100] ^= 0x40
	store.movies["tampered"] = tampered

	bad := testutil.SmallCondition(1)
	bad[stimulus.FieldVersion] = "2"
	store.conditions["old-version"] = bad

	runner := &Runner{Store: store, Workers: 2}
	hashes := []string{"good", "tampered", "unreferenced", "old-version", "missing"}
	report, err := runner.VerifyAll(context.Background(), hashes)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Results, 5)

	assert.True(t, report.Results[0].Passed())
	assert.ErrorIs(t, report.Results[1].Err, ErrMismatch)
	assert.Equal(t, 64, report.Results[1].MaxAbsDiff)
	assert.ErrorIs(t, report.Results[2].Err, db.ErrNotFound)
	assert.ErrorIs(t, report.Results[3].Err, stimulus.ErrParameter)
	assert.ErrorIs(t, report.Results[4].Err, db.ErrNotFound)
	assert.Equal(t, 4, report.Failures())

	require.Len(t, store.recorded, 5)
	for _, v := range store.recorded {
		assert.Equal(t, report.RunID, v.RunID)
		assert.Equal(t, v.ConditionHash == "good", v.Passed)
	}
}

func TestVerifyConditionTolerance(t *testing.T) {
	store := newMemStore()
	store.conditions["c"] = testutil.SmallCondition(3)
	ref := render(t, store.conditions["c"])
	if ref.Pix[0] < 255 {
		ref.Pix[0]++
	} else {
		ref.Pix[0]--
	}
	store.movies["c"] = ref

	strict := &Runner{Store: store, Workers: 1}
	report, err := strict.VerifyCondition(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failures())

	lenient := &Runner{Store: store, Workers: 1, Tolerance: 1}
	report, err = lenient.VerifyCondition(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Failures())
	assert.Equal(t, 1, report.Results[0].MaxAbsDiff)
}

func TestVerifyAllCancelled(t *testing.T) {
	store := newMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &Runner{Store: store, Workers: 4}
	_, err := runner.VerifyAll(ctx, []string{"a", "b", "c"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.recorded)
}

func TestVerifyAllRecordError(t *testing.T) {
	store := newMemStore()
	store.recordErr = errors.New("disk full")

	runner := &Runner{Store: store}
	_, err := runner.VerifyAll(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, store.recordErr)
}
