// Package testutil provides shared fixtures for tests that reconstruct
// stimuli or exercise the CLI's HTTP surface.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// SmallParams is a one second clip at 30 fps on a 40x30 texture that
// reconstructs in milliseconds. Its packed row count divides evenly so seed
// synthesis lines up with the frame count.
func SmallParams() stimulus.Params {
	return stimulus.Params{
		FrameRate:            30,
		TextureWidth:         40,
		TextureHeight:        30,
		NodesX:               6,
		NodesY:               5,
		UpscaleFactor:        8,
		Duration:             1,
		TemporalFrequency:    2,
		TemporalKernelLength: 7,
		SpatialFrequency:     0.08,
	}
}

// SmallCondition is SmallParams with the given seed as a condition record.
func SmallCondition(seed int64) stimulus.Condition {
	return stimulus.Condition{
		stimulus.FieldVersion:     "1",
		stimulus.FieldFPS:         30.0,
		stimulus.FieldSeed:        seed,
		stimulus.FieldUpFactor:    int64(8),
		stimulus.FieldTempFreq:    2.0,
		stimulus.FieldTempKernel:  int64(7),
		stimulus.FieldDuration:    1.0,
		stimulus.FieldSpatialFreq: 0.08,
		stimulus.FieldTexWidth:    int64(40),
		stimulus.FieldTexHeight:   int64(30),
		stimulus.FieldNodesX:      int64(6),
		stimulus.FieldNodesY:      int64(5),
	}
}

// WriteJSON marshals v into dir/name and returns the path.
func WriteJSON(t testing.TB, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// Serve runs a GET request for path through h and returns the recorder.
func Serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}
