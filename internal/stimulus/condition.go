package stimulus

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// TrippyVersion is the only stimulus_version of Trippy conditions this
// reconstruction reproduces.
const TrippyVersion = "1"

// Condition is a stimulus condition record as fetched from the experiment
// database. Numeric fields may hold any Go integer or float type, which is
// what database drivers and JSON decoding produce.
type Condition map[string]any

// Record field names.
const (
	FieldVersion       = "stimulus_version"
	FieldFPS           = "fps"
	FieldFrameRate     = "frame_rate" // accepted alias of fps
	FieldSeed          = "rng_seed"
	FieldPackedPhase   = "packed_phase_movie"
	FieldUpFactor      = "up_factor"
	FieldTempFreq      = "temp_freq"
	FieldTempKernel    = "temp_kernel_length"
	FieldDuration      = "duration"
	FieldSpatialFreq   = "spatial_freq"
	FieldTexWidth      = "tex_xdim"
	FieldTexHeight     = "tex_ydim"
	FieldNodesX        = "xnodes"
	FieldNodesY        = "ynodes"
	FieldConditionHash = "condition_hash"
	FieldMovie         = "movie"
	FieldBlueGreenSat  = "blue_green_saturation"
)

// TrippyFromCondition checks the record version and builds a Trippy from it.
// rng_seed is only required when the record carries no packed phase movie.
func TrippyFromCondition(cond Condition) (*Trippy, error) {
	p, err := cond.TrippyParams()
	if err != nil {
		return nil, err
	}
	return NewTrippy(p)
}

// TrippyParams extracts reconstruction parameters from the record.
func (c Condition) TrippyParams() (Params, error) {
	var p Params
	if err := c.checkVersion(TrippyVersion); err != nil {
		return p, err
	}

	var err error
	fpsField := FieldFPS
	if v, ok := c[fpsField]; !ok || v == nil {
		if v, ok := c[FieldFrameRate]; ok && v != nil {
			fpsField = FieldFrameRate
		}
	}
	if p.FrameRate, err = c.Float(fpsField); err != nil {
		return p, err
	}
	if p.Duration, err = c.Float(FieldDuration); err != nil {
		return p, err
	}
	if p.TemporalFrequency, err = c.Float(FieldTempFreq); err != nil {
		return p, err
	}
	if p.SpatialFrequency, err = c.Float(FieldSpatialFreq); err != nil {
		return p, err
	}
	ints := []struct {
		field string
		dst   *int
	}{
		{FieldUpFactor, &p.UpscaleFactor},
		{FieldTempKernel, &p.TemporalKernelLength},
		{FieldTexWidth, &p.TextureWidth},
		{FieldTexHeight, &p.TextureHeight},
		{FieldNodesX, &p.NodesX},
		{FieldNodesY, &p.NodesY},
	}
	for _, f := range ints {
		if *f.dst, err = c.Int(f.field); err != nil {
			return p, err
		}
	}

	if raw, ok := c[FieldPackedPhase]; ok && raw != nil {
		if p.PackedPhase, err = toDense(raw); err != nil {
			return p, &ParameterError{Field: FieldPackedPhase, Reason: err.Error()}
		}
		return p, nil
	}
	seed, err := c.Int(FieldSeed)
	if err != nil {
		return p, err
	}
	if seed < 0 || int64(seed) > math.MaxUint32 {
		return p, paramErr(FieldSeed, "must be between 0 and 2**32 - 1, got %d", seed)
	}
	s := uint32(seed)
	p.Seed = &s
	return p, nil
}

func (c Condition) checkVersion(want string) error {
	v, ok := c[FieldVersion]
	if !ok || v == nil {
		return paramErr(FieldVersion, "missing from record")
	}
	if got := fmt.Sprint(v); got != want {
		return paramErr(FieldVersion, "this code matches only version %s, got %s", want, got)
	}
	return nil
}

// Float returns a numeric field as float64.
func (c Condition) Float(field string) (float64, error) {
	v, ok := c[field]
	if !ok || v == nil {
		return 0, paramErr(field, "missing from record")
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, paramErr(field, "expected a number, got %T", v)
}

// Int returns an integral numeric field. Floats are accepted when they hold
// an integer value.
func (c Condition) Int(field string) (int, error) {
	v, ok := c[field]
	if !ok || v == nil {
		return 0, paramErr(field, "missing from record")
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, paramErr(field, "expected an integer, got %v", n)
		}
		return int(n), nil
	case float32:
		if float64(n) != math.Trunc(float64(n)) {
			return 0, paramErr(field, "expected an integer, got %v", n)
		}
		return int(n), nil
	}
	return 0, paramErr(field, "expected an integer, got %T", v)
}

// toDense accepts the matrix encodings produced by the archive and by JSON.
func toDense(v any) (*mat.Dense, error) {
	switch m := v.(type) {
	case *mat.Dense:
		return m, nil
	case mat.Matrix:
		return mat.DenseCopyOf(m), nil
	case [][]float64:
		return denseFromRows(len(m), func(i int) ([]float64, error) { return m[i], nil })
	case []any:
		return denseFromRows(len(m), func(i int) ([]float64, error) {
			row, ok := m[i].([]any)
			if !ok {
				return nil, fmt.Errorf("row %d: expected an array, got %T", i, m[i])
			}
			out := make([]float64, len(row))
			for j, x := range row {
				f, ok := x.(float64)
				if !ok {
					return nil, fmt.Errorf("row %d col %d: expected a number, got %T", i, j, x)
				}
				out[j] = f
			}
			return out, nil
		})
	}
	return nil, fmt.Errorf("unsupported matrix type %T", v)
}

func denseFromRows(n int, row func(i int) ([]float64, error)) (*mat.Dense, error) {
	if n == 0 {
		return nil, fmt.Errorf("empty matrix")
	}
	var cols int
	var data []float64
	for i := 0; i < n; i++ {
		r, err := row(i)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			cols = len(r)
			if cols == 0 {
				return nil, fmt.Errorf("empty matrix")
			}
			data = make([]float64, 0, n*cols)
		} else if len(r) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return mat.NewDense(n, cols, data), nil
}
