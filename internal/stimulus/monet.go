package stimulus

import "fmt"

// Monet2Version is the stimulus_version of Monet2 conditions handled here.
const Monet2Version = "6"

// Monet2 holds the parameters of a Monet2 condition together with its
// stored movie. The movie is generated elsewhere; nothing is reconstructed.
type Monet2 struct {
	RngSeed       int
	PatternWidth  int
	PatternAspect float64
	TempKernel    string
	TempBandwidth float64
	OriCoherence  float64
	OriFraction   float64
	OriMix        float64
	NumDirections int
	Speed         float64
	Directions    []float64
	Onsets        []float64

	movie *Movie
}

// Monet2FromCondition reads a grayscale version 6 Monet2 record. The
// record's movie field must hold a *Movie.
func Monet2FromCondition(cond Condition) (*Monet2, error) {
	if err := cond.checkVersion(Monet2Version); err != nil {
		return nil, err
	}
	if sat, err := cond.Float(FieldBlueGreenSat); err != nil {
		return nil, err
	} else if sat != 0 {
		return nil, paramErr(FieldBlueGreenSat, "only grayscale Monet2 is supported, got %v", sat)
	}
	movie, ok := cond[FieldMovie].(*Movie)
	if !ok || movie == nil {
		return nil, paramErr(FieldMovie, "missing from record")
	}

	m := &Monet2{movie: movie}
	var err error
	for _, f := range []struct {
		field string
		dst   *int
	}{
		{"rng_seed", &m.RngSeed},
		{"pattern_width", &m.PatternWidth},
		{"n_dirs", &m.NumDirections},
	} {
		if *f.dst, err = cond.Int(f.field); err != nil {
			return nil, err
		}
	}
	for _, f := range []struct {
		field string
		dst   *float64
	}{
		{"pattern_aspect", &m.PatternAspect},
		{"temp_bandwidth", &m.TempBandwidth},
		{"ori_coherence", &m.OriCoherence},
		{"ori_fraction", &m.OriFraction},
		{"ori_mix", &m.OriMix},
		{"speed", &m.Speed},
	} {
		if *f.dst, err = cond.Float(f.field); err != nil {
			return nil, err
		}
	}
	if v, ok := cond["temp_kernel"]; ok {
		m.TempKernel = fmt.Sprint(v)
	}
	if m.Directions, err = floatList(cond, "directions"); err != nil {
		return nil, err
	}
	if m.Onsets, err = floatList(cond, "onsets"); err != nil {
		return nil, err
	}
	return m, nil
}

func floatList(cond Condition, field string) ([]float64, error) {
	switch v := cond[field].(type) {
	case nil:
		return nil, nil
	case []float64:
		return append([]float64(nil), v...), nil
	case []any:
		out := make([]float64, len(v))
		for i, x := range v {
			f, ok := x.(float64)
			if !ok {
				return nil, paramErr(field, "element %d: expected a number, got %T", i, x)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, paramErr(field, "expected a list of numbers, got %T", v)
	}
}

// Params returns the condition parameters by record name.
func (m *Monet2) Params() map[string]any {
	return map[string]any{
		"rng_seed":       m.RngSeed,
		"pattern_width":  m.PatternWidth,
		"pattern_aspect": m.PatternAspect,
		"temp_kernel":    m.TempKernel,
		"temp_bandwidth": m.TempBandwidth,
		"ori_coherence":  m.OriCoherence,
		"ori_fraction":   m.OriFraction,
		"ori_mix":        m.OriMix,
		"n_dirs":         m.NumDirections,
		"speed":          m.Speed,
		"directions":     m.Directions,
		"onsets":         m.Onsets,
	}
}

// FrameCount is the length of the stored movie.
func (m *Monet2) FrameCount() int { return m.movie.Frames }

// FPS is the frame rate stored with the movie.
func (m *Monet2) FPS() float64 { return m.movie.FPS }

// Movie returns the stored movie.
func (m *Monet2) Movie() (*Movie, error) { return m.movie, nil }
