package stimulus

import (
	"errors"
	"fmt"
)

var (
	// ErrParameter is matched by every *ParameterError.
	ErrParameter = errors.New("stimulus: invalid parameters")
	// ErrConsistency is matched by every *ConsistencyError.
	ErrConsistency = errors.New("stimulus: inconsistent reconstruction")
)

// ParameterError reports a malformed, missing or unsupported construction
// parameter. It is returned before any array work begins.
type ParameterError struct {
	Field  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("stimulus: parameter %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrParameter) match.
func (e *ParameterError) Is(target error) bool { return target == ErrParameter }

func paramErr(field, format string, args ...interface{}) error {
	return &ParameterError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConsistencyError reports that the temporally filtered phase movie does not
// have the frame count implied by duration and frame rate. It indicates a bug
// in the parameters or in the decomposition and is never corrected.
type ConsistencyError struct {
	Expected int
	Got      int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("stimulus: reconstructed %d frames, expected ceil(duration*fps) = %d", e.Got, e.Expected)
}

// Is lets errors.Is(err, ErrConsistency) match.
func (e *ConsistencyError) Is(target error) bool { return target == ErrConsistency }
