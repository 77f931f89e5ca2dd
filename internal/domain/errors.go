package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownHazard is returned when a request names a hazard that is not
// earthquake, flood or tsunami.
var ErrUnknownHazard = errors.New("unknown hazard")

// ValidationError reports a caller input that cannot be scored, such as a
// missing coordinate. It is surfaced immediately and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RequireCoordinate returns a ValidationError when a required coordinate is
// absent or not a finite number.
func RequireCoordinate(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, &ValidationError{Field: field, Reason: "required"}
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, &ValidationError{Field: field, Reason: "must be a finite number"}
	}
	return *v, nil
}

// ValueOr dereferences an optional input, falling back to def when unset.
func ValueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
