package heightmap

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-heightmap/internal/entropy"
	"github.com/mrjoshuak/go-heightmap/internal/predictor"
)

// ErrInvalidData is returned by Decode when the compressed bytes are
// truncated, corrupted, or otherwise not a well-formed frame for the
// requested width and height.
var ErrInvalidData = errors.New("heightmap: invalid data")

// ErrVarianceTooHigh is returned by Encode when the predictor's residual
// range does not fit in a signed 16-bit delta. This is the codec's only
// failure mode driven by input content rather than programmer error.
var ErrVarianceTooHigh = errors.New("heightmap: variance too high")

// VarianceError reports which residual bound overflowed and the residual
// value at that bound.
// It wraps ErrVarianceTooHigh, so callers can use errors.Is against that
// sentinel without depending on this concrete type.
type VarianceError struct {
	Bound string // "min" or "max"
	Value int32
}

func (e *VarianceError) Error() string {
	return fmt.Sprintf("heightmap: variance too high: %s delta is %d", e.Bound, e.Value)
}

func (e *VarianceError) Unwrap() error { return ErrVarianceTooHigh }

func varianceErrorFromPredictor(err error) error {
	var pe *predictor.VarianceError
	if errors.As(err, &pe) {
		return &VarianceError{Bound: pe.Bound, Value: pe.Value}
	}
	return err
}

func assertLevel(level int) {
	if level < entropy.MinLevel || level > entropy.MaxLevel {
		panic("heightmap: level must be in [-7, 22]")
	}
}
