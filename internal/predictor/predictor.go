// Package predictor implements the neighborhood-prediction transform used
// by the heightmap codec.
//
// A W×H grid of absolute elevation samples correlates strongly with its
// immediate neighbors, so the predictor rewrites each sample as a residual
// against a prediction computed from already-seen neighbors. The residual
// stream compresses far better than the raw samples because most terrain
// is locally smooth: flat or gently sloping regions predict to zero or
// near-zero.
package predictor

import "fmt"

// VarianceError reports that the residual range produced by Transform does
// not fit in a signed 16-bit delta, which is the only way this package can
// fail on otherwise well-formed input.
type VarianceError struct {
	Bound string // "min" or "max"
	Value int32
}

func (e *VarianceError) Error() string {
	return fmt.Sprintf("predictor: variance too high: %s delta is %d", e.Bound, e.Value)
}

// Result is the output of Transform: the untouched first sample plus a
// residual for every other pixel, along with the observed residual range.
type Result struct {
	First    uint16
	Residual []int32 // len == width*height-1, residual[i] is for pixel i+1
	MinDelta int32
	MaxDelta int32
}

// Transform predicts every pixel but the first from its already-seen
// neighbors and returns the signed residual grid. data is read only; the
// caller's slice is never mutated.
//
// Prediction rules, by pixel location:
//
//	(0,0):           none; the sample is carried through as First.
//	(1,0) and (0,1): PRED_NONE, predicted from (0,0).
//	row 0, x>=2:     PRED_LINEAR from (x-1,0) and (x-2,0).
//	col 0, y>=2:     PRED_LINEAR from (0,y-1) and (0,y-2).
//	interior x,y>=1: PRED_PLANE from (x-1,y), (x,y-1) and (x-1,y-1).
//
// All predictions are computed in signed 32-bit arithmetic so that the
// residual range can be checked against the i16 domain before the caller
// commits to a 16-bit wire representation; see VarianceError.
func Transform(data []uint16, width, height int) (Result, error) {
	if width*height != len(data) {
		panic("predictor: len(data) must equal width*height")
	}

	res := Result{
		First:    data[0],
		Residual: make([]int32, width*height-1),
		MinDelta: int32(1) << 30,
		MaxDelta: -(int32(1) << 30),
	}

	at := func(x, y int) int32 { return int32(data[y*width+x]) }
	put := func(x, y int, delta int32) {
		res.Residual[y*width+x-1] = delta
		if delta < res.MinDelta {
			res.MinDelta = delta
		}
		if delta > res.MaxDelta {
			res.MaxDelta = delta
		}
	}

	// (1,0) and (0,1): predicted from the corner.
	pred := predictNone(at(0, 0))
	put(1, 0, at(1, 0)-pred)
	put(0, 1, at(0, 1)-pred)

	// Rest of the first row.
	for x := 2; x < width; x++ {
		put(x, 0, at(x, 0)-predictLinear(at(x-1, 0), at(x-2, 0)))
	}

	// Rest of the first column.
	for y := 2; y < height; y++ {
		put(0, y, at(0, y)-predictLinear(at(0, y-1), at(0, y-2)))
	}

	// Interior, plane prediction.
	for y := 1; y < height; y++ {
		for x := 1; x < width; x++ {
			put(x, y, at(x, y)-predictPlane(at(x-1, y), at(x, y-1), at(x-1, y-1)))
		}
	}

	if res.MinDelta < -32768 || res.MinDelta > 32767 {
		return Result{}, &VarianceError{Bound: "min", Value: res.MinDelta}
	}
	if res.MaxDelta < -32768 || res.MaxDelta > 32767 {
		return Result{}, &VarianceError{Bound: "max", Value: res.MaxDelta}
	}
	return res, nil
}

// Inverse reconstructs the original W×H grid from a first sample and its
// residuals (as produced, in delta form, by the min-delta normalizer's
// Denormalize). Unlike Transform, Inverse MUST process pixels in the order
// below: each prediction is computed from neighbors that this function has
// already reconstructed, not from the original data (which isn't
// available), so an out-of-order pass would read garbage.
func Inverse(first uint16, residual []int32, width, height int) []uint16 {
	if width*height != len(residual)+1 {
		panic("predictor: len(residual) must equal width*height-1")
	}

	data := make([]uint16, width*height)
	data[0] = first

	at := func(x, y int) int32 { return int32(data[y*width+x]) }
	get := func(x, y int) int32 { return residual[y*width+x-1] }
	set := func(x, y int, v int32) { data[y*width+x] = uint16(v) }

	pred := predictNone(at(0, 0))
	set(1, 0, pred+get(1, 0))
	set(0, 1, pred+get(0, 1))

	for x := 2; x < width; x++ {
		set(x, 0, predictLinear(at(x-1, 0), at(x-2, 0))+get(x, 0))
	}
	for y := 2; y < height; y++ {
		set(0, y, predictLinear(at(0, y-1), at(0, y-2))+get(0, y))
	}

	for y := 1; y < height; y++ {
		for x := 1; x < width; x++ {
			set(x, y, predictPlane(at(x-1, y), at(x, y-1), at(x-1, y-1))+get(x, y))
		}
	}

	return data
}

func predictNone(v int32) int32 { return v }

func predictLinear(previous, previousPrevious int32) int32 {
	return 2*previous - previousPrevious
}

func predictPlane(left, top, topLeft int32) int32 {
	return top + (left - topLeft)
}
