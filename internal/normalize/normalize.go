// Package normalize implements the min-delta normalization stage of the
// heightmap codec: it shifts a signed residual stream so every value is
// non-negative and fits in 16 bits, recording the shift so the transform
// can be undone exactly.
package normalize

// Normalize shifts residual by its minimum value and returns the shift
// (min_delta) alongside the non-negative, unsigned deltas. residual must
// already be known to fit in the i16 domain (internal/predictor.Transform
// guarantees this); Normalize panics if it doesn't, since that would be a
// bug in the caller rather than a property of the input data.
func Normalize(residual []int32) (minDelta int16, deltas []uint16) {
	if len(residual) == 0 {
		return 0, nil
	}

	min := residual[0]
	max := residual[0]
	for _, d := range residual[1:] {
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	if min < -32768 || min > 32767 {
		panic("normalize: min delta does not fit in int16")
	}
	if uint32(max-min) > 65535 {
		panic("normalize: delta range exceeds uint16")
	}

	deltas = make([]uint16, len(residual))
	for i, d := range residual {
		deltas[i] = uint16(d - min)
	}
	return int16(min), deltas
}

// Denormalize reverses Normalize, recovering the signed residual stream.
func Denormalize(minDelta int16, deltas []uint16) []int32 {
	residual := make([]int32, len(deltas))
	for i, d := range deltas {
		residual[i] = int32(d) + int32(minDelta)
	}
	return residual
}
