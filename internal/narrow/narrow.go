// Package narrow implements the byte-narrowing stage of the heightmap
// codec: when every normalized delta fits in a single byte, it collapses
// the 16-bit delta stream down to 8 bits, halving the pre-entropy payload.
package narrow

// Narrow returns the low byte of each delta and true if every delta fits
// in a uint8. If any delta exceeds 255, it returns (nil, false) and the
// caller must keep the 16-bit form.
func Narrow(deltas []uint16) ([]byte, bool) {
	for _, d := range deltas {
		if d > 255 {
			return nil, false
		}
	}
	narrowed := make([]byte, len(deltas))
	for i, d := range deltas {
		narrowed[i] = byte(d)
	}
	return narrowed, true
}

// Widen reverses Narrow, zero-extending each byte back to a uint16.
func Widen(narrowed []byte) []uint16 {
	deltas := make([]uint16, len(narrowed))
	for i, b := range narrowed {
		deltas[i] = uint16(b)
	}
	return deltas
}
