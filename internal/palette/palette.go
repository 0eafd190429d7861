// Package palette implements the optional global-palette transform: when a
// delta stream has few distinct nonzero values, it is rewritten as a small
// sorted, delta-compressed palette plus a one-byte-per-pixel index stream.
//
// Two incompatible palette layouts appear in the original source: one maps
// sorted[0] to index 1 (and sorted[k] to index k+1 thereafter), the other
// maps sorted[0] to index 0 directly. Only the first is internally
// consistent with the "index 0 means delta 0" sentinel — the second would
// collide index 0 between "zero delta" and "the smallest nonzero delta" —
// so this package implements the first and treats the second as the
// source bug the format specification calls it.
package palette

import "unsafe"

// Elem is the set of delta element widths the palette transform supports:
// uint16 before byte-narrowing, uint8 after it.
type Elem interface {
	~uint8 | ~uint16
}

// maxCount is the largest palette size the single count byte can address.
const maxCount = 255

// Apply attempts to build a global palette for deltas. It returns
// ok == false when paletting would not be a net win, per the gate in the
// format specification: more than 255 distinct nonzero values, an input
// small enough that paletting can't pay for its own overhead, or a palette
// that would not fit in the first half of the buffer it is meant to
// replace (the count byte plus the palette itself must leave room for the
// N-1 index bytes within the original buffer's length).
func Apply[T Elem](deltas []T) (ok bool, count byte, compressed []T, indices []byte) {
	var zero T
	width := int(unsafe.Sizeof(zero))
	if len(deltas)*width <= 512 {
		return false, 0, nil, nil
	}

	seen := make(map[T]struct{}, 256)
	for _, d := range deltas {
		if d == 0 {
			continue
		}
		seen[d] = struct{}{}
		if len(seen) > maxCount {
			return false, 0, nil, nil
		}
	}

	sorted := make([]T, 0, len(seen))
	for d := range seen {
		sorted = append(sorted, d)
	}
	sortAscending(sorted)

	if 1+width*len(sorted) > len(deltas)*width/2 {
		return false, 0, nil, nil
	}

	// index 0 means delta 0; sorted[0] maps to index 1, sorted[k] to k+1.
	index := make(map[T]byte, len(sorted))
	for i, d := range sorted {
		index[d] = byte(i + 1)
	}

	indices = make([]byte, len(deltas))
	for i, d := range deltas {
		if d != 0 {
			indices[i] = index[d]
		}
	}

	// Delta-compress the sorted palette in place, highest entry first so
	// earlier entries are still available when computing later ones.
	for i := len(sorted) - 1; i >= 1; i-- {
		sorted[i] = sorted[i] - sorted[i-1]
	}

	return true, byte(len(sorted)), sorted, indices
}

// Invert reverses Apply: index 0 decodes to delta 0, index k (1<=k<=count)
// decodes to the k-th palette entry after undoing the delta compression.
func Invert[T Elem](count byte, compressed []T, indices []byte) []T {
	palette := make([]T, len(compressed))
	copy(palette, compressed)
	for i := 1; i < len(palette); i++ {
		palette[i] += palette[i-1]
	}

	deltas := make([]T, len(indices))
	for i, h := range indices {
		if h != 0 {
			deltas[i] = palette[h-1]
		}
	}
	return deltas
}

func sortAscending[T Elem](s []T) {
	// Insertion sort: palettes are bounded to 255 entries, so this stays
	// fast without pulling in sort.Slice's reflection overhead.
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j] > v {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}
