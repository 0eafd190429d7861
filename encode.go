package heightmap

import (
	"fmt"
	"io"

	"github.com/mrjoshuak/go-heightmap/internal/entropy"
	"github.com/mrjoshuak/go-heightmap/internal/frame"
	"github.com/mrjoshuak/go-heightmap/internal/narrow"
	"github.com/mrjoshuak/go-heightmap/internal/normalize"
	"github.com/mrjoshuak/go-heightmap/internal/palette"
	"github.com/mrjoshuak/go-heightmap/internal/predictor"
)

// Encode compresses h and writes the result to sink, returning the number
// of bytes written. level controls the entropy coder's speed/ratio
// tradeoff and must be in [entropy.MinLevel, entropy.MaxLevel].
//
// Encode fails only when the predictor's residual range can't be
// represented as a signed 16-bit delta (see VarianceError) or when sink
// returns a write error. Malformed h (wrong dimensions, too small) is a
// programmer error and panics instead.
func Encode(h Heightmap, level int, sink io.Writer) (int, error) {
	h.validate()
	assertLevel(level)

	result, err := predictor.Transform(h.Data, h.Width, h.Height)
	if err != nil {
		return 0, varianceErrorFromPredictor(err)
	}

	minDelta, deltas := normalize.Normalize(result.Residual)

	payload, ok := narrow.Narrow(deltas)
	if ok {
		if p, pok := buildPalette(payload); pok {
			payload = p
		} else {
			payload = frame.EncodeNarrow(payload)
		}
	} else {
		if p, pok := buildPalette(deltas); pok {
			payload = p
		} else {
			payload = frame.EncodePlain(deltas)
		}
	}

	framed := frame.Encode(result.First, minDelta, payload)

	compressed, err := entropy.Compress(framed, level)
	if err != nil {
		return 0, fmt.Errorf("heightmap: %w", err)
	}

	n, err := sink.Write(compressed)
	if err != nil {
		return n, fmt.Errorf("heightmap: %w", err)
	}
	return n, nil
}

// buildPalette is a small helper shared between the pre-narrow (uint16)
// and post-narrow (uint8) payload shapes: it only matters which of the two
// generic instantiations of palette.Apply fires.
func buildPalette[T uint8 | uint16](deltas []T) ([]byte, bool) {
	ok, count, compressed, indices := palette.Apply(deltas)
	if !ok {
		return nil, false
	}

	var raw []byte
	switch c := any(compressed).(type) {
	case []uint8:
		raw = c
	case []uint16:
		raw = make([]byte, len(c)*2)
		for i, v := range c {
			raw[2*i] = byte(v)
			raw[2*i+1] = byte(v >> 8)
		}
	}

	return frame.EncodePalette(count, raw, indices), true
}
