// Package frame implements the heightmap wire frame: the header fields
// (first pixel, min-delta) followed by one of four payload shapes, with
// the shape recovered from the payload's length rather than an explicit
// tag byte. This is the layer the entropy coder's byte stream holds.
package frame

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-heightmap/internal/wire"
)

// ErrInvalidData is returned when a frame's length is inconsistent with
// every legal payload shape for the supplied pixel count.
var ErrInvalidData = errors.New("frame: invalid data")

const headerSize = 4 // first (2 bytes) + min_delta (2 bytes)

// Shape identifies which of the four payload layouts a frame carries.
type Shape int

const (
	// Plain is (N-1) little-endian uint16 deltas.
	Plain Shape = iota
	// Narrow is (N-1) uint8 deltas.
	Narrow
	// PalettePlain is [count u8][count x u16 LE palette][(N-1) x u8 indices].
	PalettePlain
	// PaletteNarrow is [count u8][count x u8 palette][(N-1) x u8 indices].
	PaletteNarrow
)

// Payload is the parsed, still-in-wire-form body of a frame: exactly one
// of Deltas or (Palette, Indices) is populated, depending on Shape.
type Payload struct {
	Shape   Shape
	Count   byte
	Palette []byte // raw bytes, Count*2 (PalettePlain) or Count*1 (PaletteNarrow)
	Indices []byte // N-1 bytes, present iff Shape is one of the Palette* shapes
	Deltas  []byte // raw bytes, present iff Shape is Plain or Narrow
}

// Encode assembles a complete frame: the two header fields followed by
// payload, which must already be the exact wire bytes for one of the four
// shapes above (see EncodePlain/EncodeNarrow/EncodePalette).
func Encode(first uint16, minDelta int16, payload []byte) []byte {
	w := wire.NewBufferWriter(headerSize + len(payload))
	w.WriteUint16(first)
	w.WriteInt16(minDelta)
	w.WriteBytes(payload)
	return w.Bytes()
}

// EncodePlain renders an un-narrowed, un-paletted delta stream.
func EncodePlain(deltas []uint16) []byte {
	w := wire.NewBufferWriter(len(deltas) * 2)
	for _, d := range deltas {
		w.WriteUint16(d)
	}
	return w.Bytes()
}

// EncodeNarrow renders a narrowed delta stream: it's already one byte per
// pixel, so this is just a pass-through kept for symmetry with EncodePlain.
func EncodeNarrow(deltas []byte) []byte { return deltas }

// EncodePalette renders a paletted payload. palette holds the raw palette
// bytes: 2 per entry for a pre-narrow (uint16) palette or 1 per entry for a
// post-narrow (uint8) one.
func EncodePalette(count byte, palette []byte, indices []byte) []byte {
	w := wire.NewBufferWriter(1 + len(palette) + len(indices))
	w.WriteByte(count)
	w.WriteBytes(palette)
	w.WriteBytes(indices)
	return w.Bytes()
}

// Parse reads a frame's header and classifies its payload shape from the
// total length, given the pixel count N = width*height. For the palette
// shapes, count is read at offset 4 and the palette element width (1 or 2
// bytes) is inferred from what's left over after accounting for count and
// the N-1 index bytes; any other remainder is ErrInvalidData.
func Parse(data []byte, pixelCount int) (first uint16, minDelta int16, payload Payload, err error) {
	r := wire.NewReader(data)
	first, err = r.ReadUint16()
	if err != nil {
		return 0, 0, Payload{}, fmt.Errorf("frame: %w: %v", ErrInvalidData, err)
	}
	minDelta, err = r.ReadInt16()
	if err != nil {
		return 0, 0, Payload{}, fmt.Errorf("frame: %w: %v", ErrInvalidData, err)
	}
	rest := r.Rest()

	n := pixelCount - 1
	wideSize := 2 * n
	narrowSize := n

	switch len(rest) {
	case wideSize:
		return first, minDelta, Payload{Shape: Plain, Deltas: rest}, nil
	case narrowSize:
		return first, minDelta, Payload{Shape: Narrow, Deltas: rest}, nil
	default:
		if len(rest) < 1 {
			return 0, 0, Payload{}, ErrInvalidData
		}
		count := int(rest[0])
		remainder := rest[1:]
		if len(remainder) < n {
			return 0, 0, Payload{}, ErrInvalidData
		}
		paletteBytes := len(remainder) - n
		indices := remainder[paletteBytes:]
		switch paletteBytes {
		case 2 * count:
			return first, minDelta, Payload{
				Shape:   PalettePlain,
				Count:   byte(count),
				Palette: remainder[:paletteBytes],
				Indices: indices,
			}, nil
		case count:
			return first, minDelta, Payload{
				Shape:   PaletteNarrow,
				Count:   byte(count),
				Palette: remainder[:paletteBytes],
				Indices: indices,
			}, nil
		default:
			return 0, 0, Payload{}, ErrInvalidData
		}
	}
}
