package heightmap

import (
	"encoding/binary"
	"fmt"

	"github.com/mrjoshuak/go-heightmap/internal/entropy"
	"github.com/mrjoshuak/go-heightmap/internal/frame"
	"github.com/mrjoshuak/go-heightmap/internal/narrow"
	"github.com/mrjoshuak/go-heightmap/internal/normalize"
	"github.com/mrjoshuak/go-heightmap/internal/palette"
	"github.com/mrjoshuak/go-heightmap/internal/predictor"
)

// Decode decompresses data into a Heightmap of the given width and height,
// returning the heightmap and the number of bytes of data consumed.
//
// width and height must match the values Encode was called with; Decode
// has no way to recover them from the stream itself. Malformed or
// truncated data is reported via ErrInvalidData.
func Decode(data []byte, width, height int) (Heightmap, int, error) {
	if width < 3 || height < 3 {
		panic("heightmap: width and height must each be at least 3")
	}
	pixelCount := width * height

	framed, consumed, err := entropy.Decompress(data, headerAndPlainSize(pixelCount))
	if err != nil {
		return Heightmap{}, 0, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	first, minDelta, payload, err := frame.Parse(framed, pixelCount)
	if err != nil {
		return Heightmap{}, 0, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	deltas, err := decodePayload(payload)
	if err != nil {
		return Heightmap{}, 0, err
	}

	residual := normalize.Denormalize(minDelta, deltas)
	data16 := predictor.Inverse(first, residual, width, height)

	return Heightmap{Width: width, Height: height, Data: data16}, consumed, nil
}

// headerAndPlainSize is the frame size for the largest payload shape
// Encode can produce (un-narrowed, un-paletted), used only as a
// preallocation hint for the entropy stage.
func headerAndPlainSize(pixelCount int) int {
	return 4 + 2*(pixelCount-1)
}

func decodePayload(p frame.Payload) ([]uint16, error) {
	switch p.Shape {
	case frame.Plain:
		deltas := make([]uint16, len(p.Deltas)/2)
		for i := range deltas {
			deltas[i] = binary.LittleEndian.Uint16(p.Deltas[2*i:])
		}
		return deltas, nil

	case frame.Narrow:
		return narrow.Widen(p.Deltas), nil

	case frame.PalettePlain:
		compressed := make([]uint16, len(p.Palette)/2)
		for i := range compressed {
			compressed[i] = binary.LittleEndian.Uint16(p.Palette[2*i:])
		}
		return palette.Invert(p.Count, compressed, p.Indices), nil

	case frame.PaletteNarrow:
		narrowed := palette.Invert(p.Count, p.Palette, p.Indices)
		return narrow.Widen(narrowed), nil

	default:
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, frame.ErrInvalidData)
	}
}
