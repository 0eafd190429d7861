// Package experimental implements the non-canonical alternate entropy
// branch: routing the predictor's residual grid through a picture codec
// instead of the zstd entropy stage. It exists for comparison and is not
// used by the default encode/decode path.
//
// The residual values (post min-delta normalization, pre byte-narrowing)
// are biased back into an unsigned 16-bit grid and handed to a lossless
// JPEG 2000 encode, trading the predictor's second-order structure for
// the wavelet transform's own spatial redundancy.
package experimental

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/mrjoshuak/go-jpeg2000"
)

// ErrDimensionMismatch is returned when a decoded picture's bounds don't
// match the width and height the caller expects.
var ErrDimensionMismatch = errors.New("experimental: decoded dimensions do not match")

// EncodePicture renders width x height normalized deltas (each already
// biased into [0, 65535] the way the normalize package leaves them, i.e.
// a straight uint16 reinterpretation) as a lossless JPEG 2000 codestream.
func EncodePicture(deltas []uint16, width, height int) ([]byte, error) {
	if len(deltas) != width*height {
		panic("experimental: deltas does not match width*height")
	}

	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := deltas[y*width+x]
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}

	var buf bytes.Buffer
	opts := &jpeg2000.Options{
		Format:           jpeg2000.FormatJ2K,
		Lossless:         true,
		NumResolutions:   6,
		ProgressionOrder: jpeg2000.LRCP,
		NumLayers:        1,
		ColorSpace:       jpeg2000.ColorSpaceGray,
	}
	if err := jpeg2000.Encode(&buf, img, opts); err != nil {
		return nil, fmt.Errorf("experimental: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePicture reverses EncodePicture.
func DecodePicture(data []byte, width, height int) ([]uint16, error) {
	img, err := jpeg2000.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("experimental: decode: %w", err)
	}

	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return nil, ErrDimensionMismatch
	}

	gray, ok := img.(*image.Gray16)
	if !ok {
		gray = image.NewGray16(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				gray.Set(x, y, img.At(x, y))
			}
		}
	}

	deltas := make([]uint16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			deltas[y*width+x] = gray.Gray16At(b.Min.X+x, b.Min.Y+y).Y
		}
	}
	return deltas, nil
}
