// Package entropy wraps the zstd entropy coder used as the final stage of
// the heightmap pipeline. It keeps encoders and decoders in sync.Pools for
// reuse, and maps the codec's small integer level range onto zstd's own
// encoder levels.
//
// Compress pledges the uncompressed size into the zstd frame header (via
// Encoder.ResetContentSize) so a frame is fully self-describing on the
// decode side. klauspost's public encoder/decoder options have no
// equivalent of the reference encoder's magic-byte suppression, so every
// frame still carries zstd's 4-byte magic number; see DESIGN.md for why
// that gap is accepted rather than worked around.
//
// Each frame Compress returns is prefixed with its own 4-byte
// little-endian length, because klauspost's Decoder has no way to report
// how many compressed bytes a single decoded frame consumed (DecodeAll
// decodes every frame found in its input, not just the first). Decompress
// reads that prefix to slice out exactly one frame before handing it to
// DecodeAll, which is what lets it report an exact consumed-byte count
// back to the caller.
package entropy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrCorrupted is returned when compressed data cannot be decoded.
var ErrCorrupted = errors.New("entropy: corrupted data")

// windowSize bounds the match-finding window at 16 MiB, matching the
// window size the reference implementation configures.
const windowSize = 1 << 24

// MinLevel and MaxLevel bound the caller-facing compression level, matching
// the native zstd level scale (negative levels trade ratio for speed).
const (
	MinLevel = -7
	MaxLevel = 22
)

// encoderLevel buckets the codec's fine-grained [-7, 22] level parameter
// onto klauspost/compress/zstd's four coarse EncoderLevel presets, which is
// all its public encoder option surface exposes.
func encoderLevel(level int) zstd.EncoderLevel {
	switch {
	case level < 0:
		return zstd.SpeedFastest
	case level <= 3:
		return zstd.SpeedDefault
	case level <= 12:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

type encoderPoolItem struct {
	enc *zstd.Encoder
	buf *bytes.Buffer
}

// encoderPools is keyed by EncoderLevel since a pooled *zstd.Encoder can't
// change its configured level on Reset.
var encoderPools sync.Map // zstd.EncoderLevel -> *sync.Pool

func encoderPool(level zstd.EncoderLevel) *sync.Pool {
	if p, ok := encoderPools.Load(level); ok {
		return p.(*sync.Pool)
	}
	p := &sync.Pool{
		New: func() any {
			buf := new(bytes.Buffer)
			enc, err := zstd.NewWriter(buf,
				zstd.WithEncoderLevel(level),
				zstd.WithWindowSize(windowSize),
				zstd.WithEncoderCRC(false),
			)
			if err != nil {
				// Only returns an error for invalid options, which are
				// fixed at compile time above.
				panic(err)
			}
			return &encoderPoolItem{enc: enc, buf: buf}
		},
	}
	actual, _ := encoderPools.LoadOrStore(level, p)
	return actual.(*sync.Pool)
}

// lengthPrefixSize is the width of the compressed-frame-length prefix
// Compress writes ahead of each zstd frame.
const lengthPrefixSize = 4

// Compress encodes src at the given level ([MinLevel, MaxLevel]) and
// returns a length-prefixed compressed frame. level is assumed already
// validated by the caller; it is not re-checked here.
func Compress(src []byte, level int) ([]byte, error) {
	pool := encoderPool(encoderLevel(level))
	item := pool.Get().(*encoderPoolItem)
	defer pool.Put(item)

	item.buf.Reset()
	item.enc.ResetContentSize(item.buf, int64(len(src)))

	if _, err := item.enc.Write(src); err != nil {
		return nil, err
	}
	if err := item.enc.Close(); err != nil {
		return nil, err
	}

	frame := item.buf.Bytes()
	out := make([]byte, lengthPrefixSize+len(frame))
	binary.LittleEndian.PutUint32(out, uint32(len(frame)))
	copy(out[lengthPrefixSize:], frame)
	return out, nil
}

var decoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxWindow(windowSize),
		)
		if err != nil {
			panic(err)
		}
		return dec
	},
}

// Decompress reverses Compress, consuming a single length-prefixed frame
// from the front of src and reporting how many bytes of src — prefix
// included — that frame occupied. sizeHint preallocates the destination
// buffer; it need not be exact (pass 0 if the decompressed length isn't
// known in advance).
func Decompress(src []byte, sizeHint int) ([]byte, int, error) {
	if len(src) < lengthPrefixSize {
		return nil, 0, fmt.Errorf("%w: truncated length prefix", ErrCorrupted)
	}
	frameLen := binary.LittleEndian.Uint32(src)
	if uint64(frameLen) > uint64(len(src)-lengthPrefixSize) {
		return nil, 0, fmt.Errorf("%w: frame length exceeds available data", ErrCorrupted)
	}
	frame := src[lengthPrefixSize : lengthPrefixSize+int(frameLen)]

	dec := decoderPool.Get().(*zstd.Decoder)
	defer decoderPool.Put(dec)

	dst := make([]byte, 0, sizeHint)
	dst, err := dec.DecodeAll(frame, dst)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return dst, lengthPrefixSize + int(frameLen), nil
}
