// Package compress implements the payload codecs available to bulk data
// fields.
//
// Instrument protocols occasionally move large payloads through the dynamic
// data field (waveform uploads, memory dumps). Such a field may declare a
// compression type; the storage then routes payload bytes through the
// matching codec on the way in and out of the buffer. Frame geometry is
// untouched: the compressed bytes are ordinary field content.
package compress

import (
	"fmt"

	"github.com/arloliu/wirebin/format"
)

// Compressor compresses a payload.
//
// Memory management:
//   - The returned slice is newly allocated and owned by the caller
//   - The input slice is not modified
//   - Internal buffers may be reused between calls
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload previously compressed with the same
// algorithm. It validates the data format and returns an error if the data
// is corrupted or uses an incompatible format.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. Implementations are stateless values and
// safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

// NewCodec returns the codec implementing the given compression type.
//
// Parameters:
//   - comp: Compression type from the field declaration
//
// Returns:
//   - Codec: Matching codec; CompressionNone yields the no-op codec
//   - error: Unknown compression type
func NewCodec(comp format.CompressionType) (Codec, error) {
	switch comp {
	case format.CompressionNone:
		return NewNoopCodec(), nil
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	case format.CompressionS2:
		return NewS2Codec(), nil
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("unknown compression type: %d", uint8(comp))
	}
}
