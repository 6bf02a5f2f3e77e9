// Package codec implements the scalar word codec: packing and unpacking of
// fixed-width numeric words to and from bytes.
//
// Word values travel as float64. Every value of the supported formats
// (integers up to 32 bits and IEEE 754 floats) is exactly representable in a
// float64, which keeps the API to a single value type without losing
// precision. Integer formats are strictly range checked: a value that is not
// integral or does not fit the target width fails with
// errs.ErrValueOutOfRange instead of wrapping around.
package codec

import (
	"fmt"
	"math"

	"github.com/arloliu/wirebin/endian"
	"github.com/arloliu/wirebin/errs"
	"github.com/arloliu/wirebin/format"
)

// Encode packs values into bytes, one word of scalar per value, concatenated
// in sequence order.
//
// Parameters:
//   - values: Word values to pack
//   - scalar: Word format
//   - order: Byte order for intra-word arrangement
//
// Returns:
//   - []byte: Packed content, len(values)*WordSize bytes
//   - error: errs.ErrValueOutOfRange if a value cannot be represented
func Encode(values []float64, scalar format.Scalar, order endian.Order) ([]byte, error) {
	if !scalar.IsValid() {
		return nil, fmt.Errorf("invalid scalar format: %d", uint8(scalar))
	}

	buf := make([]byte, 0, len(values)*scalar.WordSize())
	engine := order.Engine()
	bigEndian := order.Resolve() == endian.OrderBig

	for i, value := range values {
		if !scalar.IsFloat() {
			if err := checkIntRange(value, scalar); err != nil {
				return nil, fmt.Errorf("%w: values[%d]=%v", err, i, value)
			}
		}

		switch scalar {
		case format.U8, format.I8:
			buf = append(buf, byte(toUint(value, 8)))
		case format.U16, format.I16:
			buf = engine.AppendUint16(buf, uint16(toUint(value, 16)))
		case format.U24:
			buf = appendUint24(buf, uint32(value), bigEndian)
		case format.U32, format.I32:
			buf = engine.AppendUint32(buf, uint32(toUint(value, 32)))
		case format.F32:
			buf = engine.AppendUint32(buf, math.Float32bits(float32(value)))
		case format.F64:
			buf = engine.AppendUint64(buf, math.Float64bits(value))
		}
	}

	return buf, nil
}

// EncodeOne packs a single word value.
func EncodeOne(value float64, scalar format.Scalar, order endian.Order) ([]byte, error) {
	return Encode([]float64{value}, scalar, order)
}

// Decode unpacks bytes into word values, the inverse of Encode.
//
// Parameters:
//   - data: Packed content, must be a whole number of words
//   - scalar: Word format
//   - order: Byte order for intra-word arrangement
//
// Returns:
//   - []float64: Unpacked word values
//   - error: errs.ErrWordMisaligned if len(data) is not a multiple of the word size
func Decode(data []byte, scalar format.Scalar, order endian.Order) ([]float64, error) {
	if !scalar.IsValid() {
		return nil, fmt.Errorf("invalid scalar format: %d", uint8(scalar))
	}

	wordSize := scalar.WordSize()
	if len(data)%wordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes, word size %d", errs.ErrWordMisaligned, len(data), wordSize)
	}

	values := make([]float64, 0, len(data)/wordSize)
	engine := order.Engine()
	bigEndian := order.Resolve() == endian.OrderBig

	for off := 0; off < len(data); off += wordSize {
		word := data[off : off+wordSize]

		switch scalar {
		case format.U8:
			values = append(values, float64(word[0]))
		case format.I8:
			values = append(values, float64(int8(word[0])))
		case format.U16:
			values = append(values, float64(engine.Uint16(word)))
		case format.I16:
			values = append(values, float64(int16(engine.Uint16(word))))
		case format.U24:
			values = append(values, float64(uint24(word, bigEndian)))
		case format.U32:
			values = append(values, float64(engine.Uint32(word)))
		case format.I32:
			values = append(values, float64(int32(engine.Uint32(word))))
		case format.F32:
			values = append(values, float64(math.Float32frombits(engine.Uint32(word))))
		case format.F64:
			values = append(values, math.Float64frombits(engine.Uint64(word)))
		}
	}

	return values, nil
}

var intRanges = map[format.Scalar][2]float64{
	format.U8:  {0, math.MaxUint8},
	format.U16: {0, math.MaxUint16},
	format.U24: {0, 1<<24 - 1},
	format.U32: {0, math.MaxUint32},
	format.I8:  {math.MinInt8, math.MaxInt8},
	format.I16: {math.MinInt16, math.MaxInt16},
	format.I32: {math.MinInt32, math.MaxInt32},
}

func checkIntRange(value float64, scalar format.Scalar) error {
	if value != math.Trunc(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: not an integer for %s", errs.ErrValueOutOfRange, scalar)
	}

	bounds := intRanges[scalar]
	if value < bounds[0] || value > bounds[1] {
		return fmt.Errorf("%w: %s accepts [%v, %v]", errs.ErrValueOutOfRange, scalar, bounds[0], bounds[1])
	}

	return nil
}

// toUint converts an in-range value to its two's complement representation of
// the given bit width. The range check must already have passed.
func toUint(value float64, bits int) uint64 {
	v := int64(value)

	return uint64(v) & (1<<bits - 1)
}

// appendUint24 packs the low 24 bits of v. The standard binary package has no
// 24-bit accessors, so the byte shuffle is done by hand.
func appendUint24(buf []byte, v uint32, bigEndian bool) []byte {
	if bigEndian {
		return append(buf, byte(v>>16), byte(v>>8), byte(v))
	}

	return append(buf, byte(v), byte(v>>8), byte(v>>16))
}

func uint24(word []byte, bigEndian bool) uint32 {
	if bigEndian {
		return uint32(word[0])<<16 | uint32(word[1])<<8 | uint32(word[2])
	}

	return uint32(word[2])<<16 | uint32(word[1])<<8 | uint32(word[0])
}
