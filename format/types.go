package format

type (
	Scalar          uint8
	CompressionType uint8
)

const (
	U8  Scalar = 0x1 // U8 is an unsigned 8-bit integer word.
	U16 Scalar = 0x2 // U16 is an unsigned 16-bit integer word.
	U24 Scalar = 0x3 // U24 is an unsigned 24-bit integer word.
	U32 Scalar = 0x4 // U32 is an unsigned 32-bit integer word.
	I8  Scalar = 0x5 // I8 is a signed 8-bit integer word.
	I16 Scalar = 0x6 // I16 is a signed 16-bit integer word.
	I32 Scalar = 0x7 // I32 is a signed 32-bit integer word.
	F32 Scalar = 0x8 // F32 is an IEEE 754 single-precision word.
	F64 Scalar = 0x9 // F64 is an IEEE 754 double-precision word.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// WordSize returns the number of bytes in one word of the format.
// It returns 0 for an unknown format.
func (s Scalar) WordSize() int {
	switch s {
	case U8, I8:
		return 1
	case U16, I16:
		return 2
	case U24:
		return 3
	case U32, I32, F32:
		return 4
	case F64:
		return 8
	default:
		return 0
	}
}

// IsValid reports whether the format is one of the defined scalar formats.
func (s Scalar) IsValid() bool {
	return s.WordSize() != 0
}

// IsFloat reports whether the format is a floating-point format.
func (s Scalar) IsFloat() bool {
	return s == F32 || s == F64
}

// IsSigned reports whether the format is a signed integer format.
func (s Scalar) IsSigned() bool {
	return s == I8 || s == I16 || s == I32
}

func (s Scalar) String() string {
	switch s {
	case U8:
		return "U8"
	case U16:
		return "U16"
	case U24:
		return "U24"
	case U32:
		return "U32"
	case I8:
		return "I8"
	case I16:
		return "I16"
	case I32:
		return "I32"
	case F32:
		return "F32"
	case F64:
		return "F64"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
