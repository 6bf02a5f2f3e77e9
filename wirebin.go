// Package wirebin provides a declarative binary message-framing engine for
// instrument and device communication protocols.
//
// A message is described as an ordered sequence of typed, byte-addressed
// fields (address, operation code, data length, payload, CRC, response
// status). Field layouts are derived from declarative patterns and
// encoded/decoded at runtime with strict layout invariants: the fields of a
// message tile its buffer exactly once, in order, with no gaps and no
// overlap. One field per message may be dynamic, its length known only once
// the full message length is; it may sit anywhere in the field order, because
// the fields behind it are addressed from the buffer end.
//
// # Basic Usage
//
// Declaring a request format and encoding a message:
//
//	import "github.com/arloliu/wirebin"
//
//	addr, _ := wirebin.NewAddressField(format.U8)
//	oper, _ := wirebin.NewOperationField(format.U8)
//	data, _ := wirebin.NewDataField(format.U8)
//	crc, _ := wirebin.NewCRCField()
//
//	msg, _ := wirebin.NewMessagePattern("request")
//	msg.Configure(
//	    pattern.Sub{Name: "address", Pattern: addr},
//	    pattern.Sub{Name: "operation", Pattern: oper},
//	    pattern.Sub{Name: "data", Pattern: data},
//	    pattern.Sub{Name: "crc", Pattern: crc},
//	)
//
//	st, _ := msg.GetDefault()
//	_ = st.Set(map[string]any{"address": 0x1A, "operation": 1, "data": []byte{1, 2, 3}, "crc": 0})
//	_ = st.RefreshCRC()
//	frame := st.Content() // raw bytes for the transport layer
//
// Decoding a received frame:
//
//	st, _ = msg.GetDefault()
//	_ = st.Extract(frame)
//	values, _ := st.Decode()
//
// # Package Structure
//
// This package provides convenient field-pattern constructors around the
// pattern package. For fine-grained control use the codec, field, layout,
// storage and pattern packages directly.
package wirebin

import (
	"github.com/arloliu/wirebin/field"
	"github.com/arloliu/wirebin/format"
	"github.com/arloliu/wirebin/pattern"
)

// NewMessagePattern creates an empty continuous message pattern.
// Attach fields with Configure; their order is the physical field order.
func NewMessagePattern(name string) (*pattern.StoragePattern, error) {
	return pattern.New("continuous", name, pattern.Params{})
}

// NewBasicField creates a plain field pattern of a fixed byte count.
// A non-positive count marks the field dynamic.
func NewBasicField(scalar format.Scalar, bytesExpected int) (*pattern.FieldPattern, error) {
	return pattern.NewField("basic", pattern.Params{
		"fmt":            scalar,
		"bytes_expected": bytesExpected,
	})
}

// NewSingleField creates a single-word field pattern.
func NewSingleField(scalar format.Scalar) (*pattern.FieldPattern, error) {
	return pattern.NewField("single", pattern.Params{
		"fmt":            scalar,
		"bytes_expected": scalar.WordSize(),
	})
}

// NewStaticField creates a single-word field pattern fixed to its default
// content, e.g. a preamble.
func NewStaticField(scalar format.Scalar, def []byte) (*pattern.FieldPattern, error) {
	return pattern.NewField("static", pattern.Params{
		"fmt":            scalar,
		"bytes_expected": scalar.WordSize(),
		"default":        def,
	})
}

// NewAddressField creates a register/memory address field pattern.
func NewAddressField(scalar format.Scalar) (*pattern.FieldPattern, error) {
	return pattern.NewField("address", pattern.Params{
		"fmt":            scalar,
		"bytes_expected": scalar.WordSize(),
	})
}

// NewDataField creates a dynamic payload field pattern.
func NewDataField(scalar format.Scalar) (*pattern.FieldPattern, error) {
	return pattern.NewField("data", pattern.Params{
		"fmt": scalar,
	})
}

// NewCompressedDataField creates a dynamic payload field pattern whose
// content is compressed with the given codec. The word format must be a
// single-byte format.
func NewCompressedDataField(scalar format.Scalar, comp format.CompressionType) (*pattern.FieldPattern, error) {
	return pattern.NewField("data", pattern.Params{
		"fmt":         scalar,
		"compression": comp,
	})
}

// NewDataLengthField creates a field pattern holding the byte count of the
// data field; refresh it with storage.RefreshDataLength.
func NewDataLengthField(scalar format.Scalar) (*pattern.FieldPattern, error) {
	return pattern.NewField("data_length", pattern.Params{
		"fmt":            scalar,
		"bytes_expected": scalar.WordSize(),
	})
}

// NewIDField creates a message sequence identifier field pattern.
func NewIDField(scalar format.Scalar) (*pattern.FieldPattern, error) {
	return pattern.NewField("id", pattern.Params{
		"fmt":            scalar,
		"bytes_expected": scalar.WordSize(),
	})
}

// NewOperationField creates an operation-code field pattern with the default
// lookup table {0: read, 1: write}.
func NewOperationField(scalar format.Scalar) (*pattern.FieldPattern, error) {
	return pattern.NewField("operation", pattern.Params{
		"fmt":            scalar,
		"bytes_expected": scalar.WordSize(),
	})
}

// NewResponseField creates a response-status field pattern with the given
// value lookup table.
func NewResponseField(scalar format.Scalar, descs map[int]field.Desc) (*pattern.FieldPattern, error) {
	return pattern.NewField("response", pattern.Params{
		"fmt":            scalar,
		"bytes_expected": scalar.WordSize(),
		"descs":          descs,
	})
}

// NewCRCField creates a CRC-16/XMODEM checksum field pattern (U16, poly
// 0x1021, init 0); refresh it with storage.RefreshCRC.
func NewCRCField() (*pattern.FieldPattern, error) {
	return pattern.NewField("crc", pattern.Params{
		"fmt":            format.U16,
		"bytes_expected": 2,
	})
}
