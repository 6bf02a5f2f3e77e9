// Package endian provides byte order utilities for binary field encoding and
// decoding.
//
// The package combines the ByteOrder and AppendByteOrder interfaces of the
// standard encoding/binary package into a single EndianEngine interface, and
// adds an Order enum used by field declarations. Instrument protocols are
// usually specified in big-endian ("network") order, so Order's helpers treat
// big-endian as the common case, while OrderNative resolves to whatever the
// host uses.
//
// # Basic Usage
//
//	engine := endian.OrderBig.Engine()
//	value := engine.Uint16(buf[0:2])
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order
// operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian
// from the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Order identifies the byte order of a field declaration.
type Order uint8

const (
	OrderBig    Order = 0x1 // OrderBig is big-endian (network) order.
	OrderLittle Order = 0x2 // OrderLittle is little-endian order.
	OrderNative Order = 0x3 // OrderNative is the byte order of the host.
)

// IsValid reports whether the order is one of the defined values.
func (o Order) IsValid() bool {
	return o == OrderBig || o == OrderLittle || o == OrderNative
}

// Resolve maps OrderNative to the concrete host order; OrderBig and
// OrderLittle are returned unchanged.
func (o Order) Resolve() Order {
	if o != OrderNative {
		return o
	}
	if CheckEndianness() == binary.BigEndian {
		return OrderBig
	}

	return OrderLittle
}

// Engine returns the EndianEngine implementing the order.
// OrderNative is resolved against the host byte order.
func (o Order) Engine() EndianEngine {
	if o.Resolve() == OrderBig {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func (o Order) String() string {
	switch o {
	case OrderBig:
		return "BigEndian"
	case OrderLittle:
		return "LittleEndian"
	case OrderNative:
		return "Native"
	default:
		return "Unknown"
	}
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	// For a big-endian system, the MSB (0x01) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}
