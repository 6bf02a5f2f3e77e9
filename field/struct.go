// Package field implements the field structure: the geometry and codec
// contract of one named, contiguous region of a message buffer.
//
// A Struct is an immutable value object created by New. Its geometry is
// described by three interdependent parameters: a signed start offset, a
// signed stop offset, and an expected byte count. Exactly one consistent
// combination must be given; New derives the missing parameters and rejects
// conflicting or impossible ones. A field with no fixed byte count is
// dynamic: it matches any content length that is a whole number of words, and
// its concrete extent is known only once the total message length is.
package field

import (
	"fmt"

	"github.com/arloliu/wirebin/codec"
	"github.com/arloliu/wirebin/endian"
	"github.com/arloliu/wirebin/errs"
	"github.com/arloliu/wirebin/format"
	"github.com/arloliu/wirebin/internal/options"
)

// Struct describes one field's byte geometry and word codec. The zero value
// is not usable; construct with New.
type Struct struct {
	start         int
	stop          int
	stopOpen      bool
	bytesExpected int
	scalar        format.Scalar
	order         endian.Order
	def           []byte

	role        Role
	crcPoly     uint16
	crcInit     uint16
	crcWoFields []string
	descs       map[int]Desc
	descsR      map[Desc]int
	compression format.CompressionType
}

type config struct {
	start         int
	stop          int
	stopSet       bool
	bytesExpected int
	order         endian.Order
	def           []byte

	role        Role
	crcPoly     uint16
	crcInit     uint16
	crcSet      bool
	crcWoFields []string
	descs       map[int]Desc
	compression format.CompressionType
}

// Option configures a field Struct during construction.
type Option = options.Option[*config]

// WithStart sets the start byte offset. Negative values count from the end of
// the message.
func WithStart(start int) Option {
	return options.NoError(func(c *config) { c.start = start })
}

// WithStop sets the stop byte offset. Negative values count from the end of
// the message. Mutually exclusive with WithBytesExpected.
func WithStop(stop int) Option {
	return options.NoError(func(c *config) {
		c.stop = stop
		c.stopSet = true
	})
}

// WithBytesExpected sets the fixed byte count of the field. Zero or negative
// marks the field dynamic.
func WithBytesExpected(n int) Option {
	return options.NoError(func(c *config) { c.bytesExpected = n })
}

// WithOrder sets the byte order. The default is endian.OrderBig, the common
// case for instrument protocols.
func WithOrder(order endian.Order) Option {
	return options.New(func(c *config) error {
		if !order.IsValid() {
			return fmt.Errorf("invalid byte order: %d", uint8(order))
		}
		c.order = order

		return nil
	})
}

// WithDefault sets the default content used when the field is omitted from a
// field-by-field encode.
func WithDefault(def []byte) Option {
	return options.NoError(func(c *config) {
		c.def = append([]byte(nil), def...)
	})
}

// WithRole tags the field with a protocol role.
func WithRole(role Role) Option {
	return options.NoError(func(c *config) { c.role = role })
}

// WithCRC sets the checksum polynomial and initial value for a RoleCRC field.
func WithCRC(poly, init uint16) Option {
	return options.NoError(func(c *config) {
		c.crcPoly = poly
		c.crcInit = init
		c.crcSet = true
	})
}

// WithCRCWoFields names sibling fields excluded from the checksum input.
func WithCRCWoFields(names ...string) Option {
	return options.NoError(func(c *config) {
		c.crcWoFields = append([]string(nil), names...)
	})
}

// WithDescs sets the value lookup table of a RoleOperation or RoleResponse
// field.
func WithDescs(descs map[int]Desc) Option {
	return options.NoError(func(c *config) {
		c.descs = make(map[int]Desc, len(descs))
		for v, d := range descs {
			c.descs[v] = d
		}
	})
}

// WithCompression enables payload compression for a dynamic single-byte-word
// field.
func WithCompression(comp format.CompressionType) Option {
	return options.NoError(func(c *config) { c.compression = comp })
}

// New constructs an immutable field Struct.
//
// Geometry validation happens in a fixed order: a zero stop is rejected
// first, then a simultaneous explicit stop and positive byte count, then a
// negative start that overruns the buffer head; afterwards the missing one of
// stop and byte count is derived, and finally the byte count must be a whole
// number of words.
//
// Parameters:
//   - scalar: Word format of the field content
//   - opts: Geometry, order, default and role options
//
// Returns:
//   - Struct: Immutable field structure
//   - error: Construction errors from the errs package
func New(scalar format.Scalar, opts ...Option) (Struct, error) {
	if !scalar.IsValid() {
		return Struct{}, fmt.Errorf("invalid scalar format: %d", uint8(scalar))
	}

	cfg := config{
		order:       endian.OrderBig,
		role:        RoleBasic,
		compression: format.CompressionNone,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return Struct{}, err
	}

	if err := verifyBeforeDerive(&cfg); err != nil {
		return Struct{}, err
	}
	stopOpen, err := deriveGeometry(&cfg)
	if err != nil {
		return Struct{}, err
	}
	if cfg.bytesExpected%scalar.WordSize() != 0 {
		return Struct{}, fmt.Errorf(
			"%w: %d bytes, word size %d",
			errs.ErrWordSizeMismatch, cfg.bytesExpected, scalar.WordSize(),
		)
	}

	s := Struct{
		start:         cfg.start,
		stop:          cfg.stop,
		stopOpen:      stopOpen,
		bytesExpected: cfg.bytesExpected,
		scalar:        scalar,
		order:         cfg.order,
		def:           cfg.def,
		role:          cfg.role,
		crcPoly:       cfg.crcPoly,
		crcInit:       cfg.crcInit,
		crcWoFields:   cfg.crcWoFields,
		descs:         cfg.descs,
		compression:   cfg.compression,
	}

	if err := s.verifyRole(cfg.crcSet); err != nil {
		return Struct{}, err
	}

	if s.HasDefault() && !s.Verify(s.def) {
		return Struct{}, fmt.Errorf(
			"%w: default '% x' does not fit the field", errs.ErrInvalidFieldContent, s.def,
		)
	}

	s.descsR = make(map[Desc]int, len(s.descs))
	for v, d := range s.descs {
		s.descsR[d] = v
	}

	return s, nil
}

func verifyBeforeDerive(cfg *config) error {
	if cfg.stopSet && cfg.stop == 0 {
		return errs.ErrZeroStop
	}
	if cfg.stopSet && cfg.bytesExpected > 0 {
		return errs.ErrStopConflict
	}
	if cfg.start < 0 && cfg.start > -cfg.bytesExpected {
		return fmt.Errorf(
			"%w: start %d, %d bytes expected", errs.ErrStartOutOfBounds, cfg.start, cfg.bytesExpected,
		)
	}

	return nil
}

// deriveGeometry fills in whichever of stop and bytesExpected was omitted.
// It reports whether the stop offset is open (extends to the buffer end).
func deriveGeometry(cfg *config) (stopOpen bool, err error) {
	if cfg.bytesExpected < 0 {
		cfg.bytesExpected = 0
	}

	switch {
	case cfg.bytesExpected > 0:
		stop := cfg.start + cfg.bytesExpected
		if stop == 0 {
			// The field ends exactly at the buffer end.
			return true, nil
		}
		cfg.stop = stop

		return false, nil

	case cfg.stopSet:
		if cfg.start >= 0 && cfg.stop < 0 {
			// The range spans the unresolved middle of the message: dynamic.
			return false, nil
		}
		if cfg.start < 0 && cfg.stop > 0 {
			// A tail field cannot end at a head offset.
			return false, fmt.Errorf(
				"%w: start %d with stop %d", errs.ErrStartOutOfBounds, cfg.start, cfg.stop,
			)
		}
		if cfg.stop <= cfg.start {
			return false, fmt.Errorf(
				"%w: stop %d is not after start %d", errs.ErrStartOutOfBounds, cfg.stop, cfg.start,
			)
		}
		cfg.bytesExpected = cfg.stop - cfg.start

		return false, nil

	case cfg.start <= 0:
		// No stop and no byte count: a zero start is dynamic to the buffer
		// end, a negative start is a fixed tail field.
		cfg.bytesExpected = -cfg.start

		return true, nil

	default:
		// Positive start with nothing else: dynamic to the buffer end.
		return true, nil
	}
}

func (s *Struct) verifyRole(crcSet bool) error {
	switch s.role {
	case RoleCRC:
		if !crcSet {
			s.crcPoly = 0x1021
			s.crcInit = 0
		}
		// Only CRC-16/XMODEM has been verified against real devices.
		if s.bytesExpected != 2 || s.crcPoly != 0x1021 || s.crcInit != 0 {
			return fmt.Errorf(
				"%w: crc not implemented for poly=0x%04X init=0x%04X size=%d",
				errs.ErrInvalidRoleParams, s.crcPoly, s.crcInit, s.bytesExpected,
			)
		}

	case RoleStatic:
		if !s.HasDefault() {
			return fmt.Errorf("%w: static field requires a default", errs.ErrInvalidRoleParams)
		}

	case RoleOperation:
		if s.descs == nil {
			s.descs = map[int]Desc{0: DescRead, 1: DescWrite}
		}
	}

	if s.role.IsSingleWord() && s.WordsExpected() != 1 {
		return fmt.Errorf(
			"%w: role %s requires exactly one word, got %d",
			errs.ErrInvalidRoleParams, s.role, s.WordsExpected(),
		)
	}

	if s.compression != format.CompressionNone {
		if !s.IsDynamic() || s.scalar.WordSize() != 1 {
			return fmt.Errorf("%w: %s field", errs.ErrInvalidCompression, s.scalar)
		}
	}

	return nil
}

// Encode packs word values with the field's format and order.
func (s Struct) Encode(values []float64) ([]byte, error) {
	return codec.Encode(values, s.scalar, s.order)
}

// Decode unpacks content with the field's format and order.
func (s Struct) Decode(content []byte) ([]float64, error) {
	return codec.Decode(content, s.scalar, s.order)
}

// Verify reports whether content length fits the field: an exact match for a
// fixed field, any whole number of words for a dynamic one.
func (s Struct) Verify(content []byte) bool {
	if s.IsDynamic() {
		return len(content)%s.scalar.WordSize() == 0
	}

	return len(content) == s.bytesExpected
}

// Slice returns the byte range the field occupies in its owning buffer.
func (s Struct) Slice() Slice {
	return Slice{Start: s.start, Stop: s.stop, Open: s.stopOpen}
}

// Start returns the signed start byte offset.
func (s Struct) Start() int { return s.start }

// Stop returns the signed stop byte offset. ok is false when the field is
// open ended and extends to the end of the buffer.
func (s Struct) Stop() (stop int, ok bool) {
	return s.stop, !s.stopOpen
}

// BytesExpected returns the fixed byte count, or 0 for a dynamic field.
func (s Struct) BytesExpected() int { return s.bytesExpected }

// WordsExpected returns the fixed word count, or 0 for a dynamic field.
func (s Struct) WordsExpected() int {
	return s.bytesExpected / s.scalar.WordSize()
}

// WordSize returns the byte count of one word.
func (s Struct) WordSize() int { return s.scalar.WordSize() }

// Scalar returns the word format.
func (s Struct) Scalar() format.Scalar { return s.scalar }

// Order returns the byte order.
func (s Struct) Order() endian.Order { return s.order }

// IsDynamic reports whether the field has no fixed byte count.
func (s Struct) IsDynamic() bool { return s.bytesExpected == 0 }

// HasDefault reports whether the field carries default content.
func (s Struct) HasDefault() bool { return len(s.def) != 0 }

// Default returns a copy of the default content.
func (s Struct) Default() []byte {
	return append([]byte(nil), s.def...)
}

// Role returns the protocol role tag.
func (s Struct) Role() Role { return s.role }

// Compression returns the payload compression type.
func (s Struct) Compression() format.CompressionType { return s.compression }

// CRCWoFields returns the sibling field names excluded from the checksum.
func (s Struct) CRCWoFields() []string {
	return append([]string(nil), s.crcWoFields...)
}

// CRC16 calculates the checksum of content with the field's polynomial and
// initial value. Meaningful only for RoleCRC fields.
func (s Struct) CRC16(content []byte) uint16 {
	crc := uint32(s.crcInit)
	for _, b := range content {
		crc ^= uint32(b) << 8
		for range 8 {
			crc <<= 1
			if crc&0x10000 != 0 {
				crc ^= uint32(s.crcPoly)
			}
			crc &= 0xFFFF
		}
	}

	return uint16(crc)
}

// Desc resolves a word value through the field's lookup table, returning
// DescUndefined for unmapped values.
func (s Struct) Desc(value int) Desc {
	d, ok := s.descs[value]
	if !ok {
		return DescUndefined
	}

	return d
}

// DescValue is the reverse of Desc.
func (s Struct) DescValue(d Desc) (value int, ok bool) {
	value, ok = s.descsR[d]

	return value, ok
}

// EncodeDesc packs the word value mapped to d.
func (s Struct) EncodeDesc(d Desc) ([]byte, error) {
	value, ok := s.DescValue(d)
	if !ok {
		return nil, fmt.Errorf("%w: cannot encode %s", errs.ErrValueOutOfRange, d)
	}

	return s.Encode([]float64{float64(value)})
}
