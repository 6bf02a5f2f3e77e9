// Package storage implements the message storage: an ordered, named
// collection of field structures bound to one contiguous byte buffer.
//
// The storage owns its buffer exclusively. Fields are views into the buffer
// at their resolved byte ranges, not independent copies; changing a field
// rewrites the corresponding slice of the buffer in place. Fields behind the
// dynamic field are addressed from the buffer end, so their views stay
// correct when the dynamic field grows or shrinks.
package storage

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/arloliu/wirebin/compress"
	"github.com/arloliu/wirebin/errs"
	"github.com/arloliu/wirebin/field"
	"github.com/arloliu/wirebin/format"
)

// Field pairs a name with its field structure; the order of a Field slice is
// the physical field order of the message.
type Field struct {
	Name   string
	Struct field.Struct
}

// Storage is one message instance: resolved field structures plus the byte
// buffer they address. Not safe for concurrent mutation.
type Storage struct {
	name    string
	fields  []Field
	index   map[string]int
	content []byte
	minSize int
	dynamic int // index of the dynamic field, -1 if none
}

// New creates an empty storage from resolved fields.
//
// Parameters:
//   - name: Storage (message format) name
//   - fields: Fields in physical order, offsets already resolved
//
// Returns:
//   - *Storage: Empty storage; bind content with Extract or Set
//   - error: Duplicate field names, or errs.ErrMultipleDynamicFields
func New(name string, fields []Field) (*Storage, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("storage %q has no fields", name)
	}

	s := &Storage{
		name:    name,
		fields:  append([]Field(nil), fields...),
		index:   make(map[string]int, len(fields)),
		dynamic: -1,
	}

	for i, f := range s.fields {
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field name %q", f.Name)
		}
		s.index[f.Name] = i

		if f.Struct.IsDynamic() {
			if s.dynamic != -1 {
				return nil, fmt.Errorf(
					"%w: %q and %q", errs.ErrMultipleDynamicFields, s.fields[s.dynamic].Name, f.Name,
				)
			}
			s.dynamic = i
		} else {
			s.minSize += f.Struct.BytesExpected()
		}
	}

	return s, nil
}

// Extract binds content as the storage buffer, replacing any prior buffer
// wholesale. The content is copied; the caller keeps ownership of its slice.
//
// Returns:
//   - error: errs.ErrContentTooShort if content is shorter than the fixed
//     minimum; errs.ErrContentTooLong if the storage has no dynamic field and
//     content is longer than the fixed total; errs.ErrWordMisaligned if the
//     dynamic remainder is not a whole number of words
func (s *Storage) Extract(content []byte) error {
	if len(content) < s.minSize {
		return fmt.Errorf("%w: %d bytes, expected at least %d", errs.ErrContentTooShort, len(content), s.minSize)
	}
	if s.dynamic == -1 && len(content) > s.minSize {
		return fmt.Errorf("%w: %d bytes, expected %d", errs.ErrContentTooLong, len(content), s.minSize)
	}
	if s.dynamic != -1 {
		wordSize := s.fields[s.dynamic].Struct.WordSize()
		if (len(content)-s.minSize)%wordSize != 0 {
			return fmt.Errorf(
				"%w: dynamic field %q gets %d bytes, word size %d",
				errs.ErrWordMisaligned, s.fields[s.dynamic].Name, len(content)-s.minSize, wordSize,
			)
		}
	}

	s.content = append([]byte(nil), content...)

	return nil
}

// Set encodes field values into the storage.
//
// On an empty storage every required field (fixed size, no default) must be
// present; dynamic fields default to empty content and defaulted fields to
// their default. On a populated storage each named field is changed in place
// and the rest stay untouched.
//
// Accepted value types per field: []byte (raw content), float64, []float64,
// int, []int and field.Desc (resolved through the field's lookup table).
func (s *Storage) Set(values map[string]any) error {
	if len(values) == 0 {
		return errs.ErrEmptyMessage
	}

	if len(s.content) == 0 {
		return s.setAll(values)
	}

	// Validate every name before the first change; a failing Set must not
	// leave partially applied values behind.
	for name := range values {
		if _, ok := s.index[name]; !ok {
			return fmt.Errorf("%w: %q", errs.ErrUnknownField, name)
		}
	}

	for _, f := range s.fields {
		value, ok := values[f.Name]
		if !ok {
			continue
		}
		if err := s.Change(f.Name, value); err != nil {
			return err
		}
	}

	return nil
}

// Change re-encodes the content of one field and splices it into the buffer
// at the field's current byte range. Changing a dynamic field resizes the
// buffer; from-the-end addressing keeps all following fields in place.
func (s *Storage) Change(name string, value any) error {
	if len(s.content) == 0 {
		return errs.ErrEmptyMessage
	}

	i, ok := s.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrUnknownField, name)
	}
	fs := s.fields[i].Struct

	enc, err := s.encodeValue(name, fs, value)
	if err != nil {
		return err
	}

	if fs.Role() == field.RoleStatic && !bytes.Equal(enc, fs.Default()) {
		return fmt.Errorf("%w: %q", errs.ErrStaticMismatch, name)
	}

	lo, hi := fs.Slice().Bounds(len(s.content))
	if len(enc) == hi-lo {
		copy(s.content[lo:hi], enc)

		return nil
	}

	grown := make([]byte, 0, len(s.content)-(hi-lo)+len(enc))
	grown = append(grown, s.content[:lo]...)
	grown = append(grown, enc...)
	grown = append(grown, s.content[hi:]...)
	s.content = grown

	return nil
}

// Decode decodes every field in order.
func (s *Storage) Decode() (map[string][]float64, error) {
	decoded := make(map[string][]float64, len(s.fields))
	for _, f := range s.fields {
		values, err := s.DecodeField(f.Name)
		if err != nil {
			return nil, err
		}
		decoded[f.Name] = values
	}

	return decoded, nil
}

// DecodeField decodes the content of one field.
func (s *Storage) DecodeField(name string) ([]float64, error) {
	v, ok := s.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownField, name)
	}

	return v.Decode()
}

// Content returns a copy of the full buffer.
func (s *Storage) Content() []byte {
	return append([]byte(nil), s.content...)
}

// Len returns the byte count of the buffer.
func (s *Storage) Len() int { return len(s.content) }

// Name returns the storage name.
func (s *Storage) Name() string { return s.name }

// BytesExpected returns the fixed total byte count, the minimal buffer length
// when the storage has a dynamic field.
func (s *Storage) BytesExpected() int { return s.minSize }

// IsDynamic reports whether the storage has a dynamic field.
func (s *Storage) IsDynamic() bool { return s.dynamic != -1 }

// Names returns the field names in physical order.
func (s *Storage) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}

	return names
}

// Field returns a view of one field. Views are derived from the current
// buffer on every access and must not be retained across Extract calls.
func (s *Storage) Field(name string) (View, bool) {
	i, ok := s.index[name]
	if !ok {
		return View{}, false
	}

	return View{storage: s, name: name, fs: s.fields[i].Struct}, true
}

// Views returns views of all fields in physical order.
func (s *Storage) Views() []View {
	views := make([]View, len(s.fields))
	for i, f := range s.fields {
		views[i] = View{storage: s, name: f.Name, fs: f.Struct}
	}

	return views
}

func (s *Storage) setAll(values map[string]any) error {
	if err := s.checkFieldSet(values); err != nil {
		return err
	}

	buf := make([]byte, 0, s.minSize)
	for _, f := range s.fields {
		value, ok := values[f.Name]
		switch {
		case ok:
			enc, err := s.encodeValue(f.Name, f.Struct, value)
			if err != nil {
				return err
			}
			buf = append(buf, enc...)
		case f.Struct.HasDefault():
			buf = append(buf, f.Struct.Default()...)
		case f.Struct.IsDynamic():
			// Dynamic fields default to empty content.
		default:
			return fmt.Errorf("%w: %q", errs.ErrMissingOrExtraFields, f.Name)
		}
	}

	s.content = buf

	return nil
}

// checkFieldSet verifies that values covers exactly the required fields:
// no unknown names, and nothing missing that has neither a default nor a
// dynamic size.
func (s *Storage) checkFieldSet(values map[string]any) error {
	var bad []string
	for name := range values {
		if _, ok := s.index[name]; !ok {
			bad = append(bad, name)
		}
	}
	for _, f := range s.fields {
		if _, ok := values[f.Name]; ok {
			continue
		}
		if f.Struct.HasDefault() || f.Struct.IsDynamic() {
			continue
		}
		bad = append(bad, f.Name)
	}

	if len(bad) != 0 {
		sort.Strings(bad)

		return fmt.Errorf("%w: %s", errs.ErrMissingOrExtraFields, joinQuoted(bad))
	}

	return nil
}

func (s *Storage) encodeValue(name string, fs field.Struct, value any) ([]byte, error) {
	var (
		enc []byte
		err error
	)

	switch v := value.(type) {
	case []byte:
		enc = v
	case float64:
		enc, err = fs.Encode([]float64{v})
	case []float64:
		enc, err = fs.Encode(v)
	case int:
		enc, err = fs.Encode([]float64{float64(v)})
	case []int:
		values := make([]float64, len(v))
		for i, n := range v {
			values[i] = float64(n)
		}
		enc, err = fs.Encode(values)
	case field.Desc:
		enc, err = fs.EncodeDesc(v)
	default:
		return nil, fmt.Errorf("unsupported value type %T for field %q", value, name)
	}
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}

	if !fs.Verify(enc) {
		return nil, fmt.Errorf("%w %q: '% x'", errs.ErrInvalidFieldContent, name, enc)
	}

	return enc, nil
}

func joinQuoted(names []string) string {
	buf := make([]byte, 0, 16*len(names))
	for i, name := range names {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, '\'')
		buf = append(buf, name...)
		buf = append(buf, '\'')
	}

	return string(buf)
}

// payloadCodec returns the compression codec of a field, or an error if the
// field does not carry compressed payload.
func payloadCodec(fs field.Struct) (compress.Codec, error) {
	if fs.Compression() == format.CompressionNone {
		return compress.NewNoopCodec(), nil
	}

	return compress.NewCodec(fs.Compression())
}
