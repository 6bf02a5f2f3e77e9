package storage

import (
	"fmt"

	"github.com/arloliu/wirebin/errs"
	"github.com/arloliu/wirebin/field"
)

// RefreshCRC recomputes every RoleCRC field from the current content of the
// other fields, skipping the names listed in the field's wo-fields set.
//
// Returns:
//   - error: errs.ErrEmptyMessage on an empty storage; errs.ErrNoSuchRole if
//     the storage has no checksum field
func (s *Storage) RefreshCRC() error {
	if len(s.content) == 0 {
		return errs.ErrEmptyMessage
	}

	refreshed := false
	for _, f := range s.fields {
		if f.Struct.Role() != field.RoleCRC {
			continue
		}
		refreshed = true

		value := f.Struct.CRC16(s.crcInput(f.Name, f.Struct))
		if err := s.Change(f.Name, float64(value)); err != nil {
			return err
		}
	}

	if !refreshed {
		return fmt.Errorf("%w: crc", errs.ErrNoSuchRole)
	}

	return nil
}

// VerifyCRC checks every RoleCRC field against the recomputed checksum.
//
// Returns:
//   - error: errs.ErrCRCMismatch naming the field with stored and computed
//     values; errs.ErrEmptyMessage or errs.ErrNoSuchRole as for RefreshCRC
func (s *Storage) VerifyCRC() error {
	if len(s.content) == 0 {
		return errs.ErrEmptyMessage
	}

	checked := false
	for _, f := range s.fields {
		if f.Struct.Role() != field.RoleCRC {
			continue
		}
		checked = true

		want := f.Struct.CRC16(s.crcInput(f.Name, f.Struct))

		stored, err := s.DecodeField(f.Name)
		if err != nil {
			return err
		}
		if len(stored) != 1 {
			return fmt.Errorf(
				"%w: field %q holds %d words, expected 1", errs.ErrCRCMismatch, f.Name, len(stored),
			)
		}
		if uint16(stored[0]) != want {
			return fmt.Errorf(
				"%w: field %q stored 0x%04X, computed 0x%04X",
				errs.ErrCRCMismatch, f.Name, uint16(stored[0]), want,
			)
		}
	}

	if !checked {
		return fmt.Errorf("%w: crc", errs.ErrNoSuchRole)
	}

	return nil
}

// crcInput concatenates the content of all fields except the checksum field
// itself and its excluded names, in physical order.
func (s *Storage) crcInput(crcName string, crcStruct field.Struct) []byte {
	excluded := make(map[string]struct{})
	excluded[crcName] = struct{}{}
	for _, name := range crcStruct.CRCWoFields() {
		excluded[name] = struct{}{}
	}

	input := make([]byte, 0, len(s.content))
	for _, f := range s.fields {
		if _, skip := excluded[f.Name]; skip {
			continue
		}
		lo, hi := f.Struct.Slice().Bounds(len(s.content))
		input = append(input, s.content[lo:hi]...)
	}

	return input
}

// RefreshDataLength recomputes every RoleDataLength field from the current
// byte count of the RoleData field.
func (s *Storage) RefreshDataLength() error {
	if len(s.content) == 0 {
		return errs.ErrEmptyMessage
	}

	var data *View
	for _, f := range s.fields {
		if f.Struct.Role() == field.RoleData {
			v, _ := s.Field(f.Name)
			data = &v

			break
		}
	}
	if data == nil {
		return fmt.Errorf("%w: data", errs.ErrNoSuchRole)
	}

	refreshed := false
	for _, f := range s.fields {
		if f.Struct.Role() != field.RoleDataLength {
			continue
		}
		refreshed = true

		if err := s.Change(f.Name, float64(data.BytesCount())); err != nil {
			return err
		}
	}

	if !refreshed {
		return fmt.Errorf("%w: data_length", errs.ErrNoSuchRole)
	}

	return nil
}

// SetPayload compresses raw with the field's compression codec and splices
// the result into the field. For a field without compression the bytes are
// spliced as-is.
func (s *Storage) SetPayload(name string, raw []byte) error {
	i, ok := s.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrUnknownField, name)
	}

	codec, err := payloadCodec(s.fields[i].Struct)
	if err != nil {
		return err
	}

	packed, err := codec.Compress(raw)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	if packed == nil {
		packed = []byte{}
	}

	return s.Change(name, packed)
}

// Payload returns the decompressed content of a compressed payload field.
func (s *Storage) Payload(name string) ([]byte, error) {
	v, ok := s.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownField, name)
	}

	codec, err := payloadCodec(v.Struct())
	if err != nil {
		return nil, err
	}

	raw, err := codec.Decompress(v.Content())
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}

	return raw, nil
}
