package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/wirebin/errs"
	"github.com/arloliu/wirebin/field"
	"github.com/arloliu/wirebin/format"
)

// newFramed builds a message with the common role set: address, operation,
// data length, dynamic data and a trailing checksum.
func newFramed(t *testing.T) *Storage {
	t.Helper()

	s, err := New("framed", []Field{
		{Name: "addr", Struct: mustField(t, format.U8,
			field.WithStart(0), field.WithBytesExpected(1), field.WithRole(field.RoleAddress))},
		{Name: "oper", Struct: mustField(t, format.U8,
			field.WithStart(1), field.WithBytesExpected(1), field.WithRole(field.RoleOperation))},
		{Name: "dlen", Struct: mustField(t, format.U8,
			field.WithStart(2), field.WithBytesExpected(1), field.WithRole(field.RoleDataLength))},
		{Name: "data", Struct: mustField(t, format.U8,
			field.WithStart(3), field.WithStop(-2), field.WithRole(field.RoleData))},
		{Name: "crc", Struct: mustField(t, format.U16,
			field.WithStart(-2), field.WithBytesExpected(2), field.WithRole(field.RoleCRC))},
	})
	require.NoError(t, err)

	return s
}

func TestStorage_CRC(t *testing.T) {
	t.Run("known checksum", func(t *testing.T) {
		s, err := New("check", []Field{
			{Name: "data", Struct: mustField(t, format.U8,
				field.WithStart(0), field.WithStop(-2), field.WithRole(field.RoleData))},
			{Name: "crc", Struct: mustField(t, format.U16,
				field.WithStart(-2), field.WithBytesExpected(2), field.WithRole(field.RoleCRC))},
		})
		require.NoError(t, err)

		require.NoError(t, s.Set(map[string]any{"data": []byte("123456789"), "crc": 0}))
		require.NoError(t, s.RefreshCRC())

		stored, err := s.DecodeField("crc")
		require.NoError(t, err)
		require.Equal(t, []float64{0x31C3}, stored)
		require.NoError(t, s.VerifyCRC())
	})

	t.Run("refresh then verify round-trip", func(t *testing.T) {
		s := newFramed(t)
		require.NoError(t, s.Set(map[string]any{
			"addr": 0x11, "oper": field.DescWrite, "dlen": 3,
			"data": []byte{1, 2, 3}, "crc": 0,
		}))
		require.NoError(t, s.RefreshCRC())
		require.NoError(t, s.VerifyCRC())

		// Corrupting any covered field invalidates the checksum.
		require.NoError(t, s.Change("addr", 0x12))
		err := s.VerifyCRC()
		require.ErrorIs(t, err, errs.ErrCRCMismatch)
		require.ErrorContains(t, err, "stored 0x")
		require.ErrorContains(t, err, "computed 0x")
	})

	t.Run("excluded fields do not affect the checksum", func(t *testing.T) {
		s, err := New("wo", []Field{
			{Name: "id", Struct: mustField(t, format.U8,
				field.WithStart(0), field.WithBytesExpected(1), field.WithRole(field.RoleID))},
			{Name: "data", Struct: mustField(t, format.U8,
				field.WithStart(1), field.WithStop(-2), field.WithRole(field.RoleData))},
			{Name: "crc", Struct: mustField(t, format.U16,
				field.WithStart(-2), field.WithBytesExpected(2),
				field.WithRole(field.RoleCRC), field.WithCRCWoFields("id"))},
		})
		require.NoError(t, err)

		require.NoError(t, s.Set(map[string]any{"id": 1, "data": []byte{5, 6}, "crc": 0}))
		require.NoError(t, s.RefreshCRC())
		before, err := s.DecodeField("crc")
		require.NoError(t, err)

		require.NoError(t, s.Change("id", 0xFF))
		require.NoError(t, s.VerifyCRC())

		after, err := s.DecodeField("crc")
		require.NoError(t, err)
		require.Equal(t, before, after)
	})

	t.Run("empty storage", func(t *testing.T) {
		s := newFramed(t)
		require.ErrorIs(t, s.RefreshCRC(), errs.ErrEmptyMessage)
		require.ErrorIs(t, s.VerifyCRC(), errs.ErrEmptyMessage)
	})

	t.Run("no checksum field", func(t *testing.T) {
		s := newMixed(t)
		require.NoError(t, s.Extract([]byte{1, 2, 3, 4}))
		require.ErrorIs(t, s.RefreshCRC(), errs.ErrNoSuchRole)
		require.ErrorIs(t, s.VerifyCRC(), errs.ErrNoSuchRole)
	})
}

func TestStorage_RefreshDataLength(t *testing.T) {
	t.Run("tracks data byte count", func(t *testing.T) {
		s := newFramed(t)
		require.NoError(t, s.Set(map[string]any{
			"addr": 1, "oper": field.DescRead, "dlen": 0,
			"data": []byte{1, 2, 3, 4, 5}, "crc": 0,
		}))
		require.NoError(t, s.RefreshDataLength())

		dlen, err := s.DecodeField("dlen")
		require.NoError(t, err)
		require.Equal(t, []float64{5}, dlen)

		require.NoError(t, s.Change("data", []byte{}))
		require.NoError(t, s.RefreshDataLength())

		dlen, err = s.DecodeField("dlen")
		require.NoError(t, err)
		require.Equal(t, []float64{0}, dlen)
	})

	t.Run("no data field", func(t *testing.T) {
		s := newMixed(t)
		require.NoError(t, s.Extract([]byte{1, 2, 3, 4}))
		require.ErrorIs(t, s.RefreshDataLength(), errs.ErrNoSuchRole)
	})

	t.Run("empty storage", func(t *testing.T) {
		s := newFramed(t)
		require.ErrorIs(t, s.RefreshDataLength(), errs.ErrEmptyMessage)
	})
}

func TestStorage_Payload(t *testing.T) {
	newPayload := func(t *testing.T, comp format.CompressionType) *Storage {
		t.Helper()

		opts := []field.Option{field.WithStart(1), field.WithRole(field.RoleData)}
		if comp != format.CompressionNone {
			opts = append(opts, field.WithCompression(comp))
		}

		s, err := New("payload", []Field{
			{Name: "head", Struct: mustField(t, format.U8, field.WithStart(0), field.WithBytesExpected(1))},
			{Name: "body", Struct: mustField(t, format.U8, opts...)},
		})
		require.NoError(t, err)
		require.NoError(t, s.Set(map[string]any{"head": 1}))

		return s
	}

	raw := bytes.Repeat([]byte("wirebin payload "), 64)

	for _, comp := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionLZ4,
		format.CompressionS2,
		format.CompressionZstd,
	} {
		t.Run(comp.String(), func(t *testing.T) {
			s := newPayload(t, comp)
			require.NoError(t, s.SetPayload("body", raw))

			got, err := s.Payload("body")
			require.NoError(t, err)
			require.Equal(t, raw, got)

			if comp != format.CompressionNone {
				v, ok := s.Field("body")
				require.True(t, ok)
				require.Less(t, v.BytesCount(), len(raw))
			}
		})
	}

	t.Run("without compression bytes pass through", func(t *testing.T) {
		s := newPayload(t, format.CompressionNone)
		require.NoError(t, s.SetPayload("body", []byte{1, 2, 3}))

		v, ok := s.Field("body")
		require.True(t, ok)
		require.Equal(t, []byte{1, 2, 3}, v.Content())
	})

	t.Run("unknown field", func(t *testing.T) {
		s := newPayload(t, format.CompressionNone)
		require.ErrorIs(t, s.SetPayload("zzz", nil), errs.ErrUnknownField)
		_, err := s.Payload("zzz")
		require.ErrorIs(t, err, errs.ErrUnknownField)
	})
}
