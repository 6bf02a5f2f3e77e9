package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/wirebin/errs"
	"github.com/arloliu/wirebin/field"
	"github.com/arloliu/wirebin/format"
)

func mustField(t *testing.T, scalar format.Scalar, opts ...field.Option) field.Struct {
	t.Helper()

	s, err := field.New(scalar, opts...)
	require.NoError(t, err)

	return s
}

// newMixed builds the reference storage: a fixed U16 head, a dynamic U8
// payload and a fixed U16 tail addressed from the end.
func newMixed(t *testing.T) *Storage {
	t.Helper()

	s, err := New("mixed", []Field{
		{Name: "f0", Struct: mustField(t, format.U16, field.WithStart(0), field.WithBytesExpected(2))},
		{Name: "f1", Struct: mustField(t, format.U8, field.WithStart(2), field.WithStop(-2))},
		{Name: "f2", Struct: mustField(t, format.U16, field.WithStart(-2))},
	})
	require.NoError(t, err)

	return s
}

func newFixed(t *testing.T) *Storage {
	t.Helper()

	s, err := New("fixed", []Field{
		{Name: "a", Struct: mustField(t, format.U32, field.WithStart(0), field.WithBytesExpected(4))},
		{Name: "b", Struct: mustField(t, format.U16, field.WithStart(4), field.WithBytesExpected(4))},
	})
	require.NoError(t, err)

	return s
}

func TestNew(t *testing.T) {
	s := newMixed(t)
	require.Equal(t, "mixed", s.Name())
	require.Equal(t, 4, s.BytesExpected())
	require.True(t, s.IsDynamic())
	require.Equal(t, []string{"f0", "f1", "f2"}, s.Names())
	require.Equal(t, 0, s.Len())

	t.Run("duplicate names", func(t *testing.T) {
		_, err := New("dup", []Field{
			{Name: "x", Struct: mustField(t, format.U8, field.WithBytesExpected(1))},
			{Name: "x", Struct: mustField(t, format.U8, field.WithStart(1), field.WithBytesExpected(1))},
		})
		require.Error(t, err)
	})

	t.Run("two dynamic fields", func(t *testing.T) {
		_, err := New("dyn2", []Field{
			{Name: "x", Struct: mustField(t, format.U8)},
			{Name: "y", Struct: mustField(t, format.U8, field.WithStart(2))},
		})
		require.ErrorIs(t, err, errs.ErrMultipleDynamicFields)
	})

	t.Run("no fields", func(t *testing.T) {
		_, err := New("empty", nil)
		require.Error(t, err)
	})
}

func TestStorage_Extract(t *testing.T) {
	t.Run("dynamic anywhere scenario", func(t *testing.T) {
		s := newMixed(t)
		err := s.Extract([]byte{0xAA, 0x55, 0x11, 0x22, 0x33, 0xDC, 0xBB})
		require.NoError(t, err)

		decoded, err := s.Decode()
		require.NoError(t, err)
		require.Equal(t, []float64{0xAA55}, decoded["f0"])
		require.Equal(t, []float64{0x11, 0x22, 0x33}, decoded["f1"])
		require.Equal(t, []float64{0xDCBB}, decoded["f2"])
	})

	t.Run("empty dynamic content", func(t *testing.T) {
		s := newMixed(t)
		require.NoError(t, s.Extract([]byte{0xAA, 0x55, 0xDC, 0xBB}))

		v, ok := s.Field("f1")
		require.True(t, ok)
		require.True(t, v.IsEmpty())
	})

	t.Run("too short", func(t *testing.T) {
		s := newFixed(t)
		err := s.Extract([]byte("1234567"))
		require.ErrorIs(t, err, errs.ErrContentTooShort)
	})

	t.Run("too long for fixed storage", func(t *testing.T) {
		s := newFixed(t)
		err := s.Extract([]byte("123456789"))
		require.ErrorIs(t, err, errs.ErrContentTooLong)
	})

	t.Run("exact fixed length", func(t *testing.T) {
		s := newFixed(t)
		require.NoError(t, s.Extract([]byte("12345678")))
		require.Equal(t, 8, s.Len())
	})

	t.Run("dynamic remainder misaligned", func(t *testing.T) {
		s, err := New("wide", []Field{
			{Name: "head", Struct: mustField(t, format.U8, field.WithStart(0), field.WithBytesExpected(1))},
			{Name: "data", Struct: mustField(t, format.U16, field.WithStart(1))},
		})
		require.NoError(t, err)

		require.ErrorIs(t, s.Extract([]byte{1, 2}), errs.ErrWordMisaligned)
		require.NoError(t, s.Extract([]byte{1, 2, 3}))
	})

	t.Run("replaces prior buffer wholesale", func(t *testing.T) {
		s := newMixed(t)
		require.NoError(t, s.Extract([]byte{1, 2, 3, 4, 5}))
		require.NoError(t, s.Extract([]byte{9, 8, 7, 6}))
		require.Equal(t, []byte{9, 8, 7, 6}, s.Content())
	})

	t.Run("does not alias caller content", func(t *testing.T) {
		s := newFixed(t)
		buf := []byte("12345678")
		require.NoError(t, s.Extract(buf))
		buf[0] = 'X'
		require.Equal(t, byte('1'), s.Content()[0])
	})
}

func TestStorage_Set(t *testing.T) {
	t.Run("all fields on empty storage", func(t *testing.T) {
		s := newMixed(t)
		err := s.Set(map[string]any{
			"f0": 0xAA55,
			"f1": []byte{0x11, 0x22, 0x33},
			"f2": []float64{0xDCBB},
		})
		require.NoError(t, err)
		require.Equal(t, []byte{0xAA, 0x55, 0x11, 0x22, 0x33, 0xDC, 0xBB}, s.Content())
	})

	t.Run("dynamic field may be omitted", func(t *testing.T) {
		s := newMixed(t)
		require.NoError(t, s.Set(map[string]any{"f0": 1, "f2": 2}))
		require.Equal(t, []byte{0x00, 0x01, 0x00, 0x02}, s.Content())
	})

	t.Run("defaulted field may be omitted", func(t *testing.T) {
		s, err := New("def", []Field{
			{Name: "sync", Struct: mustField(t, format.U8,
				field.WithStart(0), field.WithBytesExpected(1), field.WithDefault([]byte{0xA5}))},
			{Name: "value", Struct: mustField(t, format.U8, field.WithStart(1), field.WithBytesExpected(1))},
		})
		require.NoError(t, err)

		require.NoError(t, s.Set(map[string]any{"value": 7}))
		require.Equal(t, []byte{0xA5, 0x07}, s.Content())
	})

	t.Run("missing required field", func(t *testing.T) {
		s := newMixed(t)
		err := s.Set(map[string]any{"f0": 1})
		require.ErrorIs(t, err, errs.ErrMissingOrExtraFields)
		require.ErrorContains(t, err, "f2")
	})

	t.Run("unknown field name", func(t *testing.T) {
		s := newMixed(t)
		err := s.Set(map[string]any{"f0": 1, "f2": 2, "bogus": 3})
		require.ErrorIs(t, err, errs.ErrMissingOrExtraFields)
		require.ErrorContains(t, err, "bogus")
	})

	t.Run("empty values", func(t *testing.T) {
		s := newMixed(t)
		require.ErrorIs(t, s.Set(map[string]any{}), errs.ErrEmptyMessage)
	})

	t.Run("populated storage routes through change", func(t *testing.T) {
		s := newMixed(t)
		require.NoError(t, s.Set(map[string]any{"f0": 1, "f2": 2}))
		require.NoError(t, s.Set(map[string]any{"f0": 0xBEEF}))
		require.Equal(t, []byte{0xBE, 0xEF, 0x00, 0x02}, s.Content())

		err := s.Set(map[string]any{"nope": 1})
		require.ErrorIs(t, err, errs.ErrUnknownField)
	})

	t.Run("failed set leaves no partial state", func(t *testing.T) {
		s := newMixed(t)
		require.NoError(t, s.Set(map[string]any{"f0": 1, "f2": 2}))
		before := s.Content()

		err := s.Set(map[string]any{"f0": 0xBEEF, "bogus": 1})
		require.ErrorIs(t, err, errs.ErrUnknownField)
		require.Equal(t, before, s.Content(), "valid names in a failing Set must not be applied")
	})

	t.Run("value fails field verification", func(t *testing.T) {
		s := newMixed(t)
		err := s.Set(map[string]any{"f0": []byte{1}, "f2": 2})
		require.ErrorIs(t, err, errs.ErrInvalidFieldContent)
		require.ErrorContains(t, err, "f0")
	})
}

func TestStorage_Change(t *testing.T) {
	t.Run("before any content", func(t *testing.T) {
		s := newMixed(t)
		require.ErrorIs(t, s.Change("f0", 1), errs.ErrEmptyMessage)
	})

	t.Run("fixed field in place", func(t *testing.T) {
		s := newMixed(t)
		require.NoError(t, s.Extract([]byte{0, 0, 1, 2, 3, 0, 0}))
		require.NoError(t, s.Change("f2", 0xCAFE))
		require.Equal(t, []byte{0, 0, 1, 2, 3, 0xCA, 0xFE}, s.Content())
	})

	t.Run("dynamic field resizes, siblings untouched", func(t *testing.T) {
		s := newMixed(t)
		require.NoError(t, s.Set(map[string]any{"f0": 0xAA55, "f2": 0xDCBB}))
		require.NoError(t, s.Change("f1", []byte{9, 8, 7, 6, 5}))

		decoded, err := s.Decode()
		require.NoError(t, err)
		require.Equal(t, []float64{0xAA55}, decoded["f0"])
		require.Equal(t, []float64{9, 8, 7, 6, 5}, decoded["f1"])
		require.Equal(t, []float64{0xDCBB}, decoded["f2"])

		require.NoError(t, s.Change("f1", []byte{}))
		require.Equal(t, []byte{0xAA, 0x55, 0xDC, 0xBB}, s.Content())
	})

	t.Run("unknown field", func(t *testing.T) {
		s := newFixed(t)
		require.NoError(t, s.Extract([]byte("12345678")))
		require.ErrorIs(t, s.Change("zzz", 1), errs.ErrUnknownField)
	})

	t.Run("static field refuses new content", func(t *testing.T) {
		s, err := New("st", []Field{
			{Name: "sync", Struct: mustField(t, format.U8, field.WithStart(0), field.WithBytesExpected(1),
				field.WithRole(field.RoleStatic), field.WithDefault([]byte{0xA5}))},
			{Name: "value", Struct: mustField(t, format.U8, field.WithStart(1), field.WithBytesExpected(1))},
		})
		require.NoError(t, err)
		require.NoError(t, s.Set(map[string]any{"value": 1}))

		require.ErrorIs(t, s.Change("sync", 0x5A), errs.ErrStaticMismatch)
		require.NoError(t, s.Change("sync", 0xA5))
	})
}

func TestStorage_ContentIdempotence(t *testing.T) {
	s := newMixed(t)
	require.NoError(t, s.Extract([]byte{1, 2, 3, 4, 5}))

	first := s.Content()
	second := s.Content()
	require.Equal(t, first, second)

	// Content returns a copy; mutating it must not affect the storage.
	first[0] = 0xFF
	require.Equal(t, second, s.Content())
}

func TestView(t *testing.T) {
	s := newMixed(t)
	require.NoError(t, s.Extract([]byte{0xAA, 0x55, 0x11, 0x22, 0x33, 0xDC, 0xBB}))

	v, ok := s.Field("f1")
	require.True(t, ok)
	require.Equal(t, "f1", v.Name())
	require.Equal(t, []byte{0x11, 0x22, 0x33}, v.Content())
	require.Equal(t, 3, v.BytesCount())
	require.Equal(t, 3, v.WordsCount())
	require.False(t, v.IsEmpty())
	require.True(t, v.Verify([]byte{1}))

	values, err := v.Decode()
	require.NoError(t, err)
	require.Equal(t, []float64{0x11, 0x22, 0x33}, values)

	_, ok = s.Field("missing")
	require.False(t, ok)

	views := s.Views()
	require.Len(t, views, 3)
	require.Equal(t, "f0", views[0].Name())

	t.Run("view reads through after extract", func(t *testing.T) {
		require.NoError(t, s.Extract([]byte{1, 2, 0xDC, 0xBB}))
		require.True(t, v.IsEmpty(), "dynamic field is empty in the new buffer")
	})
}

func TestStorage_DecodeField(t *testing.T) {
	s := newFixed(t)
	require.NoError(t, s.Extract([]byte{0, 0, 0, 9, 0, 1, 0, 2}))

	values, err := s.DecodeField("a")
	require.NoError(t, err)
	require.Equal(t, []float64{9}, values)

	values, err = s.DecodeField("b")
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, values)

	_, err = s.DecodeField("zzz")
	require.ErrorIs(t, err, errs.ErrUnknownField)
}
