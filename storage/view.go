package storage

import "github.com/arloliu/wirebin/field"

// View exposes one field of a storage. A view holds no content of its own:
// every access reads through to the storage's current buffer, so a view
// obtained before an Extract observes the new buffer afterwards.
type View struct {
	storage *Storage
	name    string
	fs      field.Struct
}

// Name returns the field name.
func (v View) Name() string { return v.name }

// Struct returns the field structure.
func (v View) Struct() field.Struct { return v.fs }

// Content returns a copy of the field's slice of the buffer.
func (v View) Content() []byte {
	lo, hi := v.fs.Slice().Bounds(len(v.storage.content))

	return append([]byte(nil), v.storage.content[lo:hi]...)
}

// Decode unpacks the field content into word values.
func (v View) Decode() ([]float64, error) {
	return v.fs.Decode(v.Content())
}

// Verify reports whether content fits the field structure.
func (v View) Verify(content []byte) bool {
	return v.fs.Verify(content)
}

// BytesCount returns the current byte count of the field content.
func (v View) BytesCount() int {
	lo, hi := v.fs.Slice().Bounds(len(v.storage.content))

	return hi - lo
}

// WordsCount returns the current word count of the field content.
func (v View) WordsCount() int {
	return v.BytesCount() / v.fs.WordSize()
}

// IsEmpty reports whether the field currently holds no content.
func (v View) IsEmpty() bool {
	return v.BytesCount() == 0
}
