package compress

// NoopCodec passes payload bytes through unchanged. It backs fields declared
// without compression, and is handy as a baseline in benchmarks.
type NoopCodec struct{}

var _ Codec = (*NoopCodec)(nil)

// NewNoopCodec creates a new pass-through codec.
func NewNoopCodec() NoopCodec {
	return NoopCodec{}
}

// Compress returns the input slice as-is, without processing or copying.
// The returned slice shares memory with the input.
func (c NoopCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is, without processing or copying.
// The returned slice shares memory with the input.
func (c NoopCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
