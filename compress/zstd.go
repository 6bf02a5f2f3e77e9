package compress

// ZstdCodec implements Zstandard compression for payload fields. Zstd trades
// speed for ratio, the usual pick for archival dumps pulled off a device once.
//
// Two implementations back this type: a cgo build uses valyala/gozstd
// (bindings to libzstd), and a pure-Go build falls back to
// klauspost/compress/zstd. Both produce interoperable frames.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new Zstd payload codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
