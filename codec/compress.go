package codec

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Compressor shrinks encoded payloads before storage.
// Implementations must be safe for concurrent use.
type Compressor interface {
	// Compress returns the compressed form of data.
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress.
	Decompress(data []byte) ([]byte, error)

	// Name identifies the compressor in export documents.
	Name() string
}

// Gzip compresses with compress/gzip at the default level.
type Gzip struct{}

// Compress implements Compressor.
func (Gzip) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress implements Compressor.
func (Gzip) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Name implements Compressor.
func (Gzip) Name() string { return "gzip" }

// Zstd compresses with Zstandard. Better ratio and speed than gzip on the
// repetitive JSON/MessagePack blobs full-state snapshots produce.
type Zstd struct{}

// Compress implements Compressor.
func (Zstd) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// Decompress implements Compressor.
func (Zstd) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// Name implements Compressor.
func (Zstd) Name() string { return "zstd" }

// CompressorByName returns the compressor registered under name.
func CompressorByName(name string) (Compressor, bool) {
	switch name {
	case "gzip":
		return Gzip{}, true
	case "zstd":
		return Zstd{}, true
	default:
		return nil, false
	}
}
