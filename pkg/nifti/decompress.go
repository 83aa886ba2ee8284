package nifti

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// gzipMagic is the two-byte prefix of a gzip stream.
var gzipMagic = []byte{0x1f, 0x8b}

// decompress reverses an optional gzip envelope around the container bytes.
// Uncompressed input is returned unchanged. Decompression is whole-buffer;
// inputs are bounded by the surrounding application, so there is no need for
// streaming inflate.
func decompress(data []byte) ([]byte, error) {
	if len(data) < len(gzipMagic) || !bytes.Equal(data[:len(gzipMagic)], gzipMagic) {
		return data, nil
	}

	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	out, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	// Close verifies the stream checksum.
	if err := gr.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	return out, nil
}
