package archiveplugin

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression identifies a stream codec.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

var magics = []struct {
	prefix []byte
	kind   Compression
}{
	{[]byte{0x1f, 0x8b}, CompressionGzip},
	{[]byte("BZh"), CompressionBzip2},
	{[]byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, CompressionXZ},
	{[]byte{0x28, 0xb5, 0x2f, 0xfd}, CompressionZstd},
}

// Sniff identifies the codec from the first bytes of a stream.
func Sniff(header []byte) Compression {
	for _, m := range magics {
		if bytes.HasPrefix(header, m.prefix) {
			return m.kind
		}
	}
	return CompressionNone
}

// FromName guesses the codec from a file name or URL.
func FromName(name string) Compression {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, ".tar.gz"), strings.Contains(lower, ".tgz"), strings.HasSuffix(lower, ".gz"):
		return CompressionGzip
	case strings.Contains(lower, ".tar.bz2"), strings.Contains(lower, ".tbz2"), strings.HasSuffix(lower, ".bz2"):
		return CompressionBzip2
	case strings.Contains(lower, ".tar.xz"), strings.Contains(lower, ".txz"), strings.HasSuffix(lower, ".xz"):
		return CompressionXZ
	case strings.Contains(lower, ".tar.zst"), strings.HasSuffix(lower, ".zst"):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// Decompress sniffs r and returns a reader over the decoded stream.
// Uncompressed input is passed through.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(6)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	return NewReader(br, Sniff(header))
}

// NewReader wraps r with the decoder for kind.
func NewReader(r io.Reader, kind Compression) (io.ReadCloser, error) {
	switch kind {
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionBzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return io.NopCloser(xr), nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}
