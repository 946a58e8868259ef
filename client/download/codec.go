package download

import (
	"fmt"
	"io"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Codec identifies the compression format of a downloaded file, chosen
// by filename suffix.
type Codec uint8

const (
	// CodecNone passes bytes through unchanged.
	CodecNone Codec = iota
	CodecBzip2
	CodecXZ
	CodecZstd
)

// maxZstdWindow bounds the zstd window size. Archive dumps are commonly
// compressed with --long=31, which needs a 2 GiB window.
const maxZstdWindow = 2 << 30

var suffixes = []struct {
	suffix string
	codec  Codec
}{
	{".bz2", CodecBzip2},
	{".xz", CodecXZ},
	{".zst", CodecZstd},
}

type decoderFunc func(io.Reader) (io.ReadCloser, error)

var decoders = map[Codec]decoderFunc{
	CodecNone: func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	},
	CodecBzip2: func(r io.Reader) (io.ReadCloser, error) {
		return bzip2.NewReader(r, nil)
	},
	CodecXZ: func(r io.Reader) (io.ReadCloser, error) {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	},
	CodecZstd: func(r io.Reader) (io.ReadCloser, error) {
		// A single decoder goroutine keeps reads of r on the caller's
		// goroutine, so r is never touched after Close returns.
		dec, err := zstd.NewReader(r,
			zstd.WithDecoderMaxWindow(maxZstdWindow),
			zstd.WithDecoderConcurrency(1),
		)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	},
}

// CodecFor selects the codec matching the suffix of name.
func CodecFor(name string) Codec {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s.suffix) {
			return s.codec
		}
	}

	return CodecNone
}

// String returns the human-readable name of a codec.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecBzip2:
		return "bzip2"
	case CodecXZ:
		return "xz"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// NewDecoder returns a reader yielding the decoded contents of r.
// Construction errors wrap [ErrDecode].
func NewDecoder(c Codec, r io.Reader) (io.ReadCloser, error) {
	fn, ok := decoders[c]
	if !ok {
		return nil, fmt.Errorf("unsupported codec: %s", c)
	}

	rc, err := fn(r)
	if err != nil {
		return nil, &Error{Err: ErrDecode, Detail: fmt.Sprintf("%s: %v", c, err)}
	}

	return rc, nil
}

// decodingReader tags read errors from a decoder as decode failures,
// unless the source stream itself failed first.
type decodingReader struct {
	codec  Codec
	rc     io.ReadCloser
	source interface{ Err() error }
}

func (d *decodingReader) Read(p []byte) (int, error) {
	n, err := d.rc.Read(p)
	if err == nil || err == io.EOF {
		return n, err
	}

	if srcErr := d.source.Err(); srcErr != nil {
		return n, srcErr
	}

	return n, &Error{Err: ErrDecode, Detail: fmt.Sprintf("%s: %v", d.codec, err)}
}

func (d *decodingReader) Close() error {
	return d.rc.Close()
}
