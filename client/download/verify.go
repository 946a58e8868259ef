package download

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"
)

// VerifyingReader hashes every byte it yields and, once the wrapped
// reader reports io.EOF, compares the hex digest to the expected value.
// The comparison happens exactly once. Errors other than io.EOF from the
// wrapped reader are passed through without checking the digest.
// With a nil hash it only counts bytes.
type VerifyingReader struct {
	r        io.Reader
	hash     hash.Hash
	expected string
	onRead   func(n int)

	n        int64
	err      error
	verified bool
}

// NewVerifyingReader wraps r. onRead, if non-nil, is called with the size
// of every non-empty chunk read from r.
func NewVerifyingReader(r io.Reader, h hash.Hash, expected string, onRead func(n int)) *VerifyingReader {
	return &VerifyingReader{
		r:        r,
		hash:     h,
		expected: strings.ToLower(expected),
		onRead:   onRead,
	}
}

func (v *VerifyingReader) Read(p []byte) (int, error) {
	if v.err != nil {
		return 0, v.err
	}

	n, err := v.r.Read(p)
	if n > 0 {
		if v.hash != nil {
			v.hash.Write(p[:n])
		}
		v.n += int64(n)
		if v.onRead != nil {
			v.onRead(n)
		}
	}

	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		v.err = v.check()
	default:
		v.err = err
	}

	// Hand back any bytes from the final read before reporting the
	// terminal state on the next call.
	if n > 0 {
		return n, nil
	}

	return 0, v.err
}

func (v *VerifyingReader) check() error {
	if v.hash == nil {
		return io.EOF
	}

	actual := hex.EncodeToString(v.hash.Sum(nil))
	if actual != v.expected {
		return &Error{
			Err:    ErrChecksumMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", v.expected, actual),
		}
	}

	v.verified = true

	return io.EOF
}

// Count reports the number of bytes read so far.
func (v *VerifyingReader) Count() int64 { return v.n }

// Verified reports whether end of stream was reached with a matching digest.
func (v *VerifyingReader) Verified() bool { return v.verified }

// Err returns the terminal error of the wrapped stream, if any. A clean,
// verified end of stream and an unfinished stream both return nil.
func (v *VerifyingReader) Err() error {
	if v.err == io.EOF {
		return nil
	}

	return v.err
}
