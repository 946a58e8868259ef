package download

import (
	"errors"
	"fmt"
)

var (
	// ErrChecksumMismatch indicates the digest of the downloaded bytes
	// did not match the expected value.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrContentLengthMismatch indicates the raw byte count did not
	// match the Content-Length header.
	ErrContentLengthMismatch = errors.New("content length mismatch")
	// ErrDecode indicates the compressed payload could not be decoded.
	ErrDecode = errors.New("decode failed")
	// ErrDownloadCancelled indicates the download was cancelled via context.
	ErrDownloadCancelled = errors.New("download cancelled")
)

type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}
