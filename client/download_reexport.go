package client

import (
	"hash"

	"github.com/adamwoolhether/verifetch/client/download"
)

// ————————————————————————————————————————————————————————————————————
// Type aliases – re-export user-facing types from [download].
// ————————————————————————————————————————————————————————————————————

type (
	// DownloadOption is a functional option for [Client.Download].
	DownloadOption = download.Option

	// DownloadError wraps a sentinel error with additional detail.
	DownloadError = download.Error

	// Codec identifies the decoder applied to a download.
	Codec = download.Codec
)

// ————————————————————————————————————————————————————————————————————
// Sentinel errors
// ————————————————————————————————————————————————————————————————————

var (
	// ErrChecksumMismatch indicates the digest of the raw bytes did not match the expected value.
	ErrChecksumMismatch = download.ErrChecksumMismatch

	// ErrContentLengthMismatch indicates the byte count did not match Content-Length.
	ErrContentLengthMismatch = download.ErrContentLengthMismatch

	// ErrDecode indicates a compressed payload was malformed.
	ErrDecode = download.ErrDecode

	// ErrDownloadCancelled indicates the download was cancelled via context.
	ErrDownloadCancelled = download.ErrDownloadCancelled
)

// ————————————————————————————————————————————————————————————————————
// Download option forwarding functions
// ————————————————————————————————————————————————————————————————————

// WithChecksum enables digest validation of the raw downloaded bytes.
// h is a [hash.Hash] instance (e.g. sha256.New()), and expected is the
// hex-encoded expected digest.
func WithChecksum(h hash.Hash, expected string) DownloadOption {
	return download.WithChecksum(h, expected)
}

// WithProgress reports transfer progress to p.
func WithProgress(p download.Progress) DownloadOption { return download.WithProgress(p) }

// WithSkipExisting causes a download to return nil immediately when
// the destination file already exists.
func WithSkipExisting() DownloadOption { return download.WithSkipExisting() }

// WithCodec decodes the body with c before it is written.
func WithCodec(c Codec) DownloadOption { return download.WithCodec(c) }

// WithLZ4 encodes the written output as an LZ4 frame.
func WithLZ4() DownloadOption { return download.WithLZ4() }
