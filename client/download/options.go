package download

import (
	"errors"
	"hash"
)

// Option defines optional settings for downloading files.
//
// WithChecksum enables digest validation of the raw downloaded bytes.
// h is a hash.Hash instance (e.g. sha256.New()), and expected is the
// hex-encoded expected digest.
//
// WithProgress reports transfer progress to p, keyed by the label set
// with WithLabel (the base name of the destination by default).
//
// WithSkipExisting causes Handle to return nil immediately when
// the destination file already exists, avoiding a redundant download.
//
// WithCodec decodes the body with c before writing it.
//
// WithLZ4 encodes the written output as an LZ4 frame.
//
// WithRateLimit caps the raw read rate in bytes per second.
type Option func(*options) error

type options struct {
	hash         hash.Hash
	expected     string
	progress     Progress
	label        string
	skipExisting bool
	codec        Codec
	lz4          bool
	rateLimit    int
}

func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.hash = h
		opts.expected = expected
		return nil
	}
}

func WithProgress(p Progress) Option {
	return func(opts *options) error {
		if p == nil {
			return errors.New("progress must not be nil")
		}

		opts.progress = p
		return nil
	}
}

func WithLabel(name string) Option {
	return func(opts *options) error {
		opts.label = name
		return nil
	}
}

func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}

func WithCodec(c Codec) Option {
	return func(opts *options) error {
		if _, ok := decoders[c]; !ok {
			return errors.New("unsupported codec " + c.String())
		}

		opts.codec = c
		return nil
	}
}

func WithLZ4() Option {
	return func(opts *options) error {
		opts.lz4 = true
		return nil
	}
}

func WithRateLimit(bytesPerSecond int) Option {
	return func(opts *options) error {
		if bytesPerSecond < 0 {
			return errors.New("rate limit must not be negative")
		}

		opts.rateLimit = bytesPerSecond
		return nil
	}
}
