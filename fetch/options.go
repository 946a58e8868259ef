package fetch

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/verifetch/client/download"
)

// Option is a functional option for configuring a [Fetcher] via [New].
type Option func(*options) error

type options struct {
	logger    *slog.Logger
	progress  download.Progress
	mode      Mode
	digest    string
	rateLimit int
	tp        trace.TracerProvider
}

// WithLogger sets the logger for run and per-file messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithProgress sends per-file transfer progress to p.
func WithProgress(p download.Progress) Option {
	return func(o *options) error {
		if p == nil {
			return errors.New("progress must not be nil")
		}
		o.progress = p
		return nil
	}
}

// WithMode sets the compression mode. The default is ModeDefault.
func WithMode(m Mode) Option {
	return func(o *options) error {
		if m > ModeLZ4 {
			return ErrUnknownMode
		}
		o.mode = m
		return nil
	}
}

// WithDigest selects the manifest digest algorithm, "sha256" or "blake3".
func WithDigest(name string) Option {
	return func(o *options) error {
		if _, err := newHash(name); err != nil {
			return err
		}
		o.digest = name
		return nil
	}
}

// WithRateLimit caps each download at bytesPerSecond. Zero disables the limit.
func WithRateLimit(bytesPerSecond int) Option {
	return func(o *options) error {
		if bytesPerSecond < 0 {
			return errors.New("rate limit must not be negative")
		}
		o.rateLimit = bytesPerSecond
		return nil
	}
}

// WithTracerProvider sets the provider for per-file spans. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) error {
		if tp == nil {
			return errors.New("tracer provider must not be nil")
		}
		o.tp = tp
		return nil
	}
}
