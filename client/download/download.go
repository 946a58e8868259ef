package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"

	"github.com/adamwoolhether/verifetch/client/throttle"
)

// chunkSize is the copy buffer size between the network and the file.
const chunkSize = 32 << 10

// Handle streams body through digest verification and the optional
// decoder into a temp file next to destPath, renaming it on success.
// On any error the temp file is removed and destPath is not created.
func Handle(ctx context.Context, body io.Reader, contentLength int64, destPath string, logger *slog.Logger, optFns ...Option) error {
	opts := options{progress: NopProgress{}}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return fmt.Errorf("applying option: %w", err)
		}
	}

	if logger == nil {
		logger = slog.Default()
	}
	if opts.label == "" {
		opts.label = filepath.Base(destPath)
	}

	if opts.skipExisting {
		if _, err := os.Stat(destPath); err == nil {
			logger.Info("exists, skipping", "path", destPath)
			return nil
		}
	}

	var src io.Reader = &contextReader{ctx: ctx, r: body}
	if opts.rateLimit > 0 {
		tr, err := throttle.NewReader(ctx, src, opts.rateLimit)
		if err != nil {
			return fmt.Errorf("configuring rate limit: %w", err)
		}
		src = tr
	}

	opts.progress.Begin(opts.label, contentLength)
	verified := NewVerifyingReader(src, opts.hash, opts.expected, func(n int) {
		opts.progress.Advance(opts.label, int64(n))
	})

	err := stream(verified, contentLength, destPath, logger, opts)
	opts.progress.End(opts.label, err)

	return err
}

func stream(verified *VerifyingReader, contentLength int64, destPath string, logger *slog.Logger, opts options) (err error) {
	af, err := CreateAtomic(destPath)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if abortErr := af.Abort(); abortErr != nil {
				logger.Error("failed to remove temp file", "path", af.Name(), "error", abortErr)
			}
		}
	}()

	var writer io.Writer = af
	var lzw *lz4.Writer
	if opts.lz4 {
		lzw = lz4.NewWriter(af)
		writer = lzw
	}

	var reader io.Reader = verified
	if opts.codec != CodecNone {
		rc, err := NewDecoder(opts.codec, verified)
		if err != nil {
			return sourceErr(err, verified)
		}
		defer rc.Close()

		reader = &decodingReader{codec: opts.codec, rc: rc, source: verified}
	}

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(writer, reader, buf); err != nil {
		return sourceErr(err, verified)
	}

	// Decoders stop at the end of their last frame. Drain whatever
	// follows so the digest covers the complete body.
	if _, err := io.CopyBuffer(io.Discard, verified, buf); err != nil {
		return sourceErr(err, verified)
	}

	if contentLength >= 0 && verified.Count() != contentLength {
		return &Error{
			Err:    ErrContentLengthMismatch,
			Detail: fmt.Sprintf("expected %d bytes, got %d", contentLength, verified.Count()),
		}
	}

	if lzw != nil {
		if err := lzw.Close(); err != nil {
			return fmt.Errorf("finishing lz4 frame: %w", err)
		}
	}

	return af.Commit()
}

// sourceErr prefers the error of the raw stream over whatever a decoder
// made of it, so integrity and network failures keep their identity.
func sourceErr(err error, verified *VerifyingReader) error {
	if srcErr := verified.Err(); srcErr != nil {
		err = srcErr
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrDownloadCancelled, err)
	}

	var dlErr *Error
	if errors.As(err, &dlErr) {
		return err
	}

	return fmt.Errorf("copying file body: %w", err)
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	return cr.r.Read(p)
}
