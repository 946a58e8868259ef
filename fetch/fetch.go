// Package fetch mirrors the files listed in a checksum manifest into a
// local directory, one verified download at a time.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/verifetch/client"
	"github.com/adamwoolhether/verifetch/client/download"
	"github.com/adamwoolhether/verifetch/manifest"
)

const tracerName = "github.com/adamwoolhether/verifetch/fetch"

// Fetcher downloads manifest entries sequentially through a [client.Client].
type Fetcher struct {
	client    *client.Client
	logger    *slog.Logger
	progress  download.Progress
	mode      Mode
	digest    string
	rateLimit int
	tracer    trace.Tracer
}

// Summary counts the outcome of a run.
type Summary struct {
	Fetched int
	Skipped int
	// Bytes is the number of raw bytes received and verified.
	Bytes int64
}

// Add accumulates o into s.
func (s *Summary) Add(o Summary) {
	s.Fetched += o.Fetched
	s.Skipped += o.Skipped
	s.Bytes += o.Bytes
}

// New returns a Fetcher downloading through c.
func New(c *client.Client, optFns ...Option) (*Fetcher, error) {
	if c == nil {
		return nil, errors.New("client must not be nil")
	}

	opts := options{digest: DigestSHA256}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying fetch option: %w", err)
		}
	}

	if opts.logger == nil {
		opts.logger = c.Logger()
	}
	if opts.progress == nil {
		opts.progress = download.NopProgress{}
	}
	if opts.tp == nil {
		opts.tp = otel.GetTracerProvider()
	}

	return &Fetcher{
		client:    c,
		logger:    opts.logger,
		progress:  opts.progress,
		mode:      opts.mode,
		digest:    opts.digest,
		rateLimit: opts.rateLimit,
		tracer:    opts.tp.Tracer(tracerName),
	}, nil
}

// Mode returns the compression mode of the Fetcher.
func (f *Fetcher) Mode() Mode { return f.mode }

// FetchAll downloads every entry of m from baseURL into outDir. Files
// already present at their output path are skipped without a request.
// The first failure stops the run; the returned Summary covers the
// jobs finished before it.
func (f *Fetcher) FetchAll(ctx context.Context, m *manifest.Manifest, baseURL, outDir string) (Summary, error) {
	var sum Summary
	logger := f.logger.With("run", uuid.NewString())

	jobs, err := Plan(m, baseURL, outDir, f.mode)
	if err != nil {
		return sum, fmt.Errorf("planning jobs: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return sum, fmt.Errorf("creating output dir: %w", err)
	}

	removed, err := download.RemoveStale(outDir)
	if err != nil {
		return sum, fmt.Errorf("removing stale temp files: %w", err)
	}
	if removed > 0 {
		logger.Info("removed stale temp files", "dir", outDir, "count", removed)
	}

	logger.Info("fetching files", "dir", outDir, "files", len(jobs), "mode", f.mode.String())

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("%w: %w", download.ErrDownloadCancelled, err)
		}

		if err := f.fetch(ctx, logger, outDir, job, &sum); err != nil {
			return sum, fmt.Errorf("fetching %s: %w", job.Name, err)
		}
	}

	logger.Info("run complete", "dir", outDir, "fetched", sum.Fetched, "skipped", sum.Skipped, "bytes", sum.Bytes)

	return sum, nil
}

func (f *Fetcher) fetch(ctx context.Context, logger *slog.Logger, outDir string, job Job, sum *Summary) (err error) {
	ctx, span := f.tracer.Start(ctx, "fetch.job", trace.WithAttributes(
		attribute.String("file", job.Name),
		attribute.String("url", job.URL.String()),
		attribute.String("mode", f.mode.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if _, err := os.Stat(job.Path); err == nil {
		logger.Info("exists, skipping", "path", job.Path)
		span.SetAttributes(attribute.Bool("skipped", true))
		sum.Skipped++
		return nil
	}

	if dir := filepath.Dir(job.Path); dir != filepath.Clean(outDir) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating dir: %w", err)
		}
	}

	h, err := newHash(f.digest)
	if err != nil {
		return err
	}

	req, err := f.client.Request(ctx, job.URL, http.MethodGet)
	if err != nil {
		return err
	}

	counted := &tally{next: f.progress}
	opts := []download.Option{
		download.WithChecksum(h, job.Hash),
		download.WithProgress(counted),
		download.WithLabel(job.Name),
		download.WithCodec(job.Codec),
	}
	if job.LZ4 {
		opts = append(opts, download.WithLZ4())
	}
	if f.rateLimit > 0 {
		opts = append(opts, download.WithRateLimit(f.rateLimit))
	}

	logger.Info("fetching", "file", job.Name, "path", job.Path, "codec", job.Codec.String())

	if err := f.client.Download(req, http.StatusOK, job.Path, opts...); err != nil {
		return err
	}

	sum.Fetched++
	sum.Bytes += counted.n
	span.SetAttributes(attribute.Int64("bytes", counted.n))

	return nil
}

// tally forwards progress to next while counting advanced bytes.
type tally struct {
	next download.Progress
	n    int64
}

func (t *tally) Begin(name string, total int64) { t.next.Begin(name, total) }

func (t *tally) Advance(name string, n int64) {
	t.n += n
	t.next.Advance(name, n)
}

func (t *tally) End(name string, err error) { t.next.End(name, err) }
