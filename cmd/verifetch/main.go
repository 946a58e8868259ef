// verifetch mirrors checksum-verified dataset dumps into a local
// directory, optionally decompressing them or re-encoding them as LZ4.
//
// Select one or both categories:
//
//	verifetch --comments --submissions --compression zst --out-dir ~/data/reddit
//
// Files already present are skipped, so an interrupted run is resumed by
// running the same command again.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/adamwoolhether/verifetch"
	"github.com/adamwoolhether/verifetch/client"
	"github.com/adamwoolhether/verifetch/client/download"
	"github.com/adamwoolhether/verifetch/fetch"
	"github.com/adamwoolhether/verifetch/internal/config"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "\n%s %v\n", red("✗"), err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verifetch",
		Short: "Mirror checksum-verified dataset dumps",
		Long: "verifetch downloads every file listed in a category's checksum manifest,\n" +
			"verifies its digest over the raw bytes and writes it atomically.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.Flags(), stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	addFlags(cmd.Flags())

	return cmd
}

func addFlags(fs *pflag.FlagSet) {
	fs.Bool("comments", false, "mirror the comment dumps")
	fs.Bool("submissions", false, "mirror the submission dumps")
	fs.String("compression", "default", "default keeps files as distributed; bz2, xz, zst or decompress decode them; lz4 re-encodes as LZ4")
	fs.String("out-dir", "", "output root, one subdirectory per category (default ~/data/reddit)")
	fs.StringP("config", "c", "", "path to a config file")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("digest", "sha256", "manifest digest algorithm: sha256 or blake3")
	fs.Int("rate-limit", 0, "cap each download at this many bytes per second (0 for none)")
	fs.Duration("timeout", 0, "timeout per file including the body (0 for none)")
	fs.String("user-agent", "", "User-Agent header for all requests")
}

func run(ctx context.Context, flags *pflag.FlagSet, stdout, stderr io.Writer) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))

	cats := cfg.Categories()
	if len(cats) == 0 {
		logger.Info("should specify --comments and/or --submissions")
		return nil
	}

	mode, err := cfg.Mode()
	if err != nil {
		return err
	}

	clientOpts := []client.Option{
		client.WithLogger(logger),
		client.WithTimeout(cfg.Timeout),
		client.WithTracePropagation(),
	}
	if cfg.UserAgent != "" {
		clientOpts = append(clientOpts, client.WithUserAgent(cfg.UserAgent))
	}
	if cfg.Throttle.RPS > 0 {
		clientOpts = append(clientOpts, client.WithThrottle(cfg.Throttle.RPS, cfg.Throttle.Burst))
	}

	c, err := verifetch.NewClient(clientOpts...)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	f, err := verifetch.NewFetcher(c,
		fetch.WithLogger(logger),
		fetch.WithMode(mode),
		fetch.WithDigest(cfg.Digest),
		fetch.WithRateLimit(cfg.RateLimit),
		fetch.WithProgress(download.LogProgress(logger)),
	)
	if err != nil {
		return fmt.Errorf("building fetcher: %w", err)
	}

	start := time.Now()
	var total fetch.Summary

	for _, cat := range cats {
		fmt.Fprintf(stdout, "%s Mirroring %s into %s\n", cyan("•"), yellow(cat.Name), yellow(filepath.Join(cfg.OutDir, cat.Name)))

		sum, err := f.Mirror(ctx, cat, cfg.OutDir)
		total.Add(sum)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "%s Fetched %s, skipped %s, %s received in %s\n",
		green("✓"),
		yellow(humanize.Comma(int64(total.Fetched))),
		yellow(humanize.Comma(int64(total.Skipped))),
		yellow(humanize.IBytes(uint64(total.Bytes))),
		yellow(time.Since(start).Round(time.Millisecond)),
	)

	return nil
}
