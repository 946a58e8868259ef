package download

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/pierrec/lz4/v4"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type progressEvent struct {
	Kind  string
	Name  string
	N     int64
	Error bool
}

// recordingProgress collects Begin/End events and sums Advance calls.
type recordingProgress struct {
	mu       sync.Mutex
	events   []progressEvent
	advanced map[string]int64
}

func (rp *recordingProgress) Begin(name string, total int64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.events = append(rp.events, progressEvent{Kind: "begin", Name: name, N: total})
}

func (rp *recordingProgress) Advance(name string, n int64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.advanced == nil {
		rp.advanced = make(map[string]int64)
	}
	rp.advanced[name] += n
}

func (rp *recordingProgress) End(name string, err error) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.events = append(rp.events, progressEvent{Kind: "end", Name: name, Error: err != nil})
}

func TestHandle_Basic(t *testing.T) {
	payload := []byte("hello download world")
	dest := filepath.Join(t.TempDir(), "plain.txt")

	if err := Handle(t.Context(), bytes.NewReader(payload), int64(len(payload)), dest, discardLogger); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	assertFile(t, dest, payload)
}

func TestHandle_ChecksumPass(t *testing.T) {
	payload := []byte("checksum test data")
	dest := filepath.Join(t.TempDir(), "pass.bin")

	err := Handle(t.Context(), bytes.NewReader(payload), int64(len(payload)), dest, discardLogger,
		WithChecksum(sha256.New(), sha256Hex(payload)),
	)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	got := assertFile(t, dest, payload)
	if sha256Hex(got) != sha256Hex(payload) {
		t.Error("digest of written file does not match")
	}
}

func TestHandle_ChecksumFail(t *testing.T) {
	payload := []byte("checksum test data")
	dir := t.TempDir()
	dest := filepath.Join(dir, "fail.bin")

	err := Handle(t.Context(), bytes.NewReader(payload), int64(len(payload)), dest, discardLogger,
		WithChecksum(sha256.New(), sha256Hex([]byte("something else"))),
	)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got: %v", err)
	}

	assertAbsent(t, dest)
	assertNoTempFiles(t, dir)
}

func TestHandle_TruncatedStream(t *testing.T) {
	payload := bytes.Repeat([]byte("z"), 3*chunkSize)
	dir := t.TempDir()
	dest := filepath.Join(dir, "truncated.bin")

	body := io.MultiReader(bytes.NewReader(payload[:chunkSize]), iotest.ErrReader(io.ErrUnexpectedEOF))

	err := Handle(t.Context(), body, int64(len(payload)), dest, discardLogger,
		WithChecksum(sha256.New(), sha256Hex(payload)),
	)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got: %v", err)
	}
	if errors.Is(err, ErrChecksumMismatch) {
		t.Error("truncation must not be reported as a checksum mismatch")
	}

	assertAbsent(t, dest)
	assertNoTempFiles(t, dir)
}

func TestHandle_ContentLengthMismatch(t *testing.T) {
	payload := []byte("short")
	dir := t.TempDir()
	dest := filepath.Join(dir, "short.bin")

	err := Handle(t.Context(), bytes.NewReader(payload), 10, dest, discardLogger)
	if !errors.Is(err, ErrContentLengthMismatch) {
		t.Fatalf("expected ErrContentLengthMismatch, got: %v", err)
	}

	assertAbsent(t, dest)
	assertNoTempFiles(t, dir)
}

func TestHandle_DecompressRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte(`{"author":"gopher","score":42}`+"\n"), 2000)

	for _, codec := range []Codec{CodecBzip2, CodecXZ, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			raw := compress(t, codec, payload)
			dest := filepath.Join(t.TempDir(), "decoded.json")

			err := Handle(t.Context(), bytes.NewReader(raw), int64(len(raw)), dest, discardLogger,
				WithChecksum(sha256.New(), sha256Hex(raw)),
				WithCodec(codec),
			)
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}

			assertFile(t, dest, payload)
		})
	}
}

func TestHandle_NoCodecKeepsCompressedBytes(t *testing.T) {
	payload := bytes.Repeat([]byte("native compression kept"), 100)
	raw := compress(t, CodecZstd, payload)
	dest := filepath.Join(t.TempDir(), "RC_2019-04.zst")

	err := Handle(t.Context(), bytes.NewReader(raw), int64(len(raw)), dest, discardLogger,
		WithChecksum(sha256.New(), sha256Hex(raw)),
	)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	assertFile(t, dest, raw)
}

func TestHandle_DecompressChecksumFail(t *testing.T) {
	payload := bytes.Repeat([]byte("valid frame, wrong manifest"), 100)

	for _, codec := range []Codec{CodecBzip2, CodecXZ, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			raw := compress(t, codec, payload)
			dir := t.TempDir()
			dest := filepath.Join(dir, "decoded.txt")

			err := Handle(t.Context(), bytes.NewReader(raw), int64(len(raw)), dest, discardLogger,
				WithChecksum(sha256.New(), sha256Hex(payload)),
				WithCodec(codec),
			)
			if !errors.Is(err, ErrChecksumMismatch) {
				t.Fatalf("expected ErrChecksumMismatch, got: %v", err)
			}

			assertAbsent(t, dest)
			assertNoTempFiles(t, dir)
		})
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	raw := bytes.Repeat([]byte("this is not a compressed stream "), 64)

	for _, codec := range []Codec{CodecBzip2, CodecXZ, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			dir := t.TempDir()
			dest := filepath.Join(dir, "broken.out")

			err := Handle(t.Context(), bytes.NewReader(raw), int64(len(raw)), dest, discardLogger,
				WithChecksum(sha256.New(), sha256Hex(raw)),
				WithCodec(codec),
			)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got: %v", err)
			}

			assertAbsent(t, dest)
			assertNoTempFiles(t, dir)
		})
	}
}

func TestHandle_LZ4Output(t *testing.T) {
	payload := bytes.Repeat([]byte("re-encoded as lz4 "), 1000)

	testCases := []struct {
		name  string
		raw   []byte
		codec Codec
	}{
		{name: "native bytes", raw: payload, codec: CodecNone},
		{name: "decoded zstd", raw: compress(t, CodecZstd, payload), codec: CodecZstd},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out.lz4")

			err := Handle(t.Context(), bytes.NewReader(tc.raw), int64(len(tc.raw)), dest, discardLogger,
				WithChecksum(sha256.New(), sha256Hex(tc.raw)),
				WithCodec(tc.codec),
				WithLZ4(),
			)
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}

			f, err := os.Open(dest)
			if err != nil {
				t.Fatalf("opening output: %v", err)
			}
			defer f.Close()

			got, err := io.ReadAll(lz4.NewReader(f))
			if err != nil {
				t.Fatalf("decoding lz4 output: %v", err)
			}

			if !bytes.Equal(got, payload) {
				t.Errorf("payload mismatch; got %d bytes, want %d", len(got), len(payload))
			}
		})
	}
}

func TestHandle_Progress(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefghij"), 10000)
	dest := filepath.Join(t.TempDir(), "progress.bin")
	rp := &recordingProgress{}

	err := Handle(t.Context(), bytes.NewReader(payload), int64(len(payload)), dest, discardLogger,
		WithProgress(rp),
		WithLabel("RS_2008-01.bz2"),
	)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	expEvents := []progressEvent{
		{Kind: "begin", Name: "RS_2008-01.bz2", N: int64(len(payload))},
		{Kind: "end", Name: "RS_2008-01.bz2"},
	}
	if diff := cmp.Diff(expEvents, rp.events); diff != "" {
		t.Errorf("progress events mismatch (-want +got):\n%s", diff)
	}
	if got := rp.advanced["RS_2008-01.bz2"]; got != int64(len(payload)) {
		t.Errorf("expected %d bytes advanced, got %d", len(payload), got)
	}
}

func TestHandle_ProgressReportsFailure(t *testing.T) {
	payload := []byte("bad")
	dest := filepath.Join(t.TempDir(), "bad.bin")
	rp := &recordingProgress{}

	_ = Handle(t.Context(), bytes.NewReader(payload), -1, dest, discardLogger,
		WithChecksum(sha256.New(), "00"),
		WithProgress(rp),
	)

	expEvents := []progressEvent{
		{Kind: "begin", Name: "bad.bin", N: -1},
		{Kind: "end", Name: "bad.bin", Error: true},
	}
	if diff := cmp.Diff(expEvents, rp.events); diff != "" {
		t.Errorf("progress events mismatch (-want +got):\n%s", diff)
	}
}

func TestHandle_SkipExisting(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "existing.bin")
	if err := os.WriteFile(dest, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	body := iotest.ErrReader(errors.New("body must not be read"))

	if err := Handle(t.Context(), body, -1, dest, discardLogger, WithSkipExisting()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	assertFile(t, dest, []byte("original"))
}

func TestHandle_Cancelled(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "cancelled.bin")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := Handle(ctx, bytes.NewReader([]byte("never read")), -1, dest, discardLogger)
	if !errors.Is(err, ErrDownloadCancelled) {
		t.Fatalf("expected ErrDownloadCancelled, got: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}

	assertAbsent(t, dest)
	assertNoTempFiles(t, dir)
}

func TestHandle_InvalidOptions(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "unused.bin")

	testCases := []struct {
		name string
		opt  Option
	}{
		{name: "nil hash", opt: WithChecksum(nil, "abc")},
		{name: "empty checksum", opt: WithChecksum(sha256.New(), "")},
		{name: "nil progress", opt: WithProgress(nil)},
		{name: "unknown codec", opt: WithCodec(Codec(99))},
		{name: "negative rate", opt: WithRateLimit(-1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Handle(t.Context(), bytes.NewReader(nil), 0, dest, discardLogger, tc.opt); err == nil {
				t.Error("expected option error, got nil")
			}
		})
	}
}

func assertFile(t *testing.T, path string, exp []byte) []byte {
	t.Helper()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if !bytes.Equal(got, exp) {
		t.Errorf("file contents mismatch; got %d bytes, want %d", len(got), len(exp))
	}

	return got
}

func assertAbsent(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to not exist, stat err: %v", path, err)
	}
}
