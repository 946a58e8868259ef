package download

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Progress receives per-file transfer updates, keyed by file name.
// total is -1 when the size is unknown.
type Progress interface {
	Begin(name string, total int64)
	Advance(name string, n int64)
	End(name string, err error)
}

// NopProgress discards all updates.
type NopProgress struct{}

func (NopProgress) Begin(string, int64)   {}
func (NopProgress) Advance(string, int64) {}
func (NopProgress) End(string, error)     {}

// LogProgress returns a Progress logging transfer state through logger
// at most once per second per file.
func LogProgress(logger *slog.Logger) Progress {
	return &logProgress{
		logger: logger,
		files:  make(map[string]*transfer),
	}
}

type transfer struct {
	transferred int64
	total       int64
	startTime   time.Time
	lastLog     time.Time
}

type logProgress struct {
	logger *slog.Logger
	mu     sync.Mutex
	files  map[string]*transfer
}

func (lp *logProgress) Begin(name string, total int64) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	now := time.Now()
	lp.files[name] = &transfer{total: total, startTime: now, lastLog: now}
}

func (lp *logProgress) Advance(name string, n int64) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	t, ok := lp.files[name]
	if !ok {
		return
	}
	t.transferred += n

	if time.Since(t.lastLog) >= time.Second {
		t.lastLog = time.Now()
		lp.log(name, t, "downloading")
	}
}

func (lp *logProgress) End(name string, err error) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	t, ok := lp.files[name]
	if !ok {
		return
	}
	delete(lp.files, name)

	if err != nil {
		lp.logger.Error("download failed", "file", name, "transferred", humanize.IBytes(uint64(t.transferred)), "error", err)
		return
	}
	lp.log(name, t, "download complete")
}

func (lp *logProgress) log(name string, t *transfer, msg string) {
	elapsed := time.Since(t.startTime)
	attrs := []any{
		"file", name,
		"elapsed", elapsed.Round(time.Millisecond),
		"transferred", humanize.IBytes(uint64(t.transferred)),
	}
	if t.total >= 0 {
		attrs = append(attrs,
			"total", humanize.IBytes(uint64(t.total)),
			"progress", fmt.Sprintf("%.1f%%", float64(t.transferred)/float64(max(t.total, 1))*100),
		)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		attrs = append(attrs, "rate", humanize.IBytes(uint64(float64(t.transferred)/secs))+"/s")
	}

	lp.logger.Info(msg, attrs...)
}
