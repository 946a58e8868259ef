package download

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAtomic_Commit(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "RS_2010-01.bz2")

	err := WriteAtomic(dest, func(w io.Writer) error {
		_, err := w.Write([]byte("payload"))
		return err
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading dest: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("unexpected contents: %q", got)
	}

	assertNoTempFiles(t, dir)
}

func TestWriteAtomic_ErrorLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "RS_2010-02.bz2")
	boom := errors.New("stream truncated")

	err := WriteAtomic(dest, func(w io.Writer) error {
		if _, err := w.Write([]byte("partial")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got: %v", boom, err)
	}

	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("expected dest to not exist, stat err: %v", statErr)
	}

	assertNoTempFiles(t, dir)
}

func TestAtomicFile_AbortAfterCommit(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "committed.bin")

	af, err := CreateAtomic(dest)
	if err != nil {
		t.Fatalf("creating atomic file: %v", err)
	}
	if err := af.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := af.Abort(); err != nil {
		t.Errorf("abort after commit should be a no-op, got: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("expected committed file to survive abort: %v", err)
	}
	if err := af.Commit(); err == nil {
		t.Error("expected second commit to fail")
	}
}

func TestRemoveStale(t *testing.T) {
	dir := t.TempDir()

	keep := filepath.Join(dir, "RC_2006-01.bz2")
	if err := os.WriteFile(keep, []byte("done"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{tempPrefix + "123", tempPrefix + "456"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("orphan"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := RemoveStale(dir)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	assertNoTempFiles(t, dir)
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("expected completed file to remain: %v", err)
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, tempPrefix+"*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) > 0 {
		t.Errorf("expected no temp files, found: %v", matches)
	}
}
