package download

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// tempPrefix marks in-flight files. Anything carrying it in a download
// directory was abandoned by an interrupted run.
const tempPrefix = ".verifetch-"

// AtomicFile writes to a temporary sibling of its destination and only
// renames it into place on Commit.
type AtomicFile struct {
	file *os.File
	dest string
	done bool
}

// CreateAtomic opens a temp file in the same directory as dest.
func CreateAtomic(dest string) (*AtomicFile, error) {
	file, err := os.CreateTemp(filepath.Dir(dest), tempPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}

	return &AtomicFile{file: file, dest: dest}, nil
}

func (a *AtomicFile) Write(p []byte) (int, error) {
	return a.file.Write(p)
}

// Name returns the path of the temporary file.
func (a *AtomicFile) Name() string { return a.file.Name() }

// Commit flushes the temp file to disk and renames it to the destination.
func (a *AtomicFile) Commit() error {
	if a.done {
		return errors.New("atomic file already finished")
	}
	a.done = true

	if err := a.file.Sync(); err != nil {
		a.discard()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := a.file.Close(); err != nil {
		a.discard()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(a.file.Name(), a.dest); err != nil {
		a.discard()
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// Abort closes and removes the temp file. It is a no-op after Commit.
func (a *AtomicFile) Abort() error {
	if a.done {
		return nil
	}
	a.done = true

	return a.discard()
}

func (a *AtomicFile) discard() error {
	if err := a.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Remove(a.file.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing temp file: %w", err)
	}

	return nil
}

// WriteAtomic runs fn against a temp file for dest, committing it when fn
// returns nil and removing it otherwise.
func WriteAtomic(dest string, fn func(w io.Writer) error) (err error) {
	af, err := CreateAtomic(dest)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if abortErr := af.Abort(); abortErr != nil {
				err = errors.Join(err, abortErr)
			}
		}
	}()

	if err := fn(af); err != nil {
		return err
	}

	return af.Commit()
}

// RemoveStale deletes temp files left in dir by interrupted downloads and
// returns how many were removed.
func RemoveStale(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading dir: %w", err)
	}

	var removed int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("removing stale temp file: %w", err)
		}
		removed++
	}

	return removed, nil
}
