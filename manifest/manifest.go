// Package manifest reads checksum manifests: newline-delimited text with
// one "<hex digest> <filename>" pair per line, as produced by sha256sum.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrFormat is wrapped by [FormatError].
var ErrFormat = errors.New("malformed manifest line")

// FormatError reports a non-blank line that does not split into exactly
// two whitespace-separated fields.
type FormatError struct {
	Line int
	Text string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v %d: %q", ErrFormat, e.Line, e.Text)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// Entry is a single file listed by a manifest.
type Entry struct {
	Name string
	Hash string
}

// Manifest holds the entries of a parsed manifest, one per filename.
// Entries appear in the order their filename was first seen.
type Manifest struct {
	Entries []Entry
}

// Len returns the number of distinct files.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// Map returns the manifest as filename -> hash.
func (m *Manifest) Map() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for _, e := range m.Entries {
		out[e.Name] = e.Hash
	}
	return out
}

// Parse reads a manifest from r. Blank and whitespace-only lines are
// skipped. A filename listed more than once keeps its first position
// and takes the hash of its last occurrence. Hashes are lower-cased.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	index := make(map[string]int)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)

	var lineNo int
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, &FormatError{Line: lineNo, Text: line}
		}

		e := Entry{Name: fields[1], Hash: strings.ToLower(fields[0])}
		if i, ok := index[e.Name]; ok {
			m.Entries[i].Hash = e.Hash
			continue
		}
		index[e.Name] = len(m.Entries)
		m.Entries = append(m.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	return m, nil
}
