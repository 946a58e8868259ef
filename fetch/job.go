package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/adamwoolhether/verifetch/client"
	"github.com/adamwoolhether/verifetch/client/download"
	"github.com/adamwoolhether/verifetch/manifest"
)

// lz4Suffix is appended to output paths in ModeLZ4.
const lz4Suffix = ".lz4"

// ErrUnsafeName is returned for manifest filenames that would resolve
// outside the output directory.
var ErrUnsafeName = errors.New("unsafe file name")

// Job describes the transfer of one manifest entry.
type Job struct {
	Name  string
	URL   *url.URL
	Path  string
	Hash  string
	Codec download.Codec
	LZ4   bool
}

// Plan derives one Job per manifest entry, in manifest order.
func Plan(m *manifest.Manifest, baseURL, outDir string, mode Mode) ([]Job, error) {
	jobs := make([]Job, 0, m.Len())

	for _, e := range m.Entries {
		if !filepath.IsLocal(filepath.FromSlash(e.Name)) {
			return nil, fmt.Errorf("%w: %q", ErrUnsafeName, e.Name)
		}

		u, err := client.FileURL(baseURL, e.Name)
		if err != nil {
			return nil, err
		}

		job := Job{
			Name: e.Name,
			URL:  u,
			Path: filepath.Join(outDir, filepath.FromSlash(e.Name)),
			Hash: e.Hash,
		}
		if mode.decodes() {
			job.Codec = download.CodecFor(e.Name)
		}
		if mode == ModeLZ4 {
			job.LZ4 = true
			job.Path += lz4Suffix
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
