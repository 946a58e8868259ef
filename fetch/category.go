package fetch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/adamwoolhether/verifetch/manifest"
)

// Category is a named file index with its checksum manifest.
type Category struct {
	Name        string
	ManifestURL string
	BaseURL     string
}

var (
	Comments = Category{
		Name:        "comments",
		ManifestURL: "https://files.pushshift.io/reddit/comments/sha256sum.txt",
		BaseURL:     "https://files.pushshift.io/reddit/comments/",
	}
	Submissions = Category{
		Name:        "submissions",
		ManifestURL: "https://files.pushshift.io/reddit/submissions/sha256sums.txt",
		BaseURL:     "https://files.pushshift.io/reddit/submissions/",
	}
)

// Mirror loads the manifest of cat and fetches its files into root/<cat.Name>.
// A manifest that fails to load or parse aborts before any download.
func (f *Fetcher) Mirror(ctx context.Context, cat Category, root string) (Summary, error) {
	m, err := manifest.Load(ctx, f.client, cat.ManifestURL)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", cat.Name, err)
	}

	sum, err := f.FetchAll(ctx, m, cat.BaseURL, filepath.Join(root, cat.Name))
	if err != nil {
		return sum, fmt.Errorf("%s: %w", cat.Name, err)
	}

	return sum, nil
}
