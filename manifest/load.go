package manifest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/adamwoolhether/verifetch/client"
)

// Load fetches the manifest at rawURL with c and parses it. Network
// failures surface as [client.ErrRequestFailed] or
// [*client.UnexpectedStatusError]; malformed content as [ErrFormat].
func Load(ctx context.Context, c *client.Client, rawURL string) (*Manifest, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest url: %w", err)
	}

	req, err := c.Request(ctx, u, http.MethodGet)
	if err != nil {
		return nil, err
	}

	var m *Manifest
	err = c.Stream(req, http.StatusOK, func(resp *http.Response) error {
		m, err = Parse(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading manifest %s: %w", rawURL, err)
	}

	c.Logger().Debug("manifest loaded", "url", rawURL, "files", m.Len())

	return m, nil
}
