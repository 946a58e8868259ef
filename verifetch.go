// Package verifetch exposes the client and fetcher builders.
package verifetch

import (
	"github.com/adamwoolhether/verifetch/client"
	"github.com/adamwoolhether/verifetch/fetch"
)

// NewClient instantiates a new *Client with the provided options.
// If not specified, a fresh http.Client over http.DefaultTransport is used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// NewFetcher instantiates a *Fetcher downloading through c.
func NewFetcher(c *client.Client, opts ...fetch.Option) (*fetch.Fetcher, error) {
	return fetch.New(c, opts...)
}
