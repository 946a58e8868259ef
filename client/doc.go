// Package client provides the HTTP side of verifetch, built on
// [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithUserAgent("verifetch/1.0"),
//		client.WithThrottle(2, 1),
//	)
//
// # Streaming Responses
//
// [Client.Stream] checks the status code and hands the open response to a
// callback, closing the body afterwards:
//
//	u, _ := url.Parse("https://files.example.org/dumps/sha256sums.txt")
//	req, err := client.Request(ctx, u, http.MethodGet)
//	err = c.Stream(req, http.StatusOK, func(resp *http.Response) error {
//		_, err := io.Copy(os.Stdout, resp.Body)
//		return err
//	})
//
// # Downloading Files
//
// Stream a response body directly to disk, verifying its digest and
// optionally decoding it:
//
//	err = c.Download(req, http.StatusOK, "/data/RC_2019-04",
//		client.WithChecksum(sha256.New(), expectedHex),
//		client.WithCodec(download.CodecZstd),
//	)
//
// For lower-level control see the
// [github.com/adamwoolhether/verifetch/client/download] package.
package client
