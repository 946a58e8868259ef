// Package throttle rate-limits traffic to a mirror using the
// token-bucket limiter from [golang.org/x/time/rate].
//
// # Requests
//
// Wrap an existing transport with [NewRoundTripper] to cap how often
// requests are sent:
//
//	rt, err := throttle.NewRoundTripper(
//		2, // requests per second
//		1, // burst capacity
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// # Bandwidth
//
// Wrap a response body with [NewReader] to cap how fast bytes are read:
//
//	body, err := throttle.NewReader(ctx, resp.Body, 10<<20) // 10 MiB/s
//
// When the limit is exceeded, callers block until tokens become
// available or the context is cancelled.
package throttle
