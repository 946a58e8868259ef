package throttle

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/time/rate"
)

// Reader caps the rate at which bytes are pulled from the wrapped
// reader. Each Read is limited to one second's worth of bytes.
type Reader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

// NewReader wraps r so that reads average at most bytesPerSecond.
func NewReader(ctx context.Context, r io.Reader, bytesPerSecond int) (*Reader, error) {
	if bytesPerSecond <= 0 {
		return nil, fmt.Errorf("bytesPerSecond[%d] %w", bytesPerSecond, ErrMustNotBeZero)
	}

	return &Reader{
		ctx:     ctx,
		r:       r,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond),
	}, nil
}

func (tr *Reader) Read(p []byte) (int, error) {
	if burst := tr.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}

	n, err := tr.r.Read(p)
	if n > 0 {
		if waitErr := tr.limiter.WaitN(tr.ctx, n); waitErr != nil {
			return n, fmt.Errorf("%w: %w", ErrWaitingFailed, waitErr)
		}
	}

	return n, err
}
