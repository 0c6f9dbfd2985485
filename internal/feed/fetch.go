package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkhault/calsync/internal/shared"
)

// maxFeedBytes bounds how much of a feed body is read; calendar exports
// are small and an unbounded read would let a bad URL exhaust memory.
const maxFeedBytes = 10 << 20

// Fetcher retrieves calendar feeds over HTTP. A shared rate limiter keeps
// batch re-syncs polite toward the upstream calendar hosts.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a Fetcher. A nil client gets a 15 second timeout
// default; requestsPerSecond <= 0 disables rate limiting.
func NewFetcher(client *http.Client, requestsPerSecond float64) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Fetcher{client: client, limiter: limiter}
}

// Fetch retrieves the raw feed text at url. Network and non-2xx failures
// are wrapped in [shared.ErrFetchFailed] so batch sync can tally them per
// source without aborting.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", shared.ErrInvalidArgument)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d from %s", shared.ErrFetchFailed, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}

	return body, nil
}
