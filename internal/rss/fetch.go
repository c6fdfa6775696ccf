package rss

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"ripple/backend/internal/config"
	"ripple/backend/internal/network"
)

const (
	fetchTimeout = 10 * time.Second
	maxBodySize  = 10 << 20
)

// Fetcher downloads raw feed documents. A per-host token bucket keeps
// repeated refreshes polite toward any single feed host.
type Fetcher struct {
	clients *network.ClientFactory

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewFetcher(clients *network.ClientFactory) *Fetcher {
	return &Fetcher{
		clients:  clients,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch performs a GET against feedURL and returns the raw body. Non-2xx
// statuses, timeouts and oversized bodies are all failures; the caller's
// fallback chain decides what to serve instead.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	if err := f.waitHost(ctx, feedURL); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", config.BrowserUserAgent)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	client := f.clients.NewHTTPClient(fetchTimeout)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch feed: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	return body, nil
}

func (f *Fetcher) waitHost(ctx context.Context, feedURL string) error {
	parsed, err := url.Parse(feedURL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("invalid feed url %q", feedURL)
	}

	f.mu.Lock()
	limiter, ok := f.limiters[parsed.Host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Second), 3)
		f.limiters[parsed.Host] = limiter
	}
	f.mu.Unlock()

	return limiter.Wait(ctx)
}
