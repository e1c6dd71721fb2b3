package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// 10 MB cap on response bodies; listing pages are far below this.
const maxBodyBytes = 10 * 1024 * 1024

type Options struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	UserAgent  string
}

func DefaultOptions() Options {
	return Options{
		Timeout:    15 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		UserAgent:  defaultUserAgent,
	}
}

// HTTPFetcher fetches pages over plain HTTP with a per-attempt timeout
// and a fixed delay between retries.
type HTTPFetcher struct {
	client *http.Client
	opts   Options
	logger *slog.Logger
}

func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		logger: slog.Default().With("component", "fetcher"),
	}
}

// Fetch retrieves the URL, retrying up to MaxRetries attempts on
// transport errors, timeouts, and HTTP status >= 400. After the last
// attempt it returns a *FetchError wrapping the final cause.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= f.opts.MaxRetries; attempt++ {
		if attempt > 1 {
			f.logger.Info("retrying fetch", "url", url, "attempt", attempt)
			select {
			case <-ctx.Done():
				return "", &FetchError{URL: url, Attempts: attempt - 1, Cause: ctx.Err()}
			case <-time.After(f.opts.RetryDelay):
			}
		}

		body, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		attempts = attempt
		f.logger.Warn("fetch attempt failed", "url", url, "attempt", attempt, "error", err)

		if ctx.Err() != nil {
			break
		}
	}

	return "", &FetchError{URL: url, Attempts: attempts, Cause: lastErr}
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}

func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
