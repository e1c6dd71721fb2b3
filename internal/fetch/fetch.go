package fetch

import (
	"context"
	"fmt"
)

// Fetcher retrieves the raw markup for a listing URL. Implementations
// must be safe for sequential reuse and must report failure through the
// returned error, never by panicking.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// FetchError is returned once all attempts for a URL are exhausted. It
// carries the last underlying cause so the batch runner can record it
// without aborting.
type FetchError struct {
	URL      string
	Attempts int
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
