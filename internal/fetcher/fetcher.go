// Package fetcher downloads and decodes remote lead-source data over HTTP and
// FTP, with per-host rate limiting and retry. All timeout and retry policy for
// unreliable upstreams lives here; the scoring engine never does I/O.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Get fetches the URL and returns the response body.
	Get(ctx context.Context, url string) (io.ReadCloser, error)

	// PostJSON sends a JSON payload and returns the response body.
	PostJSON(ctx context.Context, url string, payload any) (io.ReadCloser, error)
}
