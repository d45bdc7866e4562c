package ariregister

import "context"

// Fetcher retrieves raw HTML from the live registry portal. The live
// fallback tier parses what it returns best-effort; this boundary is
// inherently lossy and lower-confidence than the local tiers.
type Fetcher interface {
	// Fetch performs a GET against the URL and returns the response
	// body. The context controls timeout and cancellation. An
	// unreachable endpoint maps to EUNAVAILABLE.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases client resources.
	Close() error
}
