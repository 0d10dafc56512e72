package ports

import "context"

// HTTPFetcher performs a GET and returns the raw body. Host resolution failures are
// reported in-band as a JSON body carrying the COULD_NOT_RESOLVE_HOST key.
type HTTPFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
