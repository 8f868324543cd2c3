package kmdb

import "context"

// Provider is the port for the KMDB detail source.
type Provider interface {
	FetchDetail(ctx context.Context, title, windowStart, windowEnd string) (*Response, error)
}
