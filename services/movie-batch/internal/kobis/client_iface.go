package kobis

import "context"

// Provider is the port for the KOBIS listing source.
type Provider interface {
	FetchListing(ctx context.Context, year, pageSize int) ([]Movie, error)
}
