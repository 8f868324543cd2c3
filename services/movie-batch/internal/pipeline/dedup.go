package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EnrichedMatcher is the slice of the movie store the dedup gate needs.
type EnrichedMatcher interface {
	ExistsEnrichedMatch(ctx context.Context, title string, releaseDate time.Time) (bool, error)
}

// DedupGate keeps already-enriched titles from costing another detail lookup.
// Matching is by exact title, so a renamed listing row is enriched again.
type DedupGate struct {
	Store EnrichedMatcher
}

func (g DedupGate) ShouldSkipEnrichment(ctx context.Context, title string, releaseDate time.Time) (bool, error) {
	ok, err := g.Store.ExistsEnrichedMatch(ctx, strings.TrimSpace(title), releaseDate)
	if err != nil {
		return false, fmt.Errorf("dedup %q: %w", title, err)
	}
	return ok, nil
}
