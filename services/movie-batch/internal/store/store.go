package store

import (
	"context"
	"time"

	"github.com/example/cinebox-platform/services/movie-batch/internal/movie"
)

// MovieStore defines the persistence operations the batch jobs depend on.
type MovieStore interface {
	// ExistsEnrichedMatch reports whether a row with exactly this title and release date
	// already carries a poster URL.
	ExistsEnrichedMatch(ctx context.Context, title string, releaseDate time.Time) (bool, error)

	// FindByStatusBefore returns rows in status whose release date is strictly before date.
	FindByStatusBefore(ctx context.Context, status movie.Status, date time.Time) ([]movie.Movie, error)

	// BulkUpsert writes all movies in one unit. Rows with an ID are updated by ID, the
	// rest are matched on (title, release date). LikeCount is never written and status
	// never moves backwards.
	BulkUpsert(ctx context.Context, movies []movie.Movie) error
}
