package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/cinebox-platform/services/movie-batch/internal/movie"
	"github.com/example/cinebox-platform/services/movie-batch/internal/store"
)

// Advancer moves UPCOMING movies whose release date has passed to SHOWING.
type Advancer struct {
	Log   *zap.Logger
	Store store.MovieStore
}

// Advance promotes every UPCOMING movie released strictly before today and returns how
// many were promoted. Running it again for the same day promotes nothing.
func (a Advancer) Advance(ctx context.Context, today time.Time) (int, error) {
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}
	day := movie.DateOf(today)

	due, err := a.Store.FindByStatusBefore(ctx, movie.StatusUpcoming, day)
	if err != nil {
		return 0, fmt.Errorf("lifecycle: find upcoming: %w", err)
	}
	if len(due) == 0 {
		log.Info("no movies to advance", zap.String("today", movie.FormatDate(day)))
		return 0, nil
	}

	advanced := make([]movie.Movie, 0, len(due))
	for _, m := range due {
		advanced = append(advanced, movie.WithStatus(m, movie.StatusShowing))
	}
	if err := a.Store.BulkUpsert(ctx, advanced); err != nil {
		return 0, fmt.Errorf("lifecycle: upsert: %w", err)
	}

	log.Info("movies advanced to SHOWING", zap.Int("count", len(advanced)), zap.String("today", movie.FormatDate(day)))
	return len(advanced), nil
}
