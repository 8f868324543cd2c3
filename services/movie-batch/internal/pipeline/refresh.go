// Package pipeline runs the catalog refresh (listing, dedup, enrichment, normalization,
// one bulk upsert) and the status lifecycle advance.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/cinebox-platform/services/movie-batch/internal/kmdb"
	"github.com/example/cinebox-platform/services/movie-batch/internal/kobis"
	"github.com/example/cinebox-platform/services/movie-batch/internal/movie"
	"github.com/example/cinebox-platform/services/movie-batch/internal/ratelimit"
	"github.com/example/cinebox-platform/services/movie-batch/internal/store"
)

type Refresher struct {
	Log     *zap.Logger
	Listing kobis.Provider
	Detail  kmdb.Provider
	Store   store.MovieStore
	// Limiter paces detail lookups; nil means unlimited.
	Limiter ratelimit.Waiter
	// PageSize is the listing itemPerPage (1..100, default 100).
	PageSize int
	// Concurrency bounds in-flight detail lookups; values below 1 mean sequential.
	Concurrency int
}

type rowResult struct {
	movie   movie.Movie
	outcome Outcome
}

// Run refreshes the catalog for movies opening in year. A listing failure aborts the run
// before anything is written; per-row failures only drop that row. All normalized rows
// are written with a single BulkUpsert at the end.
func (r Refresher) Run(ctx context.Context, year int) (Report, error) {
	log := r.logger().With(zap.Int("year", year))
	report := Report{Year: year}

	raws, err := r.Listing.FetchListing(ctx, year, r.PageSize)
	if err != nil {
		log.Error("listing fetch failed, run aborted", zap.Error(err))
		return report, fmt.Errorf("refresh %d: %w", year, err)
	}
	report.Listed = len(raws)

	gate := DedupGate{Store: r.Store}
	results := make([]rowResult, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.Concurrency))
	for i, raw := range raws {
		g.Go(func() error {
			res, err := r.processRow(gctx, gate, raw)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("refresh run failed", zap.Error(err))
		return report, fmt.Errorf("refresh %d: %w", year, err)
	}

	batch := make([]movie.Movie, 0, len(raws))
	for _, res := range results {
		report.count(res.outcome)
		if res.outcome == OutcomeEnriched {
			batch = append(batch, res.movie)
		}
	}

	if err := r.Store.BulkUpsert(ctx, batch); err != nil {
		log.Error("bulk upsert failed", zap.Int("batch", len(batch)), zap.Error(err))
		return report, fmt.Errorf("refresh %d: upsert: %w", year, err)
	}
	report.Saved = len(batch)

	log.Info("refresh finished", report.Fields()...)
	return report, nil
}

// processRow returns an error only for failures that must abort the run (store errors,
// cancellation). Everything else is reported as an Outcome.
func (r Refresher) processRow(ctx context.Context, gate DedupGate, raw kobis.Movie) (rowResult, error) {
	log := r.logger().With(zap.String("movie_cd", raw.MovieCd), zap.String("title", raw.MovieNm))

	title := strings.TrimSpace(raw.MovieNm)
	if title == "" {
		log.Warn("listing row without title dropped")
		return rowResult{outcome: OutcomeMalformed}, nil
	}
	releaseDate, err := movie.ParseOpenDate(raw.OpenDt)
	if err != nil {
		log.Warn("listing row dropped", zap.String("open_dt", raw.OpenDt), zap.Error(err))
		return rowResult{outcome: OutcomeInvalidDate}, nil
	}

	skip, err := gate.ShouldSkipEnrichment(ctx, title, releaseDate)
	if err != nil {
		return rowResult{}, err
	}
	if skip {
		log.Debug("already enriched, skipping")
		return rowResult{outcome: OutcomeSkipped}, nil
	}

	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			return rowResult{}, err
		}
	}

	window := movie.EnrichmentWindow(releaseDate)
	detail, err := r.Detail.FetchDetail(ctx, title, window.Start, window.End)
	if err != nil {
		if ctx.Err() != nil {
			return rowResult{}, ctx.Err()
		}
		if errors.Is(err, kmdb.ErrEncoding) {
			log.Warn("title encoding failed, row dropped", zap.Error(err))
			return rowResult{outcome: OutcomeEncodingFailed}, nil
		}
		log.Warn("detail lookup failed, row dropped", zap.Error(err))
		return rowResult{outcome: OutcomeTransportFailed}, nil
	}

	m, err := movie.Normalize(raw, detail)
	switch {
	case err == nil:
		log.Debug("movie enriched", zap.String("release_date", window.End))
		return rowResult{movie: m, outcome: OutcomeEnriched}, nil
	case errors.Is(err, movie.ErrNoEnrichment):
		log.Info("no detail data yet, deferred", zap.String("window_start", window.Start), zap.String("window_end", window.End))
		return rowResult{outcome: OutcomeNoData}, nil
	case errors.Is(err, movie.ErrInvalidOpenDate):
		log.Warn("row dropped", zap.Error(err))
		return rowResult{outcome: OutcomeInvalidDate}, nil
	default:
		log.Warn("row dropped", zap.Error(err))
		return rowResult{outcome: OutcomeMalformed}, nil
	}
}

func (r Refresher) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}
