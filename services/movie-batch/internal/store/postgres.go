package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/cinebox-platform/services/movie-batch/internal/movie"
)

const movieEventUpserted = "catalog.movie.upserted"

// PostgresMovieStore is the production Postgres-backed implementation.
type PostgresMovieStore struct {
	db *pgxpool.Pool
}

func NewPostgresMovieStore(db *pgxpool.Pool) *PostgresMovieStore {
	return &PostgresMovieStore{db: db}
}

// ── reads ──────────────────────────────────────────────────────────────────

func (s *PostgresMovieStore) ExistsEnrichedMatch(ctx context.Context, title string, releaseDate time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
SELECT EXISTS (
  SELECT 1 FROM movie
  WHERE title=$1 AND release_date=$2 AND poster_image_url IS NOT NULL AND poster_image_url <> ''
)`, title, movie.DateOf(releaseDate)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store: exists enriched match: %w", err)
	}
	return exists, nil
}

func (s *PostgresMovieStore) FindByStatusBefore(ctx context.Context, status movie.Status, date time.Time) ([]movie.Movie, error) {
	rows, err := s.db.Query(ctx, `
SELECT id::text, title, plot, director, actor, genre, poster_image_url, release_date,
       run_time_minutes, rating_grade, status, like_count
FROM movie WHERE status=$1 AND release_date < $2
ORDER BY release_date ASC, id ASC`, string(status), movie.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("store: find by status: %w", err)
	}
	defer rows.Close()
	return scanMovies(rows)
}

// ── writes ─────────────────────────────────────────────────────────────────

func (s *PostgresMovieStore) BulkUpsert(ctx context.Context, movies []movie.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, m := range movies {
		if strings.TrimSpace(m.Title) == "" {
			return errors.New("store: movie title is required")
		}
		if !m.Status.Valid() {
			return fmt.Errorf("store: movie %q: invalid status %q", m.Title, m.Status)
		}
		id, err := upsertMovie(ctx, tx, m, now)
		if err != nil {
			return err
		}
		if err := insertOutboxEvent(ctx, tx, map[string]any{
			"movie_id":     id.String(),
			"title":        m.Title,
			"release_date": movie.FormatDate(m.ReleaseDate),
			"status":       string(m.Status),
		}); err != nil {
			return fmt.Errorf("store: outbox: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// ── helpers ────────────────────────────────────────────────────────────────

// upsertMovie resolves the target row (explicit ID, then natural key) and writes it.
func upsertMovie(ctx context.Context, tx pgx.Tx, m movie.Movie, now time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	if strings.TrimSpace(m.ID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(m.ID))
		if err != nil {
			return uuid.Nil, fmt.Errorf("store: invalid movie id %q: %w", m.ID, err)
		}
		id = parsed
		updated, err := updateMovie(ctx, tx, id, m, now)
		if err != nil {
			return uuid.Nil, err
		}
		if updated {
			return id, nil
		}
		return id, insertMovie(ctx, tx, id, m, now)
	}

	err := tx.QueryRow(ctx,
		`SELECT id FROM movie WHERE title=$1 AND release_date=$2 ORDER BY created_at ASC LIMIT 1`,
		m.Title, movie.DateOf(m.ReleaseDate),
	).Scan(&id)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("store: lookup natural key: %w", err)
		}
		id = uuid.New()
		return id, insertMovie(ctx, tx, id, m, now)
	}
	if _, err := updateMovie(ctx, tx, id, m, now); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func insertMovie(ctx context.Context, tx pgx.Tx, id uuid.UUID, m movie.Movie, now time.Time) error {
	if _, err := tx.Exec(ctx, `
INSERT INTO movie (id, title, plot, director, actor, genre, poster_image_url, release_date,
                   run_time_minutes, rating_grade, status, like_count, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,0,$12,$12)`,
		id, m.Title, nullable(m.Plot), nullable(m.Director), nullable(m.Actor), nullable(m.Genre),
		nullable(m.PosterImageURL), movie.DateOf(m.ReleaseDate), m.RunTimeMinutes,
		string(gradeOrDefault(m.RatingGrade)), string(m.Status), now,
	); err != nil {
		return fmt.Errorf("store: insert movie: %w", err)
	}
	return nil
}

// updateMovie overwrites the descriptive columns. like_count is left alone and status only
// moves to a later lifecycle position.
func updateMovie(ctx context.Context, tx pgx.Tx, id uuid.UUID, m movie.Movie, now time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
UPDATE movie
SET title=$2, plot=$3, director=$4, actor=$5, genre=$6, poster_image_url=$7, release_date=$8,
    run_time_minutes=$9, rating_grade=$10,
    status = CASE
      WHEN array_position($11::text[], $12::text) > COALESCE(array_position($11::text[], status::text), 0)
      THEN $12::text ELSE status END,
    updated_at=$13
WHERE id=$1`,
		id, m.Title, nullable(m.Plot), nullable(m.Director), nullable(m.Actor), nullable(m.Genre),
		nullable(m.PosterImageURL), movie.DateOf(m.ReleaseDate), m.RunTimeMinutes,
		string(gradeOrDefault(m.RatingGrade)), movie.StatusNames(), string(m.Status), now,
	)
	if err != nil {
		return false, fmt.Errorf("store: update movie: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO movie_outbox (id, event_type, payload) VALUES ($1,$2,$3)`,
		uuid.New(), movieEventUpserted, b,
	)
	return err
}

func scanMovies(rows pgx.Rows) ([]movie.Movie, error) {
	var out []movie.Movie
	for rows.Next() {
		var (
			m                                    movie.Movie
			plot, director, actor, genre, poster *string
			grade, status                        string
		)
		if err := rows.Scan(&m.ID, &m.Title, &plot, &director, &actor, &genre, &poster, &m.ReleaseDate,
			&m.RunTimeMinutes, &grade, &status, &m.LikeCount); err != nil {
			return nil, fmt.Errorf("store: scan movie: %w", err)
		}
		m.Plot, m.Director, m.Actor, m.Genre, m.PosterImageURL = deref(plot), deref(director), deref(actor), deref(genre), deref(poster)
		m.RatingGrade = movie.ParseRatingGrade(grade)
		m.Status = movie.Status(status)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: rows: %w", err)
	}
	return out, nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func gradeOrDefault(g movie.RatingGrade) movie.RatingGrade {
	if g.Valid() {
		return g
	}
	return movie.RatingNotSet
}
