package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/cinebox-platform/services/movie-batch/internal/movie"
)

// InMemoryMovieStore is a development-only in-memory implementation.
// It follows the same upsert rules as the Postgres store.
type InMemoryMovieStore struct {
	mu     sync.RWMutex
	movies map[string]movie.Movie // id -> movie
	order  []string               // insertion order, oldest first
	events int
}

func NewInMemoryMovieStore() *InMemoryMovieStore {
	return &InMemoryMovieStore{movies: make(map[string]movie.Movie)}
}

func (s *InMemoryMovieStore) ExistsEnrichedMatch(_ context.Context, title string, releaseDate time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := movie.DateOf(releaseDate)
	for _, id := range s.order {
		m := s.movies[id]
		if m.Title == title && m.ReleaseDate.Equal(day) && m.Enriched() {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryMovieStore) FindByStatusBefore(_ context.Context, status movie.Status, date time.Time) ([]movie.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := movie.DateOf(date)
	var out []movie.Movie
	for _, id := range s.order {
		m := s.movies[id]
		if m.Status == status && m.ReleaseDate.Before(day) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReleaseDate.Before(out[j].ReleaseDate)
	})
	return out, nil
}

func (s *InMemoryMovieStore) BulkUpsert(_ context.Context, movies []movie.Movie) error {
	for _, m := range movies {
		if strings.TrimSpace(m.Title) == "" {
			return errors.New("store: movie title is required")
		}
		if !m.Status.Valid() {
			return fmt.Errorf("store: movie %q: invalid status %q", m.Title, m.Status)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range movies {
		m.ReleaseDate = movie.DateOf(m.ReleaseDate)
		if !m.RatingGrade.Valid() {
			m.RatingGrade = movie.RatingNotSet
		}
		id := strings.TrimSpace(m.ID)
		if id == "" {
			id = s.findByNaturalKeyLocked(m.Title, m.ReleaseDate)
		}
		existing, ok := s.movies[id]
		if !ok {
			if id == "" {
				id = uuid.New().String()
			}
			m.ID = id
			m.LikeCount = 0
			s.movies[id] = m
			s.order = append(s.order, id)
			s.events++
			continue
		}
		m.ID = id
		m.LikeCount = existing.LikeCount
		if !existing.Status.Advances(m.Status) {
			m.Status = existing.Status
		}
		s.movies[id] = m
		s.events++
	}
	return nil
}

// Get returns a stored movie by id.
func (s *InMemoryMovieStore) Get(id string) (movie.Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movies[id]
	return m, ok
}

// All returns every stored movie in insertion order.
func (s *InMemoryMovieStore) All() []movie.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]movie.Movie, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.movies[id])
	}
	return out
}

// SetLikeCount simulates the service that owns like counts.
func (s *InMemoryMovieStore) SetLikeCount(id string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.movies[id]; ok {
		m.LikeCount = n
		s.movies[id] = m
	}
}

// Events is the number of upsert events the store would have emitted.
func (s *InMemoryMovieStore) Events() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events
}

func (s *InMemoryMovieStore) findByNaturalKeyLocked(title string, day time.Time) string {
	for _, id := range s.order {
		m := s.movies[id]
		if m.Title == title && m.ReleaseDate.Equal(day) {
			return id
		}
	}
	return ""
}
