package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/example/cinebox-platform/services/movie-batch/internal/kmdb"
	"github.com/example/cinebox-platform/services/movie-batch/internal/kobis"
	"github.com/example/cinebox-platform/services/movie-batch/internal/movie"
	"github.com/example/cinebox-platform/services/movie-batch/internal/store"
)

type fakeListing struct {
	movies   []kobis.Movie
	err      error
	year     int
	pageSize int
}

func (f *fakeListing) FetchListing(_ context.Context, year, pageSize int) ([]kobis.Movie, error) {
	f.year, f.pageSize = year, pageSize
	return f.movies, f.err
}

type detailCall struct {
	title, start, end string
}

type fakeDetail struct {
	mu        sync.Mutex
	responses map[string]*kmdb.Response
	errs      map[string]error
	calls     []detailCall
}

func (f *fakeDetail) FetchDetail(_ context.Context, title, start, end string) (*kmdb.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, detailCall{title: title, start: start, end: end})
	if err, ok := f.errs[title]; ok {
		return nil, err
	}
	return f.responses[title], nil
}

func (f *fakeDetail) called(title string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.title == title {
			return true
		}
	}
	return false
}

// recordingStore keeps every BulkUpsert batch and can fail on demand.
type recordingStore struct {
	*store.InMemoryMovieStore
	mu         sync.Mutex
	batches    [][]movie.Movie
	existsErr  error
	upsertErr  error
	findErr    error
	existsHits int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{InMemoryMovieStore: store.NewInMemoryMovieStore()}
}

func (s *recordingStore) ExistsEnrichedMatch(ctx context.Context, title string, releaseDate time.Time) (bool, error) {
	s.mu.Lock()
	s.existsHits++
	err := s.existsErr
	s.mu.Unlock()
	if err != nil {
		return false, err
	}
	return s.InMemoryMovieStore.ExistsEnrichedMatch(ctx, title, releaseDate)
}

func (s *recordingStore) FindByStatusBefore(ctx context.Context, status movie.Status, date time.Time) ([]movie.Movie, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.InMemoryMovieStore.FindByStatusBefore(ctx, status, date)
}

func (s *recordingStore) BulkUpsert(ctx context.Context, movies []movie.Movie) error {
	s.mu.Lock()
	s.batches = append(s.batches, append([]movie.Movie(nil), movies...))
	s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	return s.InMemoryMovieStore.BulkUpsert(ctx, movies)
}

func (s *recordingStore) lastBatch() []movie.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) == 0 {
		return nil
	}
	return s.batches[len(s.batches)-1]
}

func listingRow(title, openDt string) kobis.Movie {
	return kobis.Movie{
		MovieCd:   "cd-" + title,
		MovieNm:   title,
		OpenDt:    openDt,
		GenreAlt:  "드라마",
		Directors: []kobis.Director{{PeopleNm: "감독"}},
	}
}

func detailFor(poster, runtime string) *kmdb.Response {
	return &kmdb.Response{Data: []kmdb.DataBlock{{Result: []kmdb.Result{{
		Posters: poster,
		Runtime: runtime,
		Rating:  "15세이상관람가",
		Plots:   &kmdb.Plots{Plot: []kmdb.Plot{{PlotLang: "한국어", PlotText: "줄거리"}}},
		Actors:  &kmdb.Actors{Actor: []kmdb.Actor{{ActorNm: "배우1"}, {ActorNm: "배우2"}}},
	}}}}}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
