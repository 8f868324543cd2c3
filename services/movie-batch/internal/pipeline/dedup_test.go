package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/cinebox-platform/services/movie-batch/internal/movie"
)

func TestShouldSkipEnrichment(t *testing.T) {
	st := newRecordingStore()
	ctx := context.Background()
	require.NoError(t, st.BulkUpsert(ctx, []movie.Movie{
		{Title: "A", PosterImageURL: "a.jpg", ReleaseDate: day(2024, 3, 15), Status: movie.StatusUnreleased},
		{Title: "B", ReleaseDate: day(2024, 3, 15), Status: movie.StatusUnreleased},
	}))
	gate := DedupGate{Store: st}

	cases := []struct {
		name  string
		title string
		want  bool
	}{
		{"enriched match", "A", true},
		{"match without poster", "B", false},
		{"no row", "C", false},
		{"surrounding space", " A ", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := gate.ShouldSkipEnrichment(ctx, tc.title, day(2024, 3, 15))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	got, err := gate.ShouldSkipEnrichment(ctx, "A", day(2024, 3, 16))
	require.NoError(t, err)
	assert.False(t, got, "different release date is a different movie")
}

func TestShouldSkipEnrichment_StoreError(t *testing.T) {
	st := newRecordingStore()
	st.existsErr = errors.New("timeout")

	_, err := DedupGate{Store: st}.ShouldSkipEnrichment(context.Background(), "A", day(2024, 3, 15))
	assert.ErrorIs(t, err, st.existsErr)
}
