package movie

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/cinebox-platform/services/movie-batch/internal/kmdb"
	"github.com/example/cinebox-platform/services/movie-batch/internal/kobis"
)

// MaxActors caps the number of names kept in Movie.Actor.
const MaxActors = 6

var (
	// ErrNoEnrichment: the detail source had nothing for the record yet. Not a failure;
	// a later run picks the record up.
	ErrNoEnrichment = errors.New("movie: no enrichment data")
	// ErrMalformedRuntime: runtime was present but not an integer.
	ErrMalformedRuntime = errors.New("movie: malformed runtime")
	// ErrInvalidOpenDate: the listing row has no usable yyyyMMdd opening date.
	ErrInvalidOpenDate = errors.New("movie: invalid open date")
	ErrMissingTitle    = errors.New("movie: missing title")
)

// Normalize builds the canonical record from a listing row and its enrichment detail.
// Only the first result of the first data block is used.
func Normalize(raw kobis.Movie, detail *kmdb.Response) (Movie, error) {
	result, ok := detail.FirstResult()
	if !ok {
		return Movie{}, ErrNoEnrichment
	}
	title := strings.TrimSpace(raw.MovieNm)
	if title == "" {
		return Movie{}, ErrMissingTitle
	}
	releaseDate, err := ParseOpenDate(raw.OpenDt)
	if err != nil {
		return Movie{}, err
	}
	runtime, err := ParseRuntime(result.Runtime)
	if err != nil {
		return Movie{}, err
	}

	return Movie{
		Title:          title,
		Plot:           ExtractPlot(result),
		Director:       raw.DirectorNames(),
		Actor:          ExtractActors(result),
		Genre:          strings.TrimSpace(raw.GenreAlt),
		PosterImageURL: ExtractPoster(result.Posters),
		ReleaseDate:    releaseDate,
		RunTimeMinutes: runtime,
		RatingGrade:    RatingFromLabel(result.Rating),
		Status:         StatusUnreleased,
		LikeCount:      0,
	}, nil
}

// ExtractPoster returns the first poster URL of a "|"-joined list. URLs longer than the
// column allows are dropped rather than cut.
func ExtractPoster(posters string) string {
	urls := kmdb.Result{Posters: posters}.PosterURLs()
	if len(urls) == 0 {
		return ""
	}
	first := strings.TrimSpace(urls[0])
	if len(first) > MaxPosterURLLen {
		return ""
	}
	return first
}

// ExtractActors joins the first MaxActors actor entries with ", ".
func ExtractActors(r kmdb.Result) string {
	names := r.ActorNames()
	if len(names) > MaxActors {
		names = names[:MaxActors]
	}
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, ", ")
}

func ExtractPlot(r kmdb.Result) string {
	p, ok := r.FirstPlot()
	if !ok {
		return ""
	}
	return strings.TrimSpace(p.PlotText)
}

// ParseRuntime reads a runtime in minutes. Blank means 0.
func ParseRuntime(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedRuntime, s)
	}
	return n, nil
}
