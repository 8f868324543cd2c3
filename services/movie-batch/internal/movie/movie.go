// Package movie holds the canonical catalog record and the pure rules that build it
// from a listing row plus enrichment detail.
package movie

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusUnreleased Status = "UNRELEASED"
	StatusUpcoming   Status = "UPCOMING"
	StatusShowing    Status = "SHOWING"
	StatusEnded      Status = "ENDED"
)

// statusOrder ranks statuses along the only direction the batch moves them.
var statusOrder = map[Status]int{
	StatusUnreleased: 0,
	StatusUpcoming:   1,
	StatusShowing:    2,
	StatusEnded:      3,
}

func (s Status) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// Rank is the position of s in the lifecycle; unknown statuses rank -1.
func (s Status) Rank() int {
	if r, ok := statusOrder[s]; ok {
		return r
	}
	return -1
}

// Advances reports whether moving from s to next goes forward.
func (s Status) Advances(next Status) bool {
	return next.Rank() > s.Rank()
}

// StatusNames lists statuses in lifecycle order. The Postgres store uses it to compare ranks.
func StatusNames() []string {
	return []string{string(StatusUnreleased), string(StatusUpcoming), string(StatusShowing), string(StatusEnded)}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("movie: unknown status %q", s)
	}
	return st, nil
}

// MaxPosterURLLen matches the poster_image_url column.
const MaxPosterURLLen = 500

// Movie is the persisted catalog entry. Empty optional strings mean "absent".
type Movie struct {
	ID             string
	Title          string
	Plot           string
	Director       string
	Actor          string
	Genre          string
	PosterImageURL string
	ReleaseDate    time.Time
	RunTimeMinutes int
	RatingGrade    RatingGrade
	Status         Status
	LikeCount      int
}

// Enriched reports whether the record carries the poster used as the completeness marker.
func (m Movie) Enriched() bool {
	return m.PosterImageURL != ""
}

// WithStatus returns a copy of m with status s. m itself is not modified.
func WithStatus(m Movie, s Status) Movie {
	m.Status = s
	return m
}
