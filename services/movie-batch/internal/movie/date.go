package movie

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the 8-digit date format used by both providers.
const DateLayout = "20060102"

// EnrichmentWindowMonths is how far before the opening date KMDB is searched.
const EnrichmentWindowMonths = 3

// DateOf drops the clock part of t, keeping t's calendar day, as a UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseOpenDate reads a yyyyMMdd opening date.
func ParseOpenDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidOpenDate, s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidOpenDate, s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MinusMonths subtracts n calendar months, clamping to the last day of the target month
// (May 31 minus 3 months is Feb 28 or 29, not early March).
func MinusMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}

// Window is the inclusive release-date range used to query KMDB.
type Window struct {
	Start string
	End   string
}

// EnrichmentWindow returns [releaseDate - 3 months, releaseDate] as yyyyMMdd strings.
func EnrichmentWindow(releaseDate time.Time) Window {
	return Window{
		Start: FormatDate(MinusMonths(releaseDate, EnrichmentWindowMonths)),
		End:   FormatDate(releaseDate),
	}
}
