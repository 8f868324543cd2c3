package movie

import "strings"

// RatingGrade is the closed set of viewing ratings. The zero value is not a grade;
// RatingFromLabel never returns it.
type RatingGrade string

const (
	RatingAll    RatingGrade = "ALL"
	RatingAge12  RatingGrade = "AGE_12"
	RatingAge15  RatingGrade = "AGE_15"
	RatingAge18  RatingGrade = "AGE_18"
	RatingNotSet RatingGrade = "NOT_SET"
)

type ratingInfo struct {
	label  string
	minAge int
}

var ratingTable = map[RatingGrade]ratingInfo{
	RatingAll:    {label: "전체관람가", minAge: 0},
	RatingAge12:  {label: "12세이상관람가", minAge: 12},
	RatingAge15:  {label: "15세이상관람가", minAge: 15},
	RatingAge18:  {label: "청소년관람불가", minAge: 18},
	RatingNotSet: {label: "등급미설정", minAge: 0},
}

var gradeByLabel = func() map[string]RatingGrade {
	m := make(map[string]RatingGrade, len(ratingTable))
	for g, info := range ratingTable {
		m[info.label] = g
	}
	return m
}()

// RatingFromLabel maps a KMDB rating label to a grade. Unknown or empty labels give
// RatingNotSet.
func RatingFromLabel(label string) RatingGrade {
	if g, ok := gradeByLabel[strings.TrimSpace(label)]; ok {
		return g
	}
	return RatingNotSet
}

func (g RatingGrade) Valid() bool {
	_, ok := ratingTable[g]
	return ok
}

// Label is the Korean rating label; unknown grades report the NOT_SET label.
func (g RatingGrade) Label() string {
	if info, ok := ratingTable[g]; ok {
		return info.label
	}
	return ratingTable[RatingNotSet].label
}

func (g RatingGrade) MinAge() int {
	return ratingTable[g].minAge
}

// ParseRatingGrade reads a stored grade, falling back to RatingNotSet.
func ParseRatingGrade(s string) RatingGrade {
	if g := RatingGrade(s); g.Valid() {
		return g
	}
	return RatingNotSet
}
