package kobis

import "strings"

// ListResponse is the searchMovieList envelope. MovieListResult is nil when the source
// answered without a result object (bad key, quota, maintenance page).
type ListResponse struct {
	MovieListResult *MovieListResult `json:"movieListResult"`
}

type MovieListResult struct {
	TotCnt    int     `json:"totCnt"`
	Source    string  `json:"source"`
	MovieList []Movie `json:"movieList"`
}

// Movie is one raw listing row.
type Movie struct {
	MovieCd     string     `json:"movieCd"`
	MovieNm     string     `json:"movieNm"`
	MovieNmEn   string     `json:"movieNmEn"`
	PrdtYear    string     `json:"prdtYear"`
	OpenDt      string     `json:"openDt"`
	TypeNm      string     `json:"typeNm"`
	PrdtStatNm  string     `json:"prdtStatNm"`
	NationAlt   string     `json:"nationAlt"`
	GenreAlt    string     `json:"genreAlt"`
	RepNationNm string     `json:"repNationNm"`
	RepGenreNm  string     `json:"repGenreNm"`
	Directors   []Director `json:"directors"`
}

type Director struct {
	PeopleNm string `json:"peopleNm"`
}

// DirectorNames joins director names with ", " in source order; "" when there are none.
func (m Movie) DirectorNames() string {
	names := make([]string, 0, len(m.Directors))
	for _, d := range m.Directors {
		if n := strings.TrimSpace(d.PeopleNm); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, ", ")
}
