package kobis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listBody = `{"movieListResult":{"totCnt":2,"source":"영화진흥위원회","movieList":[
 {"movieCd":"20241234","movieNm":"A","movieNmEn":"A","prdtYear":"2024","openDt":"20240315","typeNm":"장편",
  "prdtStatNm":"개봉","nationAlt":"한국","genreAlt":"드라마","repNationNm":"한국","repGenreNm":"드라마",
  "directors":[{"peopleNm":"감독1"},{"peopleNm":"감독2"}]},
 {"movieCd":"20245678","movieNm":"B","openDt":"","directors":[]}]}}`

func TestFetchListing(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(listBody))
	}))
	defer srv.Close()

	movies, err := New(srv.URL, "kobis-key").FetchListing(context.Background(), 2024, 50)
	require.NoError(t, err)
	require.Len(t, movies, 2)

	q := got.URL.Query()
	assert.Equal(t, "kobis-key", q.Get("key"))
	assert.Equal(t, "2024", q.Get("openStartDt"))
	assert.Equal(t, "50", q.Get("itemPerPage"))

	assert.Equal(t, "A", movies[0].MovieNm)
	assert.Equal(t, "20240315", movies[0].OpenDt)
	assert.Equal(t, "감독1, 감독2", movies[0].DirectorNames())
	assert.Equal(t, "", movies[1].DirectorNames())
}

func TestFetchListing_ClampsPageSize(t *testing.T) {
	var perPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		perPage = r.URL.Query().Get("itemPerPage")
		_, _ = w.Write([]byte(`{"movieListResult":{"totCnt":0,"movieList":[]}}`))
	}))
	defer srv.Close()

	movies, err := New(srv.URL, "k").FetchListing(context.Background(), 2025, 500)
	require.NoError(t, err)
	assert.Empty(t, movies)
	assert.Equal(t, "100", perPage)
}

func TestFetchListing_SourceUnavailable(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"missing envelope": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"faultInfo":{"message":"유효하지않은 키값입니다."}}`))
		},
		"non-200": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"not json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html></html>`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			_, err := New(srv.URL, "k").FetchListing(context.Background(), 2024, 100)
			assert.ErrorIs(t, err, ErrSourceUnavailable)
		})
	}
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, 1, ClampPageSize(1))
	assert.Equal(t, 100, ClampPageSize(101))
}
