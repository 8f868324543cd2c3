package kobis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL  = "http://www.kobis.or.kr/kobisopenapi/webservice/rest/movie/searchMovieList.json"
	DefaultPageSize = 100
	MaxPageSize     = 100
)

// ErrSourceUnavailable means the listing could not be obtained for this run.
var ErrSourceUnavailable = errors.New("kobis: listing source unavailable")

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimSpace(baseURL), APIKey: apiKey, HTTPClient: &http.Client{Timeout: 15 * time.Second}}
}

// FetchListing returns up to pageSize movies whose opening year is year.
// pageSize is clamped to 1..100.
func (c *Client) FetchListing(ctx context.Context, year, pageSize int) ([]Movie, error) {
	if year <= 0 {
		return nil, fmt.Errorf("kobis: invalid year %d", year)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("kobis: base url: %w", err)
	}
	q := u.Query()
	q.Set("key", c.APIKey)
	q.Set("openStartDt", fmt.Sprintf("%04d", year))
	q.Set("itemPerPage", strconv.Itoa(ClampPageSize(pageSize)))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cinebox-movie-batch/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d body=%q", ErrSourceUnavailable, resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	var out ListResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v body=%q", ErrSourceUnavailable, err, string(b[:min(len(b), 200)]))
	}
	if out.MovieListResult == nil {
		return nil, fmt.Errorf("%w: no movieListResult body=%q", ErrSourceUnavailable, string(b[:min(len(b), 200)]))
	}
	return out.MovieListResult.MovieList, nil
}

func ClampPageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	}
	return n
}
