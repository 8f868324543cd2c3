package kmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "http://api.koreafilm.or.kr/openapi-data2/wisenut/search_api/search_json2.jsp?collection=kmdb_new2&detail=Y"

var (
	// ErrEncoding means the title could not be turned into a query parameter.
	ErrEncoding = errors.New("kmdb: title encoding failed")
	// ErrTransport covers network failures, non-200 answers and undecodable bodies.
	ErrTransport = errors.New("kmdb: transport failed")
)

type Client struct {
	BaseURL    string
	ServiceKey string
	HTTPClient *http.Client
}

func New(baseURL, serviceKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimSpace(baseURL), ServiceKey: serviceKey, HTTPClient: &http.Client{Timeout: 10 * time.Second}}
}

// FetchDetail searches KMDB for title released within [windowStart, windowEnd]
// (both yyyyMMdd). A response without results is not an error; callers inspect it.
func (c *Client) FetchDetail(ctx context.Context, title, windowStart, windowEnd string) (*Response, error) {
	encoded, err := EncodeTitle(title)
	if err != nil {
		return nil, err
	}
	rawURL, err := c.detailURL(encoded, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	// KMDB labels its JSON as text/html; accept both.
	req.Header.Set("Accept", "application/json, text/html")
	req.Header.Set("User-Agent", "cinebox-movie-batch/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d body=%q", ErrTransport, resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	var out Response
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: decode error: %w body=%q", ErrTransport, err, string(b[:min(len(b), 200)]))
	}
	return &out, nil
}

// detailURL appends the search parameters to BaseURL, which usually already carries
// collection and detail. The title is passed pre-encoded.
func (c *Client) detailURL(encodedTitle, windowStart, windowEnd string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: base url: %w", ErrTransport, err)
	}
	q := u.Query()
	q.Del("title")
	q.Set("releaseDts", windowStart)
	q.Set("releaseDte", windowEnd)
	q.Set("ServiceKey", c.ServiceKey)
	u.RawQuery = q.Encode() + "&title=" + encodedTitle
	return u.String(), nil
}
