package kmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDetail_QueryParameters(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		// KMDB answers JSON with an HTML content type.
		w.Header().Set("Content-Type", "text/html;charset=UTF-8")
		_, _ = w.Write([]byte(`{"Data":[{"Result":[{"runtime":"101","posters":"a.jpg|b.jpg"}]}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/search_json2.jsp?collection=kmdb_new2&detail=Y", "svc-key")
	resp, err := c.FetchDetail(context.Background(), "A", "20231215", "20240315")
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "A", q.Get("title"))
	assert.Equal(t, "20231215", q.Get("releaseDts"))
	assert.Equal(t, "20240315", q.Get("releaseDte"))
	assert.Equal(t, "svc-key", q.Get("ServiceKey"))
	assert.Equal(t, "kmdb_new2", q.Get("collection"))
	assert.Equal(t, "Y", q.Get("detail"))
	assert.Contains(t, got.URL.RawQuery, "title=A")

	r, ok := resp.FirstResult()
	require.True(t, ok)
	assert.Equal(t, "101", r.Runtime)
}

func TestFetchDetail_EncodesKoreanTitle(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"Data":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k").FetchDetail(context.Background(), "서울의 봄", "20230822", "20231122")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(rawQuery, "title=%EC%84%9C%EC%9A%B8%EC%9D%98+%EB%B4%84"), rawQuery)
}

func TestFetchDetail_EmptyDataIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Query":"","TotalCount":0,"Data":[{"CollName":"kmdb_new2","Count":0}]}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "k").FetchDetail(context.Background(), "A", "20231215", "20240315")
	require.NoError(t, err)
	_, ok := resp.FirstResult()
	assert.False(t, ok)
}

func TestFetchDetail_EncodingFailureSkipsTransport(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k").FetchDetail(context.Background(), "bad\xff", "20231215", "20240315")
	assert.ErrorIs(t, err, ErrEncoding)
	assert.False(t, called)
}

func TestFetchDetail_TransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("title") == "down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.FetchDetail(context.Background(), "down", "20231215", "20240315")
	assert.ErrorIs(t, err, ErrTransport)

	_, err = c.FetchDetail(context.Background(), "html", "20231215", "20240315")
	assert.ErrorIs(t, err, ErrTransport)

	closed := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	closed.Close()
	_, err = New(closed.URL, "k").FetchDetail(context.Background(), "A", "20231215", "20240315")
	assert.ErrorIs(t, err, ErrTransport)
}
