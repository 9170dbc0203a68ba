package source_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"facet/feature/versions/engine"
	"facet/feature/versions/source"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexBody = "created_at: 2024-04-01T00:00:05Z\n---\nrails 7.0.0 abc123\n"

func TestFetch_Plain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, indexBody)
	}))
	defer srv.Close()

	f := source.NewFetcher(srv.URL, 5*time.Second)
	body, err := f.Fetch(context.Background())
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, indexBody, string(data))
}

func TestFetch_Gzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, indexBody)
		gz.Close()
	}))
	defer srv.Close()

	f := source.NewFetcher(srv.URL, 5*time.Second)
	body, err := f.Fetch(context.Background())
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, indexBody, string(data))
}

func TestFetch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := source.NewFetcher(srv.URL, 5*time.Second)
	_, err := f.Fetch(context.Background())

	assert.ErrorIs(t, err, engine.ErrInputUnreadable)
}

func TestFetch_ConnectionRefused(t *testing.T) {
	f := source.NewFetcher("http://127.0.0.1:1", time.Second)
	_, err := f.Fetch(context.Background())

	assert.ErrorIs(t, err, engine.ErrInputUnreadable)
}
