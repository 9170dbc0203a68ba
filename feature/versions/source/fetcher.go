package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"facet/feature/versions/engine"

	"github.com/klauspost/compress/gzip"
)

// Fetcher downloads the versions index over HTTP.
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher creates a fetcher for the given index URL.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		url: url,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				// We negotiate gzip ourselves to keep the decode streaming.
				DisableCompression: true,
			},
		},
	}
}

// Fetch returns a streaming reader over the decompressed index body.
// The caller owns the reader and must close it on every path.
func (f *Fetcher) Fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &engine.RunError{Kind: engine.ErrInputUnreadable, Err: err}
	}
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &engine.RunError{Kind: engine.ErrInputUnreadable, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &engine.RunError{
			Kind: engine.ErrInputUnreadable,
			Err:  fmt.Errorf("fetch %s: unexpected status %s", f.url, resp.Status),
		}
	}

	if resp.Header.Get("Content-Encoding") != "gzip" {
		return resp.Body, nil
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, &engine.RunError{Kind: engine.ErrInputUnreadable, Err: err}
	}
	return &gzipBody{gz: gz, body: resp.Body}, nil
}

// gzipBody closes both the gzip decoder and the underlying response body.
type gzipBody struct {
	gz   *gzip.Reader
	body io.ReadCloser
}

func (g *gzipBody) Read(p []byte) (int, error) {
	return g.gz.Read(p)
}

func (g *gzipBody) Close() error {
	err := g.gz.Close()
	if bodyErr := g.body.Close(); err == nil {
		err = bodyErr
	}
	return err
}
