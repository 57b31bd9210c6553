package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPGateway is a Gateway backed by presigned-style object URLs: documents
// are fetched with plain GETs and results are written with plain PUTs against
// `{endpoint}/{bucket}/{key}`. The client is safe for concurrent use and is
// meant to be constructed once and shared; its connection pool parallelizes
// concurrent transfers.
type HTTPGateway struct {
	client          *http.Client
	endpoint        string
	docsBucket      string
	extractedBucket string
}

// HTTPConfig holds gateway construction options.
type HTTPConfig struct {
	Endpoint        string
	DocsBucket      string
	ExtractedBucket string
	Timeout         time.Duration
}

// NewHTTPGateway creates a gateway against an HTTP object-store endpoint.
func NewHTTPGateway(cfg HTTPConfig) *HTTPGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPGateway{
		client:          &http.Client{Timeout: timeout},
		endpoint:        strings.TrimRight(cfg.Endpoint, "/"),
		docsBucket:      cfg.DocsBucket,
		extractedBucket: cfg.ExtractedBucket,
	}
}

// Fetch downloads a document from the docs bucket.
func (g *HTTPGateway) Fetch(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.objectURL(g.docsBucket, key), nil)
	if err != nil {
		return nil, &TransientError{Op: "fetch", Key: key, Err: err}
	}

	res, err := g.client.Do(req)
	if err != nil {
		return nil, &TransientError{Op: "fetch", Key: key, Err: err}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
	case res.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	default:
		return nil, &TransientError{Op: "fetch", Key: key, Status: res.StatusCode}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransientError{Op: "fetch", Key: key, Err: err}
	}
	return body, nil
}

// Upload writes the body to the extracted bucket and returns the object key.
func (g *HTTPGateway) Upload(ctx context.Context, key string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		g.objectURL(g.extractedBucket, key), bytes.NewReader(body))
	if err != nil {
		return "", &TransientError{Op: "upload", Key: key, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return "", &TransientError{Op: "upload", Key: key, Err: err}
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &TransientError{Op: "upload", Key: key, Status: res.StatusCode}
	}
	return key, nil
}

// objectURL builds the object URL, escaping each path segment while keeping
// the key's slashes as hierarchy.
func (g *HTTPGateway) objectURL(bucket, key string) string {
	segments := strings.Split(key, "/")
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return g.endpoint + "/" + url.PathEscape(bucket) + "/" + strings.Join(escaped, "/")
}
