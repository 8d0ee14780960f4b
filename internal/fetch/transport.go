// Package fetch retrieves raw dataset documents and turns them into canonical
// JSON values.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodyBytes caps how much of an upstream body is read.
	DefaultMaxBodyBytes int64 = 8 << 20

	defaultUserAgent = "catppuccin-api"
)

var (
	// ErrEmptyBody reports a successful response without content.
	ErrEmptyBody = errors.New("empty response body")

	// ErrBodyTooLarge reports a response larger than the configured cap.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")
)

// Transport fetches the raw bytes behind a URL.
type Transport interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// HTTPError is returned for non-2xx upstream responses.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s", e.StatusCode, e.URL)
}

// HTTPTransport fetches documents over HTTP(S).
type HTTPTransport struct {
	Client       *http.Client
	UserAgent    string
	MaxBodyBytes int64
}

// NewHTTPTransport returns a transport whose requests time out after timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{
		Client: &http.Client{Timeout: timeout},
	}
}

// FetchBytes performs a GET and returns the full body of a 2xx response.
func (t *HTTPTransport) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/plain;q=0.9, */*;q=0.5")
	req.Header.Set("User-Agent", t.userAgent())

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	limit := t.maxBodyBytes()
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, ErrBodyTooLarge
	}
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}

	return body, nil
}

func (t *HTTPTransport) userAgent() string {
	if t.UserAgent != "" {
		return t.UserAgent
	}
	return defaultUserAgent
}

func (t *HTTPTransport) maxBodyBytes() int64 {
	if t.MaxBodyBytes > 0 {
		return t.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}
