package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SessionPath is where the API serves the current session.
const SessionPath = "/api/auth/session"

// Fetcher loads the current session from the server.
type Fetcher interface {
	Fetch(ctx context.Context) (Session, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) (Session, error)

// Fetch implements Fetcher.
func (fn FetcherFunc) Fetch(ctx context.Context) (Session, error) {
	return fn(ctx)
}

// HTTPFetcher loads the session over HTTP.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
	token   func(ctx context.Context) string
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithBearerToken sets a function that supplies the bearer token per call.
func WithBearerToken(fn func(ctx context.Context) string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.token = fn
	}
}

// NewHTTPFetcher creates a fetcher for the API rooted at baseURL.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type sessionEnvelope struct {
	Data  *Session `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context) (Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+SessionPath, nil)
	if err != nil {
		return Session{}, errors.Join(ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if f.token != nil {
		if token := f.token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Session{}, errors.Join(ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	var env sessionEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return Session{}, errors.Join(ErrFetchFailed, fmt.Errorf("decode session (status %d): %w", resp.StatusCode, err))
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return Session{}, fmt.Errorf("%w: status %d: %s", ErrFetchFailed, resp.StatusCode, msg)
	}
	if env.Data == nil {
		return Session{}, ErrInvalidSession
	}
	return *env.Data, nil
}
