package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const userAgent = "mangadir/1.0 (+https://github.com/kerbaras/mangadir)"

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

type API struct {
	client   *http.Client
	baseURL  string
	username string
	password string
}

type Option func(*API)

// WithBasicAuth sends HTTP basic credentials with every request.
func WithBasicAuth(username, password string) Option {
	return func(a *API) {
		a.username = username
		a.password = password
	}
}

func WithClient(client *http.Client) Option {
	return func(a *API) {
		a.client = client
	}
}

func NewAPI(baseURL string, opts ...Option) *API {
	a := &API{client: http.DefaultClient, baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) BaseURL() string {
	return a.baseURL
}

// Resolve turns a path relative to the base URL into an absolute URL.
// Absolute URLs are returned unchanged.
func (a *API) Resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return a.baseURL + path
}

// Fetch performs a single GET. On success the caller owns the response body.
// Non-2xx responses are closed and reported as *StatusError.
func (a *API) Fetch(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.Resolve(rawURL), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if a.username != "" || a.password != "" {
		req.SetBasicAuth(a.username, a.password)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}

// Get decodes a JSON response from path into v.
func (a *API) Get(ctx context.Context, path string, params url.Values, v any) error {
	if params != nil {
		path += "?" + params.Encode()
	}
	resp, err := a.Fetch(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}
