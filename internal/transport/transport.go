// Package transport reaches the validation/conversion service an export
// submits its XML to. One request per call, no retries.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rendis/batchml/pkg/schema"
)

const (
	defaultMaxResponseBody = 10 * 1024 * 1024 // 10MB
	defaultTimeout         = 30 * time.Second
)

// Response is a completed request: any HTTP status, including errors.
type Response struct {
	Status      int
	ContentType string
	Data        []byte
}

// Success reports a status in [200, 300).
func (r *Response) Success() bool {
	return r.Status >= 200 && r.Status < 300
}

// Transport submits documents to the service. An error means no response
// was received at all; every HTTP status is returned as a Response.
type Transport interface {
	Get(ctx context.Context, path string, params url.Values) (*Response, error)
	Post(ctx context.Context, path, contentType string, body []byte) (*Response, error)
}

// Config configures an HTTP transport.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxResponseBody int64
	// Client overrides the default client, mainly in tests.
	Client *http.Client
}

// HTTP is a Transport over net/http.
type HTTP struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
	maxBody int64
}

// NewHTTP validates the base URL and applies defaults.
func NewHTTP(cfg Config) (*HTTP, error) {
	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, schema.NewErrorf(schema.ErrCodeInvalidInput, "transport: invalid service url %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxResponseBody <= 0 {
		cfg.MaxResponseBody = defaultMaxResponseBody
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	return &HTTP{base: u, client: client, timeout: cfg.Timeout, maxBody: cfg.MaxResponseBody}, nil
}

// BaseURL returns the service root requests are resolved against.
func (t *HTTP) BaseURL() string {
	return t.base.String()
}

func (t *HTTP) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	u := t.resolve(path)
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return t.do(ctx, http.MethodGet, u.String(), "", nil)
}

func (t *HTTP) Post(ctx context.Context, path, contentType string, body []byte) (*Response, error) {
	return t.do(ctx, http.MethodPost, t.resolve(path).String(), contentType, body)
}

func (t *HTTP) resolve(path string) *url.URL {
	u := *t.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return &u
}

func (t *HTTP) do(ctx context.Context, method, rawURL, contentType string, body []byte) (*Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: %s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody))
	if err != nil {
		return nil, fmt.Errorf("transport: read response: %w", err)
	}
	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
