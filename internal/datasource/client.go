package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const maxResponseBytes = 4 << 20

// APIError is a refused or failed API call.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// UserMessage is the server's message for the operator.
func (e *APIError) UserMessage() string { return e.Message }

// HasStatus reports whether err is an APIError with the given HTTP status.
func HasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Details any    `json:"details,omitempty"`
	} `json:"error,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  oauth2.TokenSource
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// SetTokenSource replaces the credential source. Call it before the client
// is shared.
func (c *Client) SetTokenSource(ts oauth2.TokenSource) { c.tokens = ts }

// do sends one request and decodes a success envelope into out. A token
// failure is logged and the request goes out without credentials.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.send(ctx, method, path, query, body, out, true)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any, auth bool) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			c.logger.DebugContext(ctx, "access token unavailable, sending unauthenticated request", "path", path, "error", err)
		} else if tok != nil && tok.AccessToken != "" {
			tok.SetAuthHeader(req)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 || decodeErr != nil || !env.Success {
		return apiErrorFrom(resp.StatusCode, env, decodeErr)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func apiErrorFrom(status int, env envelope, decodeErr error) *APIError {
	apiErr := &APIError{Status: status, Message: strings.TrimSpace(env.Message)}
	if env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Details = env.Error.Details
	}
	if apiErr.Message == "" {
		switch {
		case decodeErr != nil && status >= 200 && status <= 299:
			apiErr.Message = "Unexpected response from server"
		case status >= 200 && status <= 299:
			apiErr.Message = "Request was not successful"
		default:
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}
