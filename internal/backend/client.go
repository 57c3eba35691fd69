package backend

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

	"github.com/sozercan/review-sentiment/apimodels"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultMaxResponseBytes = 4 * 1024 * 1024

	requestIDHeader = "X-Request-ID"
)

// StatusError is returned for any non-2xx response. The status code is kept so
// callers can tell a missing game (404) apart from every other failure.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err carries a 404 from the backend.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// Client talks to the sentiment backend. It performs no retries.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	maxResponseBytes int64
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResponseBytes = n
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	slog.Info("Creating backend client", "baseURL", baseURL)
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend base URL cannot be empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}

	c := &Client{
		baseURL:          baseURL,
		httpClient:       &http.Client{Timeout: defaultTimeout},
		maxResponseBytes: defaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) CheckHealth(ctx context.Context) (*apimodels.HealthResponse, error) {
	var resp apimodels.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Predict classifies text. An empty gameName is sent as "Unknown".
func (c *Client) Predict(ctx context.Context, text, gameName string) (*apimodels.PredictionResponse, error) {
	if gameName == "" {
		gameName = apimodels.UnknownGame
	}
	req := apimodels.PredictionRequest{
		Text:     text,
		GameName: gameName,
	}

	var resp apimodels.PredictionResponse
	if err := c.do(ctx, http.MethodPost, "/predict-sentiment", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) FetchAnalytics(ctx context.Context, gameName string) (*apimodels.AnalyticsResponse, error) {
	var resp apimodels.AnalyticsResponse
	if err := c.do(ctx, http.MethodGet, "/game-analytics/"+url.PathEscape(gameName), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	slog.Debug("Calling backend", "method", method, "path", path, "request_id", requestID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Backend request failed", "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := c.readBody(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	slog.Debug("Backend responded", "path", path, "status", resp.StatusCode, "duration", time.Since(start), "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errBody apimodels.ErrorResponse
		if json.Unmarshal(raw, &errBody) == nil {
			statusErr.Message = errBody.Error
		}
		return statusErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, c.maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > c.maxResponseBytes {
		return nil, fmt.Errorf("response exceeded limit (%d bytes)", c.maxResponseBytes)
	}
	return raw, nil
}
