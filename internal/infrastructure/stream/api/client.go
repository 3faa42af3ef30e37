// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

// Package api is a minimal client for the Stream Video REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shashi162003/meetai-meeting-service/internal/logging"
)

// ClientAPI defines the Stream Video operations the service depends on.
type ClientAPI interface {
	UpdateCallMembers(ctx context.Context, callType, callID string, request *UpdateCallMembersRequest) error
	GetCall(ctx context.Context, callType, callID string) (*GetCallResponse, error)
	EndCall(ctx context.Context, callType, callID string) error
}

const (
	// BaseURL is the base URL for the Stream Video API.
	BaseURL = "https://video.stream-io-api.com"
	// DefaultClientTimeout bounds each HTTP request to the Stream API.
	DefaultClientTimeout = 30 * time.Second
	// DefaultServerTokenTTL is the lifetime of a generated server JWT.
	DefaultServerTokenTTL = 1 * time.Hour

	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 1 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// Config holds the configuration for the Stream client.
type Config struct {
	APIKey    string
	APISecret string
	// Optional: override base URL for testing.
	BaseURL string
	// Optional: override timeout for HTTP requests.
	Timeout time.Duration
	// Optional: retry configuration.
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// Client is an HTTP client for the Stream Video API. Requests are signed
// with a short-lived HS256 server token minted from the API secret.
type Client struct {
	httpClient *http.Client
	config     Config
}

var _ ClientAPI = (*Client)(nil)

// NewClient creates a new Stream API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = DefaultBackoffMultiplier
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// serverToken mints a short-lived HS256 server JWT for the Stream API.
func (c *Client) serverToken() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(DefaultServerTokenTTL).Unix(),
	})

	signed, err := token.SignedString([]byte(c.config.APISecret))
	if err != nil {
		return "", fmt.Errorf("signing server token: %w", err)
	}
	return signed, nil
}

func shouldRetry(statusCode int, err error) bool {
	if err != nil {
		return true
	}
	if statusCode >= 500 && statusCode < 600 {
		return true
	}
	return statusCode == http.StatusTooManyRequests
}

// calculateBackoff returns the exponential backoff for an attempt with ±25%
// jitter, clamped between the initial and max backoff.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return c.config.InitialBackoff
	}

	backoff := float64(c.config.InitialBackoff) * math.Pow(c.config.BackoffMultiplier, float64(attempt))
	if time.Duration(backoff) > c.config.MaxBackoff {
		backoff = float64(c.config.MaxBackoff)
	}

	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	withJitter := time.Duration(backoff + jitter)
	if withJitter < c.config.InitialBackoff {
		withJitter = c.config.InitialBackoff
	}
	return withJitter
}

func (c *Client) newRequest(ctx context.Context, method, path string, jsonBody []byte) (*http.Request, error) {
	fullURL := c.config.BaseURL + path
	parsed, err := url.Parse(fullURL)
	if err != nil {
		return nil, fmt.Errorf("parsing request url: %w", err)
	}
	query := parsed.Query()
	query.Set("api_key", c.config.APIKey)
	parsed.RawQuery = query.Encode()

	var bodyReader io.Reader
	if jsonBody != nil {
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, parsed.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	token, err := c.serverToken()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	req.Header.Set("Stream-Auth-Type", "jwt")
	return req, nil
}

// doRequest performs an authenticated request with retry and backoff. The
// caller owns the response body on success.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	var lastErr error
	var lastResp *http.Response

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		req, err := c.newRequest(ctx, method, path, jsonBody)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err == nil && resp != nil && !shouldRetry(resp.StatusCode, nil) {
			if lastResp != nil {
				_ = lastResp.Body.Close()
			}
			slog.DebugContext(ctx, "Stream API request completed",
				"method", method,
				"path", path,
				"status", resp.StatusCode,
				"duration", duration.String(),
				"attempt", attempt+1,
			)
			return resp, nil
		}

		if lastResp != nil {
			_ = lastResp.Body.Close()
		}
		lastErr, lastResp = err, resp

		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}

		if !shouldRetry(statusCode, err) {
			break
		}

		if attempt < c.config.MaxRetries {
			backoff := c.calculateBackoff(attempt)
			slog.WarnContext(ctx, "Stream API request failed, retrying",
				"method", method,
				"path", path,
				"status", statusCode,
				"attempt", attempt+1,
				"backoff", backoff.String(),
				logging.ErrKey, err,
			)
			select {
			case <-ctx.Done():
				if lastResp != nil {
					_ = lastResp.Body.Close()
				}
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		} else {
			slog.ErrorContext(ctx, "Stream API request failed after all retries",
				"method", method,
				"path", path,
				"status", statusCode,
				"attempts", attempt+1,
				logging.ErrKey, err,
				logging.PriorityCritical(),
			)
		}
	}

	if lastErr != nil {
		if lastResp != nil {
			_ = lastResp.Body.Close()
		}
		return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
	}
	return lastResp, nil
}

// checkResponse drains the response body and converts non-2xx statuses into
// an error carrying the API message.
func checkResponse(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseErrorResponse(resp.StatusCode, body)
	}
	return body, nil
}

func parseErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("stream API error (status %d, code %d): %s", statusCode, errResp.Code, errResp.Message)
	}
	return fmt.Errorf("stream API error (status %d): %s", statusCode, string(body))
}
