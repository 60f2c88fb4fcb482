// Package client talks to the booking backend over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"slotbook/internal/worker"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "slotbook:client:"

// Client is the HTTP client for the booking backend. GET calls are retried on
// network errors and optionally cached in Redis; mutations are sent once.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      worker.RetryPolicy

	redis    *redis.Client
	cacheTTL time.Duration
}

// New constructs a client for baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retry: worker.RetryPolicy{
			MaxRetries:    3,
			InitialDelay:  200 * time.Millisecond,
			MaxDelay:      2 * time.Second,
			BackoffFactor: 2,
		},
	}
}

// WithRetry replaces the retry policy used for GET requests.
func (c *Client) WithRetry(policy worker.RetryPolicy) *Client {
	c.retry = policy
	return c
}

// UseRedisCache configures optional Redis caching for public GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(val, out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, cachePrefix+key, data, c.cacheTTL).Err()
}

func (c *Client) dropCache(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	for i := range keys {
		keys[i] = cachePrefix + keys[i]
	}
	_ = c.redis.Del(ctx, keys...).Err()
}

func (c *Client) cachedGet(ctx context.Context, key, path string, out any) error {
	if c.readCache(ctx, key, out) {
		return nil
	}
	if err := c.doGet(ctx, path, "", out); err != nil {
		return err
	}
	c.writeCache(ctx, key, out)
	return nil
}

func (c *Client) doGet(ctx context.Context, path, token string, out any) error {
	return c.retry.Do(ctx, func() error {
		req, err := c.newRequest(ctx, http.MethodGet, path, token, nil)
		if err != nil {
			return err
		}
		return c.do(req, out)
	}, IsRetryable)
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, token, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	op := req.Method + " " + req.URL.Path

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(op, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &AuthError{Message: body.Message}
	case resp.StatusCode >= 500:
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: &APIError{Status: resp.StatusCode, Message: body.Message}}
	default:
		return &APIError{Status: resp.StatusCode, Message: body.Message}
	}
}

func requireToken(token string) error {
	if token == "" {
		return &AuthError{Message: "not logged in"}
	}
	return nil
}
