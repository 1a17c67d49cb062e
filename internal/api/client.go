// Package api implements the TaskFlow REST boundary: a thin JSON client over
// net/http speaking the server's response envelope, with bearer-token auth
// and a single transparent refresh on 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/logging"
)

// Envelope is the server's uniform response shape. Any non-2xx status or
// transport failure is folded into Success=false with a human-readable
// message, so callers have one failure path regardless of cause.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Response pairs the envelope verdict with a decoded payload.
type Response[T any] struct {
	Success bool
	Data    *T
	Message string
}

// Client is the REST boundary. One instance per client session.
type Client struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	refreshing   bool
}

// NewClient creates a client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetTokens installs the access and refresh tokens.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	c.mu.Unlock()
}

// AccessToken returns the current access token.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// IsAuthenticated reports whether an access token is installed.
func (c *Client) IsAuthenticated() bool {
	return c.AccessToken() != ""
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs one API call and returns the response envelope. A
// transport-level failure is returned as an error; every settled response,
// 2xx or not, comes back as an envelope.
func (c *Client) Request(ctx context.Context, method, path string, body any) (Envelope, error) {
	env, status, err := c.do(ctx, method, path, body)
	if err != nil {
		return Envelope{}, err
	}

	if status == http.StatusUnauthorized {
		if refreshErr := c.refreshOnce(ctx); refreshErr == nil {
			env, status, err = c.do(ctx, method, path, body)
			if err != nil {
				return Envelope{}, err
			}
		}
	}

	if status == http.StatusUnauthorized {
		return Envelope{Success: false, Message: messageOr(env.Message, "authentication required")},
			errors.New(errors.ErrUnauthorized, messageOr(env.Message, "authentication required"))
	}

	if status < 200 || status > 299 {
		env.Success = false
		env.Message = messageOr(env.Message, fmt.Sprintf("request failed with status %d", status))
	}
	return env, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (Envelope, int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return Envelope{}, 0, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Envelope{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Envelope{}, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Envelope{}, 0, err
	}

	var env Envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			// A non-envelope body (proxy error page etc.) still settles the
			// call; treat it as a rejection.
			env = Envelope{Success: false, Message: fmt.Sprintf("unexpected response with status %d", resp.StatusCode)}
		}
	}
	return env, resp.StatusCode, nil
}

// refreshOnce exchanges the refresh token for a new access token. Concurrent
// 401s collapse into one refresh attempt; losers simply retry with whatever
// token is installed afterwards.
func (c *Client) refreshOnce(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing || c.refreshToken == "" {
		c.mu.Unlock()
		return errors.New(errors.ErrUnauthorized, "no refresh token")
	}
	c.refreshing = true
	refresh := c.refreshToken
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
	}()

	env, _, err := c.do(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": refresh})
	if err != nil {
		return err
	}
	if !env.Success {
		return errors.New(errors.ErrUnauthorized, messageOr(env.Message, "token refresh rejected"))
	}

	var payload struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = payload.AccessToken
	if payload.RefreshToken != "" {
		c.refreshToken = payload.RefreshToken
	}
	c.mu.Unlock()

	logging.Debug("access token refreshed", nil)
	return nil
}

// Call performs a request and decodes the envelope payload into T.
func Call[T any](ctx context.Context, c *Client, method, path string, body any) (Response[T], error) {
	env, err := c.Request(ctx, method, path, body)
	if err != nil {
		return Response[T]{Success: false, Message: errors.Message(err)}, err
	}

	out := Response[T]{Success: env.Success, Message: env.Message}
	if env.Success && len(env.Data) > 0 && string(env.Data) != "null" {
		var data T
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return Response[T]{Success: false, Message: "malformed server response"},
				fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
		out.Data = &data
	}
	return out, nil
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
