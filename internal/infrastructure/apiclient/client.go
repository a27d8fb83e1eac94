// Package apiclient is the single point of outbound communication with the
// bookstore backend. It owns the bearer token for the process lifetime and
// persists it through a ports.TokenStore.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hindibooks/storefront/internal/api/metrics"
	"github.com/hindibooks/storefront/internal/core/domain"
	"github.com/hindibooks/storefront/internal/core/ports"
)

// Config holds the transport settings. A zero Timeout leaves timeouts to the
// caller's context.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the bookstore REST backend.
type Client struct {
	baseURL string
	http    *http.Client
	store   ports.TokenStore
	log     zerolog.Logger

	mu    sync.RWMutex
	token string
}

// New builds a Client. The persisted token is not read until RestoreToken.
func New(cfg Config, store ports.TokenStore, log zerolog.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		store:   store,
		log:     log.With().Str("component", "apiclient").Logger(),
	}
}

// Token returns the in-memory bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the token in memory and in durable storage. An empty
// token clears both. Requests already in flight keep the header they were
// built with.
func (c *Client) SetToken(ctx context.Context, token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	var err error
	if token == "" {
		err = c.store.Clear(ctx)
	} else {
		err = c.store.Save(ctx, token)
	}
	if err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// RestoreToken loads the persisted token into memory and returns it.
func (c *Client) RestoreToken(ctx context.Context) (string, error) {
	token, err := c.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("restore token: %w", err)
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return token, nil
}

// endpoint identifies a backend route for metrics and logging.
type endpoint struct {
	method string
	route  string
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

// request sends one JSON request and decodes a 2xx body into out (when
// non-nil). Non-2xx responses become *domain.RequestError; transport
// failures wrap domain.ErrNetwork.
func (c *Client) request(ctx context.Context, ep endpoint, path string, body any, requiresAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", ep.method, ep.route, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, ep.method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", ep.method, ep.route, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requiresAuth {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(ep.method, ep.route).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(ep.method, ep.route, "network_error").Inc()
		c.log.Warn().Err(err).Str("method", ep.method).Str("path", path).Msg("backend unreachable")
		return fmt.Errorf("%w: %s %s: %w", domain.ErrNetwork, ep.method, path, err)
	}
	defer resp.Body.Close()

	metrics.BackendRequestsTotal.WithLabelValues(ep.method, ep.route, strconv.Itoa(resp.StatusCode)).Inc()
	c.log.Debug().
		Str("method", ep.method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return &domain.RequestError{
			StatusCode: resp.StatusCode,
			Method:     ep.method,
			Path:       path,
			Message:    errorMessage(resp.StatusCode, data),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response: %w", ep.method, ep.route, err)
	}
	return nil
}

// errorMessage prefers the backend's string "detail", then "error", then a
// status-code fallback.
func errorMessage(status int, data []byte) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil {
		var detail string
		if len(eb.Detail) > 0 && json.Unmarshal(eb.Detail, &detail) == nil && detail != "" {
			return detail
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}
