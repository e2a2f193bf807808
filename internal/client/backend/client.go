// Package backend is the client of the hosted authentication and database
// service. It owns the session: sign-in and sign-up store it, every request
// presents it, and sign-out drops it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atinyakov/GophNotes/internal/client/storage"
	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionStore persists the current session.
type SessionStore interface {
	// Load returns the stored session or nil when there is none.
	Load() (*models.Session, error)
	// Save replaces the stored session.
	Save(*models.Session) error
	// Clear drops the stored session.
	Clear() error
}

// Client talks to the hosted service's auth and REST endpoints.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	store   SessionStore
	log     *zap.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSessionStore sets where the session is kept. The default keeps it in memory.
func WithSessionStore(s SessionStore) Option {
	return func(c *Client) { c.store = s }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithClock overrides the time source used for session expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a Client for the service at baseURL authenticated with the
// public anonKey.
func New(baseURL, anonKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		store:   &storage.MemorySessionStore{},
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one call to the service.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	token  string
	header http.Header
}

// do performs r and decodes a successful JSON response into dst when dst is
// not nil. Every failure is returned as *Error.
func (c *Client) do(ctx context.Context, r request, dst any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return &Error{Message: fmt.Sprintf("encode request: %v", err), Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return transportError(err)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	token := r.token
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("backend request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Error(err),
		)
		return transportError(err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp)
	}
	if dst == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &Error{Status: resp.StatusCode, Message: fmt.Sprintf("invalid response: %v", err), Err: err}
	}
	return nil
}
