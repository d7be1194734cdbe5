// Package api is the HTTP client of the journal persistence API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DikaaDK/Chronos-sub000/internal/journal"
	"github.com/DikaaDK/Chronos-sub000/internal/logging"
)

const maxBodySize = 4 << 20

var newRequestID = uuid.NewString

// Payload is the body of create and update requests.
type Payload struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Date      string `json:"date"`
	Progress  int    `json:"progress"`
}

// LoginResult is what a successful sign in yields. UserID is empty when the
// backend does not report it.
type LoginResult struct {
	Token  string
	UserID string
	Name   string
}

type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  logging.Logger

	mu    sync.RWMutex
	token string
}

// New returns a client for the API rooted at baseURL. timeout bounds every
// request; zero disables it.
func New(baseURL string, timeout time.Duration, l logging.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse api base url: unsupported scheme %q", u.Scheme)
	}
	return &Client{
		base:    u,
		http:    &http.Client{},
		timeout: timeout,
		logger:  l.With("module", "api"),
	}, nil
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a token. The token is not installed; the
// caller decides whether to keep it.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var body struct {
		Token       string          `json:"token"`
		AccessToken string          `json:"access_token"`
		UserID      journal.ID      `json:"user_id"`
		User        json.RawMessage `json:"user"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", in, &body); err != nil {
		return LoginResult{}, err
	}

	res := LoginResult{Token: body.Token, UserID: body.UserID.String()}
	if res.Token == "" {
		res.Token = body.AccessToken
	}
	if len(body.User) > 0 {
		var u struct {
			ID   journal.ID `json:"id"`
			Name string     `json:"name"`
		}
		if json.Unmarshal(body.User, &u) == nil {
			if res.UserID == "" {
				res.UserID = u.ID.String()
			}
			res.Name = u.Name
		}
	}
	if res.Token == "" {
		return LoginResult{}, &StatusError{Code: http.StatusUnauthorized, Message: "no token in login response"}
	}
	return res, nil
}

func (c *Client) ListJournals(ctx context.Context) ([]journal.Entry, error) {
	var out []journal.Entry
	if err := c.do(ctx, http.MethodGet, "/journals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateJournal(ctx context.Context, p Payload) (journal.Entry, error) {
	var out journal.Entry
	err := c.do(ctx, http.MethodPost, "/journals", p, &out)
	return out, err
}

func (c *Client) UpdateJournal(ctx context.Context, id journal.ID, p Payload) (journal.Entry, error) {
	var out journal.Entry
	err := c.do(ctx, http.MethodPut, "/journals/"+url.PathEscape(id.String()), p, &out)
	return out, err
}

func (c *Client) DeleteJournal(ctx context.Context, id journal.ID) error {
	return c.do(ctx, http.MethodDelete, "/journals/"+url.PathEscape(id.String()), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	reqID := newRequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return ctxErr
		}
		c.logger.Warn(ctx, "request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	c.logger.Debug(ctx, "api call", "method", method, "path", path, "status", resp.StatusCode, "request_id", reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrap(raw), out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// unwrap strips up to two levels of {"data": ...} envelopes.
func unwrap(raw []byte) []byte {
	for range 2 {
		var env map[string]json.RawMessage
		if json.Unmarshal(raw, &env) != nil {
			return raw
		}
		inner, ok := env["data"]
		if !ok {
			return raw
		}
		raw = inner
	}
	return raw
}

func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	return ""
}
