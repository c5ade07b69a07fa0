// Package syncclient talks to the sync server: accounts, the cloud copy of
// the ledger and the monthly leaderboard.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Bernardxu123/unicom-calc/internal/ledger"
	"github.com/Bernardxu123/unicom-calc/internal/session"
)

// DefaultSuccessRevertDelay is how long a successful save stays visible.
const DefaultSuccessRevertDelay = 2 * time.Second

// maxResponseBytes caps every response body read from the server.
const maxResponseBytes = 4 << 20

// ErrNotLoggedIn is returned by calls that need a session when there is none.
var ErrNotLoggedIn = errors.New("syncclient: not logged in")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client is bound to one ledger and one session.
type Client struct {
	BaseURL            string
	HTTP               *http.Client
	Session            *session.Store
	Ledger             *ledger.Store
	SuccessRevertDelay time.Duration
	Log                *slog.Logger
}

// New returns a client with a timeout-bound HTTP client.
func New(baseURL string, timeout time.Duration, sess *session.Store, led *ledger.Store) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL:            strings.TrimRight(baseURL, "/"),
		HTTP:               &http.Client{Timeout: timeout},
		Session:            sess,
		Ledger:             led,
		SuccessRevertDelay: DefaultSuccessRevertDelay,
		Log:                slog.Default().With("component", "syncclient"),
	}
}

// do sends a JSON request and decodes a JSON answer into out (when non-nil).
// A non-2xx status becomes *APIError carrying the server's "error" text.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		switch v := in.(type) {
		case []byte:
			body = bytes.NewReader(v)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode request: %w", err)
			}
			body = bytes.NewReader(b)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Log.Warn("request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Message = envelope.Error
		}
		c.Log.Warn("server error", "method", method, "path", path, "status", resp.StatusCode)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// token returns the bearer token of an active session.
func (c *Client) token() (string, error) {
	if c.Session == nil || !c.Session.Active() {
		return "", ErrNotLoggedIn
	}
	return c.Session.Token(), nil
}
