package syncclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Bernardxu123/unicom-calc/internal/session"
)

// AuthResult is the outcome of Login or Register. Failures are reported in
// Error, never as a Go error.
type AuthResult struct {
	Success bool
	User    session.User
	Token   string
	Error   string
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func failure(err error, fallback string) AuthResult {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return AuthResult{Error: apiErr.Message}
	}
	if errors.As(err, &apiErr) {
		return AuthResult{Error: fallback}
	}
	return AuthResult{Error: "network error: " + err.Error()}
}

func checkCredentials(username, password string) (credentials, bool) {
	username = strings.TrimSpace(username)
	return credentials{Username: username, Password: password}, username != "" && password != ""
}

// Login authenticates and, on success, signs the session in.
func (c *Client) Login(ctx context.Context, username, password string) AuthResult {
	cred, ok := checkCredentials(username, password)
	if !ok {
		return AuthResult{Error: "Username and password required"}
	}

	var out struct {
		Token string       `json:"token"`
		User  session.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", cred, &out); err != nil {
		return failure(err, "Login failed")
	}
	if out.Token == "" {
		return AuthResult{Error: "Login failed"}
	}

	if err := c.Session.SignIn(out.User, out.Token); err != nil {
		// 会话仍然有效，只是下次启动需要重新登录
		c.Log.Warn("persist session", "error", err)
	}
	return AuthResult{Success: true, User: out.User, Token: out.Token}
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, username, password string) AuthResult {
	cred, ok := checkCredentials(username, password)
	if !ok {
		return AuthResult{Error: "Username and password required"}
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", cred, nil); err != nil {
		return failure(err, "Registration failed")
	}
	return AuthResult{Success: true}
}

// Logout clears the session locally; the server is not contacted.
func (c *Client) Logout() error {
	return c.Session.SignOut()
}
