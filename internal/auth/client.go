package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/csheth/notable/internal/apperr"
)

// Session is the signed-in identity the editor runs with. A nil or empty
// session means the editor works locally.
type Session struct {
	Server      string    `json:"server"`
	Email       string    `json:"email"`
	UserID      string    `json:"userId"`
	AccessToken string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Token returns the bearer token.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

// SignedIn reports whether the session holds an unexpired token.
func (s *Session) SignedIn() bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Client signs in against a notable server and keeps the token on disk.
type Client struct {
	base      string
	tokenPath string
	http      *http.Client
}

// NewClient returns a client for the server at base storing its token in tokenPath.
func NewClient(base, tokenPath string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{base: strings.TrimRight(base, "/"), tokenPath: tokenPath, http: httpClient}
}

// Register creates an account on the server.
func (c *Client) Register(ctx context.Context, email, password string) error {
	var user User
	return c.call(ctx, "/api/v1/auth/register", "", credentials{Email: email, Password: password}, &user)
}

// Login signs in and saves the session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp LoginResponse
	if err := c.call(ctx, "/api/v1/auth/login", "", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	session := &Session{
		Server:      c.base,
		Email:       resp.User.Email,
		UserID:      resp.User.ID,
		AccessToken: resp.Token,
		ExpiresAt:   resp.ExpiresAt,
	}
	if err := SaveSession(c.tokenPath, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout revokes the saved token on the server and removes it locally. The
// local copy is removed even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	session, err := LoadSession(c.tokenPath)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	callErr := c.call(ctx, "/api/v1/auth/logout", session.AccessToken, struct{}{}, nil)
	if err := os.Remove(c.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if callErr != nil && !apperr.Is(callErr, apperr.CodeUnauthorized) {
		return callErr
	}
	return nil
}

func (c *Client) call(ctx context.Context, path, token string, in, out any) error {
	buf, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Upstream("auth server unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(body, &payload)
		return apperr.FromStatus(resp.StatusCode, payload.Detail)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// SaveSession writes session to path, readable only by the owner.
func SaveSession(path string, session *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadSession reads a saved session. A missing file yields nil without error.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}
	return &session, nil
}
