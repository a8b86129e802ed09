// Package client is the client side of the auth API: an HTTP client, a
// session state store and the route guard built on it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"slices"
	"strings"

	"github.com/Apie237/mern-chatapp/internal/auth"
	"github.com/Apie237/mern-chatapp/internal/domain"
	"github.com/Apie237/mern-chatapp/pkg/httpclient"
)

const serviceName = "auth service"

// SignupRequest is the body of a signup call.
type SignupRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// Client calls the auth API. The session cookie lives in the client's
// cookie jar.
type Client struct {
	http    *httpclient.Client
	baseURL *url.URL
}

// New creates a Client for the API rooted at baseURL. A cookie jar is
// created when cfg has none. PUT is never replayed: a profile update uploads
// an image on every attempt.
func New(baseURL string, cfg httpclient.Config) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	cfg.RetryMethods = slices.DeleteFunc(slices.Clone(cfg.RetryMethods), func(m string) bool {
		return m == http.MethodPut
	})
	if cfg.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		cfg.Jar = jar
	}
	return &Client{http: httpclient.New(cfg), baseURL: u}, nil
}

// SessionToken returns the session cookie value held by the jar, if any.
func (c *Client) SessionToken() string {
	for _, ck := range c.http.Jar().Cookies(c.baseURL) {
		if ck.Name == auth.CookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionToken seeds the jar with a previously saved session cookie.
func (c *Client) SetSessionToken(token string) {
	c.http.Jar().SetCookies(c.baseURL, []*http.Cookie{{
		Name:  auth.CookieName,
		Value: token,
		Path:  "/",
	}})
}

// CheckAuth returns the identity of the current session.
func (c *Client) CheckAuth(ctx context.Context) (*domain.IdentitySummary, error) {
	var out domain.IdentitySummary
	if err := c.call(ctx, http.MethodGet, "/api/auth/check", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates an account and starts a session.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*domain.IdentitySummary, error) {
	var out domain.IdentitySummary
	if err := c.call(ctx, http.MethodPost, "/api/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login starts a session.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.IdentitySummary, error) {
	body := map[string]string{"email": email, "password": password}
	var out domain.IdentitySummary
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session. The server clears the cookie from the jar.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// UpdateProfile replaces the profile picture of the current user.
func (c *Client) UpdateProfile(ctx context.Context, profilePic string) (*domain.ProfileUpdate, error) {
	body := map[string]string{"profilePic": profilePic}
	var out domain.ProfileUpdate
	if err := c.call(ctx, http.MethodPut, "/api/auth/update-profile", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
