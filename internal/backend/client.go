package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spec-kit/claims-console/internal/config"
	"github.com/spec-kit/claims-console/internal/domain"
	"github.com/spec-kit/claims-console/internal/session"
)

// ErrUnauthorized is returned when the backend rejects the credential or session.
var ErrUnauthorized = errors.New("backend: unauthorized")

// StatusError reports an unexpected backend status.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s: unexpected status %d", e.Op, e.Status)
}

const maxBodyBytes = 1 << 20

// Client talks to the HR/claims REST backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg config.BackendConfig) *Client {
	return NewClientWithHTTP(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout()})
}

// NewClientWithHTTP builds a client around an existing http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Login checks the credential and returns the backend session cookies.
func (c *Client) Login(ctx context.Context, email, password string) ([]*http.Cookie, error) {
	query := url.Values{}
	query.Set("email", email)
	query.Set("password", password)

	resp, err := c.do(ctx, "login", http.MethodPost, "/login?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if err := checkStatus("login", resp.StatusCode); err != nil {
		return nil, err
	}
	return resp.Cookies(), nil
}

// Me fetches the identity bound to the backend session cookies.
func (c *Client) Me(ctx context.Context, cookies []*http.Cookie) (domain.Identity, error) {
	resp, err := c.do(ctx, "me", http.MethodGet, "/api/me", cookies)
	if err != nil {
		return domain.Identity{}, err
	}
	defer drain(resp)

	if err := checkStatus("me", resp.StatusCode); err != nil {
		return domain.Identity{}, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("backend me: read body: %w", err)
	}
	return session.ParseIdentity(body)
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context, cookies []*http.Cookie) error {
	resp, err := c.do(ctx, "logout", http.MethodPost, "/logout", cookies)
	if err != nil {
		return err
	}
	defer drain(resp)
	return checkStatus("logout", resp.StatusCode)
}

// Fetcher binds Me to a set of backend cookies.
func (c *Client) Fetcher(cookies []*http.Cookie) session.Fetcher {
	return session.FetcherFunc(func(ctx context.Context) (domain.Identity, error) {
		return c.Me(ctx, cookies)
	})
}

// do never puts the request URL in errors: the login URL carries the credential.
func (c *Client) do(ctx context.Context, op, method, path string, cookies []*http.Cookie) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("backend %s: build request failed", op)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
		if cookie.Name == "XSRF-TOKEN" {
			if token, err := url.QueryUnescape(cookie.Value); err == nil {
				req.Header.Set("X-XSRF-TOKEN", token)
			}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("backend %s: %w", op, err)
	}
	return resp, nil
}

func checkStatus(op string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == 419:
		return fmt.Errorf("backend %s: %w", op, ErrUnauthorized)
	default:
		return &StatusError{Op: op, Status: status}
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}
