// Package authapi is the HTTP client for the remote authentication API.
//
// It speaks three endpoints: token verification, login and logout. Login is
// the only call whose failures are classified for the caller; Verify and
// Logout report plain errors that the session controller absorbs.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gundaabinav333/authshell/internal/core/domain"
	"github.com/gundaabinav333/authshell/internal/infra/buildinfo"
	"github.com/gundaabinav333/authshell/internal/infra/tlsroots"
	"github.com/gundaabinav333/authshell/internal/telemetry/logger"
)

// Default endpoint paths.
const (
	DefaultBaseURL    = "http://localhost:8080"
	DefaultLoginPath  = "/api/login"
	DefaultVerifyPath = "/api/verify-token"
	DefaultLogoutPath = "/api/logout"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Config configures a Client.
type Config struct {
	BaseURL    string
	LoginPath  string
	VerifyPath string
	LogoutPath string

	// Timeout bounds each request. Zero means no timeout; callers bound
	// requests through their context instead.
	Timeout time.Duration

	// CAFile is an extra PEM bundle to trust.
	CAFile string

	// UserAgent overrides the default "authshell/<version>".
	UserAgent string

	// HTTPClient replaces the client built from Timeout and CAFile.
	HTTPClient *http.Client
}

// LoginResult is a successful login.
type LoginResult struct {
	Token string
	User  *domain.Credential
}

// loginResponse is the login endpoint's envelope.
type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    *struct {
		User  *domain.Credential `json:"user"`
		Token string             `json:"token"`
	} `json:"data"`
}

// Client talks to the authentication API.
type Client struct {
	baseURL    string
	loginPath  string
	verifyPath string
	logoutPath string
	userAgent  string
	http       *http.Client
}

// New builds a Client. Missing paths fall back to the defaults.
func New(cfg Config) (*Client, error) {
	c := &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		loginPath:  orDefault(cfg.LoginPath, DefaultLoginPath),
		verifyPath: orDefault(cfg.VerifyPath, DefaultVerifyPath),
		logoutPath: orDefault(cfg.LogoutPath, DefaultLogoutPath),
		userAgent:  orDefault(cfg.UserAgent, buildinfo.UserAgent("authshell")),
		http:       cfg.HTTPClient,
	}

	if c.http == nil {
		tlsCfg, err := tlsroots.ClientConfig(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("authapi: %w", err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
		c.http = &http.Client{Timeout: cfg.Timeout, Transport: transport}
	}

	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Verify asks the server whether token is still valid. Any 2xx is success;
// the body is ignored.
func (c *Client) Verify(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.verifyPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ErrTransport.WithCause(err)
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("verify: status %d", resp.StatusCode)
	}
	return nil
}

// Login submits credentials. Failures are *domain.DomainError values coded
// as transport, server rejection or malformed response.
func (c *Client) Login(ctx context.Context, in domain.LoginRequest) (*LoginResult, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal login: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.ErrTransport.WithCause(err)
	}
	defer drain(resp)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.ErrTransport.WithCause(err)
	}

	var out loginResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Message != "" {
			return nil, domain.ErrServerRejected.WithDetails(out.Message)
		}
		return nil, domain.ErrServerRejected.WithCause(fmt.Errorf("status %d", resp.StatusCode))
	}

	if decodeErr != nil {
		return nil, domain.ErrMalformedResponse.WithCause(decodeErr)
	}
	if !out.Success {
		if out.Message != "" {
			return nil, domain.ErrServerRejected.WithDetails(out.Message)
		}
		return nil, domain.ErrServerRejected
	}
	if out.Data == nil || out.Data.User == nil || out.Data.Token == "" {
		return nil, domain.ErrMalformedResponse.WithCause(errors.New("success response without user or token"))
	}

	return &LoginResult{Token: out.Data.Token, User: out.Data.User}, nil
}

// Logout tells the server to end the session. Only transport failures and
// non-2xx statuses are reported; the body is ignored.
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.logoutPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ErrTransport.WithCause(err)
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("logout: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, domain.ErrTransport.WithCause(fmt.Errorf("create request: %w", err))
	}

	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = ulid.Make().String()
	}
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool {
	return errors.Is(err, domain.ErrTransport)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
}

func normalizeBaseURL(s string) string {
	if s == "" {
		s = DefaultBaseURL
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "http://" + s
	}
	return strings.TrimRight(s, "/")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
