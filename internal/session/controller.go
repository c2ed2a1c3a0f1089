package session

import (
	"context"
	"errors"
	"sync"

	"github.com/gundaabinav333/authshell/internal/core/domain"
	"github.com/gundaabinav333/authshell/internal/session/authapi"
	"github.com/gundaabinav333/authshell/internal/session/store"
	"github.com/gundaabinav333/authshell/internal/telemetry/logger"
)

// Default navigation targets.
const (
	DefaultLoginPath = "/login"
	DefaultHomePath  = "/dashboard"
)

// AuthClient is the remote authentication API. *authapi.Client satisfies it.
type AuthClient interface {
	Verify(ctx context.Context, token string) error
	Login(ctx context.Context, req domain.LoginRequest) (*authapi.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

// Metrics receives controller outcomes. *metric.Registry satisfies it.
type Metrics interface {
	ObserveLogin(result string)
	ObserveLogout(remote string)
	ObserveVerify(result string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveLogin(string)  {}
func (nopMetrics) ObserveLogout(string) {}
func (nopMetrics) ObserveVerify(string) {}

// Option configures a Controller.
type Option func(*Controller)

// WithNavigator sets the navigation side effect. The default does nothing.
func WithNavigator(n Navigator) Option {
	return func(c *Controller) {
		if n != nil {
			c.nav = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *Controller) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithRoutes sets where logout and login navigate to.
func WithRoutes(loginPath, homePath string) Option {
	return func(c *Controller) {
		if loginPath != "" {
			c.loginPath = loginPath
		}
		if homePath != "" {
			c.homePath = homePath
		}
	}
}

// Controller owns the authentication state.
//
// Queries are safe for concurrent use. The state lock is never held across
// store or network calls, so concurrent Login calls race and the last one
// to finish wins.
type Controller struct {
	store   store.Store
	client  AuthClient
	nav     Navigator
	log     logger.Logger
	metrics Metrics

	loginPath string
	homePath  string

	mu    sync.RWMutex
	state State

	initOnce sync.Once
	ready    chan struct{}
}

// New returns an Uninitialized controller.
func New(s store.Store, client AuthClient, opts ...Option) *Controller {
	c := &Controller{
		store:     s,
		client:    client,
		nav:       nopNavigator{},
		log:       logger.Default(),
		metrics:   nopMetrics{},
		loginPath: DefaultLoginPath,
		homePath:  DefaultHomePath,
		state:     State{Status: StatusUninitialized},
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize restores the persisted session. Only the first call does the
// work; later and concurrent calls wait for it to finish or for their ctx
// to end. It never leaves the controller Loading and never fails: any
// problem with the persisted session discards it.
func (c *Controller) Initialize(ctx context.Context) {
	first := false
	c.initOnce.Do(func() { first = true })

	if !first {
		select {
		case <-c.ready:
		case <-ctx.Done():
		}
		return
	}

	defer close(c.ready)
	c.setState(State{Status: StatusLoading})
	c.setState(c.restore(ctx))
}

// Ready is closed once Initialize has finished.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

func (c *Controller) restore(ctx context.Context) State {
	log := c.logger(ctx)

	rec, err := c.store.Load(ctx)
	if err != nil {
		log.Warn("session store unreadable, discarding session", "error", err)
		c.metrics.ObserveVerify("store_error")
		c.clearStore(ctx)
		return State{Status: StatusUnauthenticated}
	}
	if rec == nil {
		c.metrics.ObserveVerify("absent")
		return State{Status: StatusUnauthenticated}
	}

	if err := c.client.Verify(ctx, rec.Token); err != nil {
		log.Info("persisted session rejected", "error", err)
		c.metrics.ObserveVerify("invalid")
		c.clearStore(ctx)
		return State{Status: StatusUnauthenticated}
	}

	log.Debug("persisted session restored", "user_id", rec.Credential.ID)
	c.metrics.ObserveVerify("valid")
	return authenticated(rec.Token, rec.Credential)
}

// Login authenticates with email and password. Exactly one remote call is
// made. On success the session is persisted and the navigator is sent to
// the home path. On failure the Error state carries the user-facing message
// and the returned error is a *domain.DomainError.
func (c *Controller) Login(ctx context.Context, req domain.LoginRequest) error {
	log := c.logger(ctx)
	c.setState(State{Status: StatusLoading})

	res, err := c.client.Login(ctx, req)
	if err == nil && (res == nil || res.User == nil || res.Token == "") {
		err = domain.ErrMalformedResponse.WithCause(errors.New("login result without user or token"))
	}
	if err != nil {
		var de *domain.DomainError
		if !errors.As(err, &de) {
			err = domain.ErrTransport.WithCause(err)
		}
		msg := domain.UserMessage(err)
		c.setState(failed(msg))
		c.metrics.ObserveLogin(loginResult(err))
		log.Info("login failed", "code", domain.GetErrorCode(err), "message", msg)
		return err
	}

	c.setState(authenticated(res.Token, res.User.Clone()))
	c.metrics.ObserveLogin("success")
	log.Info("login succeeded", "user_id", res.User.ID)

	if err := c.store.Save(ctx, res.Token, res.User); err != nil {
		log.Warn("session not persisted", "error", err)
	}

	c.nav.Navigate(ctx, c.homePath)
	return nil
}

// Logout ends the session. The remote call is best effort; local state and
// the store are always cleared and the navigator is sent to the login path.
func (c *Controller) Logout(ctx context.Context) {
	log := c.logger(ctx)

	c.mu.Lock()
	token := c.state.Token
	c.state = State{Status: StatusLoading}
	c.mu.Unlock()

	switch {
	case token == "":
		c.metrics.ObserveLogout("skipped")
	default:
		if err := c.client.Logout(ctx, token); err != nil {
			log.Warn("remote logout failed", "error", err)
			c.metrics.ObserveLogout("failed")
		} else {
			c.metrics.ObserveLogout("ok")
		}
	}

	c.clearStore(ctx)
	c.setState(State{Status: StatusUnauthenticated})
	log.Info("logged out")

	c.nav.Navigate(ctx, c.loginPath)
}

// ClearError drops a login error. The controller becomes Unauthenticated;
// other states are left alone.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status == StatusError {
		c.state = State{Status: StatusUnauthenticated}
	}
}

// IsAuthenticated reports whether a user is logged in.
func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.IsAuthenticated()
}

// HasRole reports whether the current user holds role. It is false when
// nobody is logged in.
func (c *Controller) HasRole(role string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.IsAuthenticated() && c.state.Credential.HasRole(role)
}

// CurrentUser returns a copy of the logged-in user's credential, or nil.
func (c *Controller) CurrentUser() *domain.Credential {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.state.IsAuthenticated() {
		return nil
	}
	return c.state.Credential.Clone()
}

// Snapshot returns a copy of the full state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Credential = s.Credential.Clone()
	return s
}

// Status returns the current lifecycle position.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Status
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) clearStore(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger(ctx).Warn("session store clear failed", "error", err)
	}
}

func (c *Controller) logger(ctx context.Context) logger.Logger {
	l := c.log
	if id := logger.RequestIDFromContext(ctx); id != "" {
		l = l.With("request_id", id)
	}
	return l
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrServerRejected):
		return "rejected"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	default:
		return "transport"
	}
}
