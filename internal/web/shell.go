package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gundaabinav333/authshell/internal/core/domain"
	"github.com/gundaabinav333/authshell/internal/server/httpserver"
	"github.com/gundaabinav333/authshell/internal/session"
	"github.com/gundaabinav333/authshell/internal/telemetry/logger"
	"github.com/gundaabinav333/authshell/internal/telemetry/metric"
)

const maxFormBytes = 64 << 10

// Config names the shell routes.
type Config struct {
	LoginPath     string
	HomePath      string
	ForbiddenPath string

	// RequireRoles gates the home path on any one of these roles.
	RequireRoles []string
}

// Shell is the web front end of a session controller. The controller
// should navigate with session.RequestNavigator so redirects follow it.
type Shell struct {
	ctrl  *session.Controller
	guard *session.Guard
	cfg   Config
	pages pages
	log   logger.Logger
	reg   *metric.Registry
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the base logger for request logs.
func WithLogger(l logger.Logger) Option {
	return func(s *Shell) { s.log = l }
}

// WithRegistry sets the registry served at /metrics and fed by the access log.
func WithRegistry(r *metric.Registry) Option {
	return func(s *Shell) { s.reg = r }
}

// New returns a Shell over ctrl.
func New(ctrl *session.Controller, cfg Config, opts ...Option) (*Shell, error) {
	if cfg.LoginPath == "" {
		cfg.LoginPath = session.DefaultLoginPath
	}
	if cfg.HomePath == "" {
		cfg.HomePath = session.DefaultHomePath
	}
	if cfg.ForbiddenPath == "" {
		cfg.ForbiddenPath = "/forbidden"
	}

	p, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Shell{
		ctrl:  ctrl,
		cfg:   cfg,
		pages: p,
		log:   logger.Default(),
		reg:   metric.Global(),
		guard: &session.Guard{
			Controller:    ctrl,
			LoginPath:     cfg.LoginPath,
			ForbiddenPath: cfg.ForbiddenPath,
			RequireRoles:  cfg.RequireRoles,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the routed, instrumented handler.
func (s *Shell) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+s.cfg.LoginPath, s.handleLoginForm)
	mux.HandleFunc("POST "+s.cfg.LoginPath, s.handleLogin)
	mux.Handle("GET "+s.cfg.HomePath, s.guard.Middleware(http.HandlerFunc(s.handleDashboard)))
	mux.HandleFunc("GET "+s.cfg.ForbiddenPath, s.handleForbidden)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.Handle("GET /health", httpserver.Health())
	mux.Handle("GET /metrics", s.reg.Handler())
	mux.HandleFunc("/", s.handleFallback)

	return httpserver.Chain(mux,
		httpserver.Recover(),
		httpserver.RequestID(s.log),
		httpserver.AccessLog(s.reg),
	)
}

func (s *Shell) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if s.ctrl.IsAuthenticated() {
		http.Redirect(w, r, s.cfg.HomePath, http.StatusSeeOther)
		return
	}
	s.pages.render(w, r, http.StatusOK, "login", loginPage{
		Title:     "Sign in",
		LoginPath: s.cfg.LoginPath,
		Error:     s.ctrl.Snapshot().Error,
		From:      localPath(r.URL.Query().Get("from")),
	})
}

func (s *Shell) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	req := domain.LoginRequest{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	from := localPath(r.PostFormValue("from"))

	if err := req.Validate(); err != nil {
		s.pages.render(w, r, http.StatusBadRequest, "login", loginPage{
			Title:     "Sign in",
			LoginPath: s.cfg.LoginPath,
			Error:     domain.UserMessage(err),
			Email:     req.Email,
			From:      from,
		})
		return
	}

	// A restore still in flight would overwrite the login result.
	s.ctrl.Initialize(r.Context())

	ctx, redirect := session.WithRedirect(r.Context())
	if err := s.ctrl.Login(ctx, req); err != nil {
		s.pages.render(w, r, loginStatus(err), "login", loginPage{
			Title:     "Sign in",
			LoginPath: s.cfg.LoginPath,
			Error:     s.ctrl.Snapshot().Error,
			Email:     req.Email,
			From:      from,
		})
		return
	}

	target := redirect.Path()
	if from != "" {
		target = from
	}
	if target == "" {
		target = s.cfg.HomePath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Shell) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := s.ctrl.CurrentUser()
	if user == nil {
		// Logged out between the guard and here.
		http.Redirect(w, r, s.cfg.LoginPath, http.StatusSeeOther)
		return
	}
	s.pages.render(w, r, http.StatusOK, "dashboard", dashboardPage{Title: "Dashboard", User: user})
}

func (s *Shell) handleForbidden(w http.ResponseWriter, r *http.Request) {
	s.pages.render(w, r, http.StatusForbidden, "forbidden", forbiddenPage{Title: "Access denied"})
}

func (s *Shell) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Initialize(r.Context())

	ctx, redirect := session.WithRedirect(r.Context())
	s.ctrl.Logout(ctx)

	target := redirect.Path()
	if target == "" {
		target = s.cfg.LoginPath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Shell) handleFallback(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.cfg.LoginPath, http.StatusSeeOther)
}

func loginStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrServerRejected):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidLogin):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// localPath returns p when it is a same-origin absolute path, else "".
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return ""
	}
	return p
}
