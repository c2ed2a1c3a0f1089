package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gundaabinav333/authshell/internal/core/domain"
	"github.com/gundaabinav333/authshell/internal/server/httpserver"
	"github.com/gundaabinav333/authshell/internal/telemetry/logger"
	"github.com/gundaabinav333/authshell/internal/telemetry/metric"
	"github.com/gundaabinav333/authshell/pkg/token"
)

const maxLoginBody = 64 << 10

// invalidCredentials is the single message for every failed login so the
// response does not reveal which half was wrong.
const invalidCredentials = "Invalid email or password"

// Server is the devserver HTTP application.
type Server struct {
	dir     *Directory
	issuer  *Issuer
	limiter *httpserver.RateLimiter
	log     logger.Logger
	reg     *metric.Registry
	params  HashParams

	requests *prometheus.CounterVec
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithRegistry sets the metrics registry served at /metrics.
func WithRegistry(r *metric.Registry) Option {
	return func(s *Server) { s.reg = r }
}

// WithHashParams sets the argon2id cost used for plaintext passwords.
func WithHashParams(p HashParams) Option {
	return func(s *Server) { s.params = p }
}

// New builds the server from cfg.
func New(cfg *Config, opts ...Option) (*Server, error) {
	s := &Server{
		log:    logger.Default(),
		reg:    metric.Global(),
		params: DefaultHashParams,
	}
	for _, opt := range opts {
		opt(s)
	}

	dir, err := NewDirectory(cfg.Users, s.params)
	if err != nil {
		return nil, err
	}
	s.dir = dir

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		generated, err := token.GenerateBytes(32)
		if err != nil {
			return nil, err
		}
		secret = generated
		s.log.Warn("no signing secret configured, tokens will not survive a restart")
	}
	if s.issuer, err = NewIssuer(secret, cfg.Issuer, cfg.TokenTTL); err != nil {
		return nil, err
	}

	s.limiter = httpserver.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)

	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authshell",
		Subsystem: "devserver",
		Name:      "requests_total",
		Help:      "Devserver API calls by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	if err := s.reg.Registerer().Register(s.requests); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		s.requests = are.ExistingCollector.(*prometheus.CounterVec)
	}

	return s, nil
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/verify-token", s.handleVerify)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.Handle("GET /health", httpserver.Health())
	mux.Handle("GET /metrics", s.reg.Handler())

	return httpserver.Chain(mux,
		httpserver.Recover(),
		httpserver.RequestID(s.log),
		httpserver.AccessLog(s.reg),
	)
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type loginData struct {
	User  *domain.Credential `json:"user"`
	Token string             `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req domain.LoginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxLoginBody)).Decode(&req); err != nil {
		s.count("login", "bad_request")
		httpserver.WriteJSON(w, http.StatusBadRequest, loginResponse{Message: "Malformed login request"})
		return
	}
	if err := req.Validate(); err != nil {
		s.count("login", "bad_request")
		httpserver.WriteJSON(w, http.StatusBadRequest, loginResponse{Message: domain.UserMessage(err)})
		return
	}

	if !s.limiter.Allow(normalizeEmail(req.Email)) {
		s.count("login", "throttled")
		w.Header().Set("Retry-After", "1")
		httpserver.WriteJSON(w, http.StatusTooManyRequests, loginResponse{Message: "Too many login attempts, try again shortly"})
		return
	}

	cred, ok := s.dir.Authenticate(req.Email, req.Password)
	if !ok {
		s.count("login", "rejected")
		log.Info("login rejected", "email", req.Email)
		httpserver.WriteJSON(w, http.StatusUnauthorized, loginResponse{Message: invalidCredentials})
		return
	}

	tok, err := s.issuer.Issue(cred)
	if err != nil {
		s.count("login", "error")
		log.Error("sign token", "error", err)
		httpserver.WriteJSON(w, http.StatusInternalServerError, loginResponse{Message: "Login failed"})
		return
	}

	s.count("login", "success")
	log.Info("login succeeded", "user_id", cred.ID)
	httpserver.WriteJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Data:    loginData{User: cred, Token: tok},
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	claims, err := s.bearerClaims(r)
	if err != nil {
		s.count("verify", outcome(err))
		httpserver.WriteJSON(w, http.StatusUnauthorized, map[string]any{"valid": false})
		return
	}
	if _, ok := s.dir.Lookup(claims.Subject); !ok {
		s.count("verify", "unknown_user")
		httpserver.WriteJSON(w, http.StatusUnauthorized, map[string]any{"valid": false})
		return
	}

	s.count("verify", "valid")
	httpserver.WriteJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, err := s.bearerClaims(r)
	if err != nil {
		// Logging out an unknown token still ends the caller's session.
		s.count("logout", outcome(err))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.issuer.Revoke(claims)
	s.count("logout", "revoked")
	logger.FromContext(r.Context()).Info("token revoked", "user_id", claims.Subject)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) bearerClaims(r *http.Request) (*Claims, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return nil, ErrTokenInvalid
	}
	return s.issuer.Parse(raw)
}

func (s *Server) count(endpoint, result string) {
	s.requests.WithLabelValues(endpoint, result).Inc()
}

func outcome(err error) string {
	if errors.Is(err, ErrTokenRevoked) {
		return "revoked"
	}
	return "invalid"
}
