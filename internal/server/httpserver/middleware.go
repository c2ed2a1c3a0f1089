package httpserver

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/gundaabinav333/authshell/internal/telemetry/logger"
)

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first one listed runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID takes X-Request-ID from the request or mints a ULID, echoes it
// in the response and puts it, with a request-scoped logger, in the context.
func RequestID(base logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" || len(id) > 128 {
				id = ulid.Make().String()
			}
			w.Header().Set("X-Request-ID", id)

			ctx := logger.WithRequestID(r.Context(), id)
			ctx = logger.WithLogger(ctx, base.With("request_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recover turns a panic into a 500.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logger.FromContext(r.Context()).Error("panic recovered",
						"panic", v,
						"path", r.URL.Path,
					)
					WriteError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestObserver receives one observation per served request.
type RequestObserver interface {
	ObserveRequest(method, route, code string, d time.Duration)
}

// AccessLog logs each request and reports it to obs when set. It must sit
// directly in front of the ServeMux so the matched pattern is visible.
func AccessLog(obs RequestObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			elapsed := time.Since(start)
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			if obs != nil {
				obs.ObserveRequest(r.Method, route, strconv.Itoa(wrapped.statusCode), elapsed)
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", elapsed.Milliseconds(),
				"client_ip", ClientIP(r),
			}
			log := logger.FromContext(r.Context())
			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Debug("request completed", attrs...)
			}
		})
	}
}

// KeyFunc picks the rate-limit bucket for a request. Returning "" skips
// limiting.
type KeyFunc func(r *http.Request) string

// RateLimiter hands out one token bucket per key.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewRateLimiter allows perSecond events per key with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether an event for key may happen now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	l.mu.Unlock()
	return b.Allow()
}

// RateLimit rejects requests over the limit with 429.
func RateLimit(l *RateLimiter, key KeyFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k != "" && !l.Allow(k) {
				w.Header().Set("Retry-After", "1")
				WriteError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// ClientIP returns the caller address, preferring X-Forwarded-For and
// X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
