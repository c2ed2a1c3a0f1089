package session

import (
	"net/http"
	"net/url"
)

// Outcome is the guard's verdict for a protected view.
type Outcome int

const (
	// OutcomeLoading means the session is not settled yet; render a
	// placeholder instead of deciding.
	OutcomeLoading Outcome = iota
	OutcomeAllowed
	OutcomeDenied
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeAllowed:
		return "allowed"
	case OutcomeDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// DenyReason says why access was denied.
type DenyReason int

const (
	DenyNone DenyReason = iota
	DenyUnauthenticated
	DenyForbidden
)

// Decision is the result of Guard.Status.
type Decision struct {
	Outcome    Outcome
	RedirectTo string
	Reason     DenyReason
}

// Guard gates protected views on the controller state.
type Guard struct {
	Controller    *Controller
	LoginPath     string
	ForbiddenPath string

	// RequireRoles, when non-empty, admits users holding any one of them.
	RequireRoles []string
}

// Status decides access from the current controller state.
func (g *Guard) Status() Decision {
	s := g.Controller.Snapshot()

	if s.IsLoading() {
		return Decision{Outcome: OutcomeLoading}
	}
	if !s.IsAuthenticated() {
		return Decision{
			Outcome:    OutcomeDenied,
			RedirectTo: orPath(g.LoginPath, DefaultLoginPath),
			Reason:     DenyUnauthenticated,
		}
	}
	if len(g.RequireRoles) > 0 && !s.Credential.HasAnyRole(g.RequireRoles...) {
		return Decision{
			Outcome:    OutcomeDenied,
			RedirectTo: orPath(g.ForbiddenPath, "/forbidden"),
			Reason:     DenyForbidden,
		}
	}
	return Decision{Outcome: OutcomeAllowed}
}

// Middleware applies Status to HTTP requests. Loading answers 503 with
// Retry-After; a denial redirects with 303, carrying the original path in
// the "from" query parameter when sending the user to log in.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Status()
		switch d.Outcome {
		case OutcomeAllowed:
			next.ServeHTTP(w, r)
		case OutcomeLoading:
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Loading...", http.StatusServiceUnavailable)
		default:
			target := d.RedirectTo
			if d.Reason == DenyUnauthenticated {
				target += "?" + url.Values{"from": {r.URL.RequestURI()}}.Encode()
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
		}
	})
}

func orPath(p, def string) string {
	if p == "" {
		return def
	}
	return p
}
