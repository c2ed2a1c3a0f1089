package session

import "github.com/gundaabinav333/authshell/internal/core/domain"

// Status is the controller's lifecycle position.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusAuthenticated
	StatusUnauthenticated
	StatusError
)

var statusNames = [...]string{
	StatusUninitialized:   "uninitialized",
	StatusLoading:         "loading",
	StatusAuthenticated:   "authenticated",
	StatusUnauthenticated: "unauthenticated",
	StatusError:           "error",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// StatusNames lists every status name, in declaration order.
func StatusNames() []string {
	out := make([]string, len(statusNames))
	copy(out, statusNames[:])
	return out
}

// State is a point-in-time copy of the controller state.
//
// Token and Credential are set only when Status is StatusAuthenticated.
// Error is set only when Status is StatusError.
type State struct {
	Status     Status
	Credential *domain.Credential
	Token      string
	Error      string
}

// IsAuthenticated reports whether the state holds a session.
func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.Token != "" && s.Credential != nil
}

// IsLoading reports whether the state is not yet settled.
func (s State) IsLoading() bool {
	return s.Status == StatusUninitialized || s.Status == StatusLoading
}

func authenticated(token string, cred *domain.Credential) State {
	return State{Status: StatusAuthenticated, Token: token, Credential: cred}
}

func failed(msg string) State {
	return State{Status: StatusError, Error: msg}
}
