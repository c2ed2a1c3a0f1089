// Package domain defines the core domain models for authshell.
package domain

import (
	"slices"
	"strings"
)

// Credential is the identity returned by the authentication server
// alongside a session token.
//
// JSON field names match the login response and the persisted userData record.
type Credential struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Email  string   `json:"email" yaml:"email"`
	Roles  []string `json:"roles" yaml:"roles"`
	Avatar string   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// HasRole reports whether role is a member of the credential's role set.
func (c *Credential) HasRole(role string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Roles, role)
}

// HasAnyRole reports whether the credential holds at least one of roles.
func (c *Credential) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate controller state.
func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Roles = slices.Clone(c.Roles)
	return &cp
}

// LoginRequest is the body of the login call.
type LoginRequest struct {
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password"`
}

// Validate checks that both fields are present.
func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return ErrInvalidLogin
	}
	return nil
}
