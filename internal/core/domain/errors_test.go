// Package domain defines the core domain models for authshell.
package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("AS-TEST-1000", "test message"),
			expected: "[AS-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("AS-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[AS-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("AS-TEST-1000", "message 1")
	err2 := NewDomainError("AS-TEST-1000", "message 2")
	err3 := NewDomainError("AS-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}

	wrapped := fmt.Errorf("login: %w", ErrServerRejected.WithDetails("bad credentials"))
	if !errors.Is(wrapped, ErrServerRejected) {
		t.Error("errors.Is should see through fmt.Errorf wrapping")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ErrTransport.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if ErrTransport.Cause != nil {
		t.Error("WithCause must not mutate the sentinel")
	}
}

func TestIsDomainError(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrMalformedResponse)

	if !IsDomainError(err, "") {
		t.Error("expected wrapped DomainError to be detected")
	}
	if !IsDomainError(err, ErrMalformedResponse.Code) {
		t.Error("expected code match")
	}
	if IsDomainError(err, ErrTransport.Code) {
		t.Error("unexpected code match")
	}
	if IsDomainError(errors.New("plain"), "") {
		t.Error("plain error is not a DomainError")
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(ErrStoreCorrupt); got != "AS-STOR-5000" {
		t.Errorf("GetErrorCode() = %q, want AS-STOR-5000", got)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"details win", ErrServerRejected.WithDetails("bad credentials"), "bad credentials"},
		{"message fallback", ErrServerRejected, "Login failed"},
		{"transport", ErrTransport.WithCause(errors.New("dial tcp")), "Unable to reach authentication server"},
		{"wrapped", fmt.Errorf("login: %w", ErrMalformedResponse), "Unexpected response from authentication server"},
		{"plain", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
