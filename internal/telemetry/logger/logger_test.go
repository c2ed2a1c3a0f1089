package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newJSONLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse JSON log %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"json", "text", "console", ""} {
		t.Run(format, func(t *testing.T) {
			l, err := New(Config{Level: "info", Format: format, Output: &bytes.Buffer{}})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newJSONLogger(t, "debug")

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("controller transition", "status", "loading")

			entry := decodeEntry(t, buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["msg"] != "controller transition" {
				t.Errorf("msg = %v", entry["msg"])
			}
			if entry["status"] != "loading" {
				t.Errorf("status = %v", entry["status"])
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.With("component", "session").Info("initialized")

	if got := decodeEntry(t, buf)["component"]; got != "session" {
		t.Errorf("component = %v, want session", got)
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newJSONLogger(t, "error")

	l.Info("filtered")
	if buf.Len() > 0 {
		t.Error("Info should be filtered at error level")
	}

	SetLevel("debug")
	l.Info("visible")
	if buf.Len() == 0 {
		t.Error("Info should be logged after level changed to debug")
	}
	if level := GetLevel(); level != "debug" {
		t.Errorf("GetLevel() = %q, want %q", level, "debug")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"INFO", "info"},
		{"warning", "warn"},
		{"error", "error"},
		{"bogus", "info"},
		{"", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			SetLevel(tt.input)
			if got := GetLevel(); got != tt.expected {
				t.Errorf("SetLevel(%q); GetLevel() = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	l, buf := newJSONLogger(t, "debug")
	SetDefault(l)
	t.Cleanup(func() {
		def, _ := New(DefaultConfig())
		SetDefault(def)
	})

	for name, fn := range map[string]func(string, ...any){"Debug": Debug, "Info": Info, "Warn": Warn, "Error": Error} {
		buf.Reset()
		fn("message")
		if buf.Len() == 0 {
			t.Errorf("%s() produced no output", name)
		}
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.WithContext(context.Background()).Info("logged out", "navigate", "/login")

	out := buf.String()
	if !strings.Contains(out, "logged out") || !strings.Contains(out, "navigate=/login") {
		t.Errorf("unexpected text output: %s", out)
	}
}

func TestSlog(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	Slog(l).Info("via slog", "password", "hunter2")

	entry := decodeEntry(t, buf)
	if entry["password"] != redactedValue {
		t.Errorf("password = %v, want redacted", entry["password"])
	}

	if Slog(Discard()) == nil {
		t.Error("Slog(Discard()) returned nil")
	}
}

type foreignLogger struct{ Logger }

func TestSlog_ForeignImplementation(t *testing.T) {
	if Slog(foreignLogger{}) != slog.Default() {
		t.Error("unknown Logger implementations should map to slog.Default()")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("dropped")
	l.With("k", "v").Info("dropped")
}
