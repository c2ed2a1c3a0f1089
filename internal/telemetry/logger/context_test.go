package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	FromContext(WithLogger(context.Background(), l)).Info("hello")

	if buf.Len() == 0 {
		t.Error("logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext should fall back to the default logger")
	}
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", got)
	}

	ctx = WithRequestID(ctx, "01J9Z3V7K2")
	if got := RequestIDFromContext(ctx); got != "01J9Z3V7K2" {
		t.Errorf("RequestIDFromContext() = %q", got)
	}
}

func TestL_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithRequestID(WithLogger(context.Background(), l), "req-1")
	L(ctx).Info("login submitted")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry["request_id"])
	}
}

func TestL_WithoutRequestID(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	L(WithLogger(context.Background(), l)).Info("plain")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log: %v", err)
	}
	if _, ok := entry["request_id"]; ok {
		t.Error("request_id should be absent")
	}
}
