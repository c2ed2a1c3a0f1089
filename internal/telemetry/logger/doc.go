// Package logger provides structured logging for authshell.
//
//   - logger.go: slog-backed Logger, dynamic level, package-level default
//   - context.go: context-carried logger and request/trace IDs
//   - redact.go: masking of tokens, passwords and bearer credentials
package logger
