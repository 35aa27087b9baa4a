// Package logging provides structured logging for the Khawasu cloud bridge.
//
// It wraps log/slog with level filtering, JSON or text output, and default
// service/version fields on every entry.
//
// Never log secrets: tokens, authorization codes, passwords, or the OAuth
// client secret must not appear in log fields.
package logging
