// Package database provides the SQLite persistence layer for the bridge.
//
// It wraps database/sql with WAL-mode pragmas, a single-writer connection
// pool, and an embedded migration runner. Token and user repositories in
// internal/auth build on top of it.
package database
