// Package auth implements account storage and the OAuth
// authorization-code flow the assistant platform links through:
// opaque random codes and access tokens backed by SQLite, with
// Argon2id password hashing.
//
// Raw token values exist only in transit. The database holds SHA-256
// hashes, so a leaked database file does not leak usable credentials.
package auth
