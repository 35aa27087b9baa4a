package auth

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the auth schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE UNIQUE INDEX idx_users_username ON users(username);

		CREATE TABLE tokens (
			token_hash TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			kind TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT '',
			issued_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (username) REFERENCES users(username) ON DELETE CASCADE
		) STRICT;

		CREATE INDEX idx_tokens_username ON tokens(username);
		CREATE INDEX idx_tokens_kind ON tokens(kind);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying auth migration: %v", err)
	}

	return db
}

// seedTestUser inserts a test user and returns it.
func seedTestUser(t *testing.T, db *sql.DB, username, password string) *User {
	t.Helper()

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := NewUserRepository(db)
	user := &User{Username: username, PasswordHash: hash}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %s: %v", username, err)
	}
	return user
}
