package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TokenRepository defines the interface for token persistence.
type TokenRepository interface {
	Create(ctx context.Context, token *Token) error
	GetByValue(ctx context.Context, value string) (*Token, error)
	Consume(ctx context.Context, value string, kind TokenKind) (*Token, error)
	Delete(ctx context.Context, value string) error
	DeleteExpiredCodes(ctx context.Context, ttl time.Duration) (int64, error)
}

// SQLiteTokenRepository implements TokenRepository using SQLite.
type SQLiteTokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new SQLite-backed token repository.
func NewTokenRepository(db *sql.DB) *SQLiteTokenRepository {
	return &SQLiteTokenRepository{db: db}
}

// Create inserts a new token. The stored key is the hash of the raw
// value; the raw value never reaches the database.
func (r *SQLiteTokenRepository) Create(ctx context.Context, token *Token) error {
	if token.Hash == "" {
		token.Hash = HashToken(token.Value)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	token.IssuedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (token_hash, username, kind, state, issued_at)
		 VALUES (?, ?, ?, ?, ?)`,
		token.Hash, token.Username, string(token.Kind), token.State, now,
	)
	if err != nil {
		return fmt.Errorf("creating token: %w", err)
	}

	return nil
}

// GetByValue retrieves a token by its raw value.
func (r *SQLiteTokenRepository) GetByValue(ctx context.Context, value string) (*Token, error) {
	return r.getByHash(ctx, r.db, HashToken(value))
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteTokenRepository) getByHash(ctx context.Context, q queryRower, hash string) (*Token, error) {
	var t Token
	var kind, issuedAt string

	err := q.QueryRowContext(ctx,
		`SELECT token_hash, username, kind, state, issued_at
		 FROM tokens WHERE token_hash = ?`, hash,
	).Scan(&t.Hash, &t.Username, &kind, &t.State, &issuedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("getting token: %w", err)
	}

	t.Kind = TokenKind(kind)
	t.IssuedAt, _ = time.Parse(time.RFC3339, issuedAt) //nolint:errcheck // format is controlled
	return &t, nil
}

// Consume atomically reads and deletes a token of the given kind. A
// value of any other kind is left untouched and reported as not found,
// so a failed consume never destroys a live credential. A second
// consumer of the same value loses the race and gets ErrTokenNotFound.
func (r *SQLiteTokenRepository) Consume(ctx context.Context, value string, kind TokenKind) (*Token, error) {
	hash := HashToken(value)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning consume transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is no-op after commit

	token, err := r.getByHash(ctx, tx, hash)
	if err != nil {
		return nil, err
	}
	if token.Kind != kind {
		return nil, ErrTokenNotFound
	}

	result, err := tx.ExecContext(ctx,
		"DELETE FROM tokens WHERE token_hash = ? AND kind = ?", hash, string(kind))
	if err != nil {
		return nil, fmt.Errorf("deleting consumed token: %w", err)
	}
	affected, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if affected != 1 {
		return nil, ErrTokenNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing consume: %w", err)
	}
	return token, nil
}

// Delete removes a token by its raw value. Deleting an unknown value
// returns ErrTokenNotFound.
func (r *SQLiteTokenRepository) Delete(ctx context.Context, value string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM tokens WHERE token_hash = ?", HashToken(value))
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}

	affected, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if affected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// DeleteExpiredCodes removes authorization codes older than the TTL,
// freeing storage. Returns the number of deleted rows.
func (r *SQLiteTokenRepository) DeleteExpiredCodes(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl).Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		"DELETE FROM tokens WHERE kind = ? AND issued_at <= ?",
		string(KindCode), cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting expired codes: %w", err)
	}

	count, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return count, nil
}
