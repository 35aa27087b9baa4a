package auth

import "time"

// TokenKind distinguishes short-lived authorization codes from
// long-lived access tokens.
type TokenKind string

const (
	KindCode   TokenKind = "code"
	KindAccess TokenKind = "access"
)

// User is a bridge account the assistant platform links against.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Token is an issued credential. Value carries the raw secret only at
// issue time; persistence works on its hash.
type Token struct {
	Value    string
	Hash     string
	Username string
	Kind     TokenKind
	State    string
	IssuedAt time.Time
}
