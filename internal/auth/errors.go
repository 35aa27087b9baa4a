package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when a username/password pair
	// does not match a stored account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenNotFound is returned when a token value is unknown,
	// already consumed, or revoked.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenExpired is returned when an authorization code is past
	// its time-to-live.
	ErrTokenExpired = errors.New("token expired")

	// ErrUserNotFound is returned when a username has no account.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a duplicate username.
	ErrUserExists = errors.New("user already exists")
)
