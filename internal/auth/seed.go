package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// EnsureSeedUser creates the configured account when the user table is
// empty. An existing account with the same username is left untouched,
// so a changed seed password never clobbers a live link.
func EnsureSeedUser(ctx context.Context, users UserRepository, username, password string, logger *slog.Logger) error {
	if username == "" || password == "" {
		return nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking seed precondition: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	err = users.Create(ctx, &User{Username: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil
		}
		return fmt.Errorf("creating seed user: %w", err)
	}

	logger.Info("seed user created", "username", username)
	return nil
}
