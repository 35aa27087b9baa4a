package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Service implements the OAuth authorization-code flow over the user
// and token repositories.
type Service struct {
	users  UserRepository
	tokens TokenRepository

	codeLength   int
	accessLength int
	codeTTL      time.Duration

	logger *slog.Logger
}

// NewService builds the auth service.
func NewService(users UserRepository, tokens TokenRepository, codeLength, accessLength int, codeTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:        users,
		tokens:       tokens,
		codeLength:   codeLength,
		accessLength: accessLength,
		codeTTL:      codeTTL,
		logger:       logger,
	}
}

// IssueCode verifies the credentials and mints a short-lived
// authorization code bound to the account.
func (s *Service) IssueCode(ctx context.Context, username, password, state string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	code, err := NewTokenValue(s.codeLength)
	if err != nil {
		return "", err
	}
	token := &Token{
		Value:    code,
		Username: user.Username,
		Kind:     KindCode,
		State:    state,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", err
	}

	s.logger.Info("authorization code issued", "username", user.Username)
	return code, nil
}

// ExchangeCode consumes an authorization code and mints an access
// token for its account. Codes are single use; a code past its TTL is
// consumed but yields ErrTokenExpired.
func (s *Service) ExchangeCode(ctx context.Context, code string) (string, error) {
	// Consume only matches authorization codes; feeding another kind of
	// token value into the exchange must not delete it.
	token, err := s.tokens.Consume(ctx, code, KindCode)
	if err != nil {
		return "", err
	}
	// Exactly at the threshold counts as expired.
	if time.Since(token.IssuedAt) >= s.codeTTL {
		return "", ErrTokenExpired
	}

	access, err := NewTokenValue(s.accessLength)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Create(ctx, &Token{
		Value:    access,
		Username: token.Username,
		Kind:     KindAccess,
	}); err != nil {
		return "", err
	}

	s.logger.Info("access token issued", "username", token.Username)
	return access, nil
}

// Authenticate resolves a bearer access token to its account.
func (s *Service) Authenticate(ctx context.Context, access string) (string, error) {
	token, err := s.tokens.GetByValue(ctx, access)
	if err != nil {
		return "", err
	}
	if token.Kind != KindAccess {
		return "", ErrTokenNotFound
	}
	return token.Username, nil
}

// RevokeAccess deletes an access token. Revoking an already revoked
// token is not an error; unlink must be idempotent.
func (s *Service) RevokeAccess(ctx context.Context, access string) error {
	err := s.tokens.Delete(ctx, access)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		return err
	}
	return nil
}

// Sweep removes authorization codes that outlived their TTL without
// ever being exchanged.
func (s *Service) Sweep(ctx context.Context) error {
	n, err := s.tokens.DeleteExpiredCodes(ctx, s.codeTTL)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Debug("expired authorization codes swept", "count", n)
	}
	return nil
}
