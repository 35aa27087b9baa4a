package auth

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testService(t *testing.T, db *sql.DB, codeTTL time.Duration) *Service {
	t.Helper()
	return NewService(
		NewUserRepository(db), NewTokenRepository(db),
		8, 32, codeTTL,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestIssueCode(t *testing.T) {
	db := testDB(t)
	seedTestUser(t, db, "alice", "hunter22")
	svc := testService(t, db, 10*time.Second)

	code, err := svc.IssueCode(context.Background(), "alice", "hunter22", "st4te")
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	if len(code) != 8 {
		t.Errorf("code length = %d, want 8", len(code))
	}

	stored, err := NewTokenRepository(db).GetByValue(context.Background(), code)
	if err != nil {
		t.Fatalf("GetByValue: %v", err)
	}
	if stored.Kind != KindCode || stored.Username != "alice" || stored.State != "st4te" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestIssueCodeBadCredentials(t *testing.T) {
	db := testDB(t)
	seedTestUser(t, db, "alice", "hunter22")
	svc := testService(t, db, 10*time.Second)

	if _, err := svc.IssueCode(context.Background(), "alice", "wrong", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.IssueCode(context.Background(), "nobody", "hunter22", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestExchangeCode(t *testing.T) {
	db := testDB(t)
	seedTestUser(t, db, "alice", "hunter22")
	svc := testService(t, db, 10*time.Second)

	code, err := svc.IssueCode(context.Background(), "alice", "hunter22", "")
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}

	access, err := svc.ExchangeCode(context.Background(), code)
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if len(access) != 32 {
		t.Errorf("access token length = %d, want 32", len(access))
	}

	username, err := svc.Authenticate(context.Background(), access)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if username != "alice" {
		t.Errorf("username = %q", username)
	}
}

func TestExchangeCodeSingleUse(t *testing.T) {
	db := testDB(t)
	seedTestUser(t, db, "alice", "hunter22")
	svc := testService(t, db, 10*time.Second)

	code, err := svc.IssueCode(context.Background(), "alice", "hunter22", "")
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	if _, err := svc.ExchangeCode(context.Background(), code); err != nil {
		t.Fatalf("first exchange: %v", err)
	}
	if _, err := svc.ExchangeCode(context.Background(), code); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("second exchange err = %v, want ErrTokenNotFound", err)
	}
}

func TestExchangeCodeExpired(t *testing.T) {
	db := testDB(t)
	seedTestUser(t, db, "alice", "hunter22")
	svc := testService(t, db, time.Nanosecond)

	code, err := svc.IssueCode(context.Background(), "alice", "hunter22", "")
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := svc.ExchangeCode(context.Background(), code); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestExchangeAccessTokenLeavesItValid(t *testing.T) {
	db := testDB(t)
	seedTestUser(t, db, "alice", "hunter22")
	svc := testService(t, db, 10*time.Second)

	code, err := svc.IssueCode(context.Background(), "alice", "hunter22", "")
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	access, err := svc.ExchangeCode(context.Background(), code)
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}

	// Feeding the access token itself into the exchange path must fail
	// without revoking it.
	if _, err := svc.ExchangeCode(context.Background(), access); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("exchange of access token err = %v, want ErrTokenNotFound", err)
	}

	username, err := svc.Authenticate(context.Background(), access)
	if err != nil {
		t.Fatalf("access token no longer valid after failed exchange: %v", err)
	}
	if username != "alice" {
		t.Errorf("username = %q", username)
	}
}

func TestAuthenticateRejectsCode(t *testing.T) {
	db := testDB(t)
	seedTestUser(t, db, "alice", "hunter22")
	svc := testService(t, db, 10*time.Second)

	code, err := svc.IssueCode(context.Background(), "alice", "hunter22", "")
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), code); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("err = %v, want ErrTokenNotFound", err)
	}
}

func TestRevokeAccessIdempotent(t *testing.T) {
	db := testDB(t)
	seedTestUser(t, db, "alice", "hunter22")
	svc := testService(t, db, 10*time.Second)

	code, err := svc.IssueCode(context.Background(), "alice", "hunter22", "")
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	access, err := svc.ExchangeCode(context.Background(), code)
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}

	if err := svc.RevokeAccess(context.Background(), access); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := svc.RevokeAccess(context.Background(), access); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), access); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("revoked token authenticated: err = %v", err)
	}
}

func TestSeedUserOnlyOnEmptyTable(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := EnsureSeedUser(context.Background(), users, "alice", "hunter22", logger); err != nil {
		t.Fatalf("EnsureSeedUser: %v", err)
	}
	first, err := users.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}

	// Second run with a different password must not touch the account.
	if err := EnsureSeedUser(context.Background(), users, "alice", "different", logger); err != nil {
		t.Fatalf("second EnsureSeedUser: %v", err)
	}
	second, err := users.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if first.PasswordHash != second.PasswordHash {
		t.Error("seed run overwrote existing password")
	}
}
