package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserCreateAndGet(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	user := &User{Username: "alice", PasswordHash: "hash"}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == "" {
		t.Fatal("Create left ID empty")
	}

	got, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got.ID != user.ID || got.PasswordHash != "hash" {
		t.Errorf("got %+v", got)
	}
}

func TestUserDuplicateUsername(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	if err := repo.Create(context.Background(), &User{Username: "alice", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(context.Background(), &User{Username: "alice", PasswordHash: "h2"})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("err = %v, want ErrUserExists", err)
	}
}

func TestUserGetUnknown(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUserCount(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}

	seedTestUser(t, db, "alice", "pw")
	n, err = repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}
