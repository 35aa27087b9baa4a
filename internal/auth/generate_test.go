package auth

import "testing"

func TestNewTokenValueLength(t *testing.T) {
	for _, n := range []int{8, 32} {
		v, err := NewTokenValue(n)
		if err != nil {
			t.Fatalf("NewTokenValue(%d): %v", n, err)
		}
		if len(v) != n {
			t.Errorf("length = %d, want %d", len(v), n)
		}
		for _, c := range v {
			ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			if !ok {
				t.Errorf("non-alphanumeric character %q in %q", c, v)
			}
		}
	}
}

func TestNewTokenValueInvalidLength(t *testing.T) {
	if _, err := NewTokenValue(0); err == nil {
		t.Error("expected error for zero length")
	}
	if _, err := NewTokenValue(-1); err == nil {
		t.Error("expected error for negative length")
	}
}

func TestNewTokenValueUniqueness(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		v, err := NewTokenValue(8)
		if err != nil {
			t.Fatalf("NewTokenValue: %v", err)
		}
		if seen[v] {
			t.Fatalf("duplicate token after %d draws: %q", i, v)
		}
		seen[v] = true
	}
}

func TestHashTokenStable(t *testing.T) {
	a := HashToken("secret")
	b := HashToken("secret")
	if a != b {
		t.Error("same input hashed to different values")
	}
	if a == HashToken("other") {
		t.Error("different inputs hashed to same value")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
