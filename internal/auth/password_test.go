package auth

import (
	"errors"
	"testing"
)

func TestHashPassword(t *testing.T) {
	t.Run("hashes a valid password", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hash == "" || hash == "correct horse battery" {
			t.Fatalf("expected a bcrypt hash, got %q", hash)
		}
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		_, err := HashPassword("short")
		if !errors.Is(err, ErrPasswordTooShort) {
			t.Fatalf("expected ErrPasswordTooShort, got %v", err)
		}
	})
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := VerifyPassword("correct horse battery", hash); err != nil {
		t.Fatalf("expected match, got %v", err)
	}

	if err := VerifyPassword("wrong password!", hash); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}
