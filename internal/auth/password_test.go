package auth

import (
	"strings"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	if _, err := NormalizeName("   "); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, err := NormalizeName(strings.Repeat("a", maxNameLength+1)); err == nil {
		t.Fatal("expected error for overlong name")
	}
	got, err := NormalizeName("  Tanaka  ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "Tanaka" {
		t.Fatalf("expected trimmed name, got %q", got)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "correct-horse") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "wrong-horse") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestVerifyPasswordWithoutHash(t *testing.T) {
	// Operators without a password accept any candidate.
	if !VerifyPassword("", "anything") {
		t.Fatal("expected empty hash to accept")
	}
	if !VerifyPassword("   ", "") {
		t.Fatal("expected blank hash to accept")
	}
}

func TestValidatePasswordBounds(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Fatal("expected minimum length error")
	}
	if err := ValidatePassword(strings.Repeat("p", maxPasswordLength+1)); err == nil {
		t.Fatal("expected maximum length error")
	}
	if err := ValidatePassword("long-enough-pass"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
