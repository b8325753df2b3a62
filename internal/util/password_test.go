package util

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=1,p=4$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}
	if strings.Contains(encoded, "s3cret-pass") {
		t.Fatal("encoded hash must not contain the plaintext")
	}
	if !VerifyPassword("s3cret-pass", encoded) {
		t.Fatalf("expected password verification to succeed")
	}
	if VerifyPassword("wrong-pass", encoded) {
		t.Fatalf("expected password verification to fail for wrong password")
	}
	if NeedsRehash(encoded) {
		t.Fatal("fresh hash should not need a rehash")
	}
}

func TestHashPasswordSaltsEachHash(t *testing.T) {
	first, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct hashes for the same password")
	}
}

func TestHashPasswordEmptyInput(t *testing.T) {
	if _, err := HashPassword(""); err != ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestVerifyPasswordBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if !VerifyPassword("pw123", string(legacy)) {
		t.Fatal("expected bcrypt hash to verify")
	}
	if VerifyPassword("pw124", string(legacy)) {
		t.Fatal("expected bcrypt mismatch to fail")
	}
	if !NeedsRehash(string(legacy)) {
		t.Fatal("bcrypt hash should be flagged for rehash")
	}
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$onlysalt",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=4$c2FsdA$a2V5",
	}
	for _, encoded := range cases {
		if VerifyPassword("anything", encoded) {
			t.Fatalf("expected %q to be rejected", encoded)
		}
	}
	if VerifyPassword("", "$2a$10$abcdefghijklmnopqrstuv") {
		t.Fatal("empty password must never verify")
	}
}

func TestNeedsRehashOutdatedParams(t *testing.T) {
	outdated := encodeArgon(argonParams{memory: 32 * 1024, time: 1, threads: 2}, []byte("0123456789abcdef"), []byte("0123456789abcdef0123456789abcdef"))
	if !NeedsRehash(outdated) {
		t.Fatal("expected outdated params to need rehash")
	}
}
