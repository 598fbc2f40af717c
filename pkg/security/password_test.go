package security_test

import (
	"strings"
	"testing"

	"github.com/angelmondragon/secureguard-backend/pkg/config"
	"github.com/angelmondragon/secureguard-backend/pkg/security"
	"golang.org/x/crypto/bcrypt"
)

func fastArgonConfig() config.PasswordConfig {
	return config.PasswordConfig{
		Algorithm:        config.PasswordAlgorithmArgon2id,
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", fastArgonConfig())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestHasherSaltsEveryHash(t *testing.T) {
	h := security.NewHasher(fastArgonConfig())
	first, err := h.Hash("admin123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash("admin123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct hashes for the same password")
	}
	for _, encoded := range []string{first, second} {
		ok, err := h.Verify("admin123", encoded)
		if err != nil || !ok {
			t.Fatalf("expected verify to succeed, ok=%v err=%v", ok, err)
		}
	}
}

func TestHasherBcrypt(t *testing.T) {
	cfg := fastArgonConfig()
	cfg.Algorithm = config.PasswordAlgorithmBcrypt
	cfg.BcryptCost = bcrypt.MinCost
	h := security.NewHasher(cfg)

	hash, err := h.Hash("guard-pass")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	ok, err := h.Verify("guard-pass", hash)
	if err != nil || !ok {
		t.Fatalf("expected bcrypt verify to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("wrong", hash)
	if err != nil || ok {
		t.Fatalf("expected mismatch without error, ok=%v err=%v", ok, err)
	}
}

func TestHasherVerifiesLegacyBcryptUnderArgonConfig(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	h := security.NewHasher(fastArgonConfig())
	ok, err := h.Verify("admin123", string(legacy))
	if err != nil || !ok {
		t.Fatalf("expected legacy bcrypt hash to verify, ok=%v err=%v", ok, err)
	}
}

func TestHasherEmptyStoredHash(t *testing.T) {
	h := security.NewHasher(fastArgonConfig())
	ok, err := h.Verify("anything", "")
	if err != nil {
		t.Fatalf("expected no error for empty hash, got %v", err)
	}
	if ok {
		t.Fatal("empty stored hash must never verify")
	}
}

func TestHasherRejectsEmptyPassword(t *testing.T) {
	if _, err := security.NewHasher(fastArgonConfig()).Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if _, err := security.NewHasher(fastArgonConfig()).Verify("irrelevant", "$argon2id$v=19$m=x$a$b"); err == nil {
		t.Fatal("expected error for malformed argon params")
	}
}
