package auth

import (
	"strings"
	"testing"

	"github.com/gracechapel/shepherd/internal/model"
)

func TestSHA256Hex(t *testing.T) {
	got := SHA256Hex("admin123")
	want := "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"
	if got != want {
		t.Errorf("SHA256Hex(admin123) = %q, want %q", got, want)
	}
}

func TestVerifyUserPlaintext(t *testing.T) {
	u := &model.User{Password: "admin123"}
	if !VerifyUser(u, "admin123") {
		t.Error("plaintext match rejected")
	}
	if VerifyUser(u, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestVerifyUserLegacyDigest(t *testing.T) {
	u := &model.User{PasswordHash: SHA256Hex("secret")}
	if !VerifyUser(u, "secret") {
		t.Error("sha256 digest match rejected")
	}
	if VerifyUser(u, "Secret") {
		t.Error("wrong case accepted")
	}
}

func TestVerifyUserBcrypt(t *testing.T) {
	hash, err := HashPassword("leaderpass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("hash %q does not look like bcrypt", hash)
	}

	u := &model.User{PasswordHash: hash}
	if !VerifyUser(u, "leaderpass") {
		t.Error("bcrypt match rejected")
	}
	if VerifyUser(u, "leaderpas") {
		t.Error("wrong password accepted")
	}
}

func TestVerifyUserEdgeCases(t *testing.T) {
	if VerifyUser(nil, "anything") {
		t.Error("nil user accepted")
	}
	if VerifyUser(&model.User{}, "") {
		t.Error("credential-less user accepted empty password")
	}
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p := GeneratePassword()
		if len(p) != 10 {
			t.Fatalf("len = %d, want 10", len(p))
		}
		for _, c := range p {
			if !strings.ContainsRune(passwordCharset, c) {
				t.Fatalf("unexpected character %q in %q", c, p)
			}
		}
		seen[p] = true
	}
	if len(seen) < 2 {
		t.Error("generated passwords are not random")
	}
}
