package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gracechapel/shepherd/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// SHA256Hex returns the lowercase hex SHA-256 digest of s. Legacy
// credentials were stored this way before bcrypt; login still accepts
// them until the migration completes.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashPassword bcrypt-hashes a new password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyUser reports whether password matches the user's stored
// credential. Transitional dual-check: a stored plaintext password, a
// legacy SHA-256 hex digest, and a bcrypt hash are all accepted.
func VerifyUser(u *model.User, password string) bool {
	if u == nil {
		return false
	}
	if u.Password != "" && u.Password == password {
		return true
	}
	if u.PasswordHash == "" {
		return false
	}
	if strings.HasPrefix(u.PasswordHash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
	}
	return u.PasswordHash == SHA256Hex(password)
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// GeneratePassword returns a random 10-character password for newly
// promoted leaders.
func GeneratePassword() string {
	buf := make([]byte, 10)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = passwordCharset[int(b)%len(passwordCharset)]
	}
	return string(buf)
}
