package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

const resetTokenBytes = 32

// ResetTokenSigner produces password reset tokens and the keyed digests that
// are persisted in their place. The salt keeps reset digests in a different
// domain than anything else signed with the same secret.
type ResetTokenSigner struct {
	key  []byte
	salt string
}

func NewResetTokenSigner(secret, salt string) (*ResetTokenSigner, error) {
	if secret == "" {
		return nil, errors.New("reset token: empty secret")
	}
	if strings.TrimSpace(salt) == "" {
		return nil, errors.New("reset token: empty salt")
	}
	return &ResetTokenSigner{key: []byte(secret), salt: salt}, nil
}

// Generate returns a fresh random token and its digest.
func (s *ResetTokenSigner) Generate() (token, digest string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, s.Digest(token), nil
}

// ValidResetToken reports whether token has the shape Generate produces:
// lowercase hex of resetTokenBytes random bytes.
func ValidResetToken(token string) bool {
	if len(token) != hex.EncodedLen(resetTokenBytes) {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Digest is deterministic so the store can look a token up by it.
func (s *ResetTokenSigner) Digest(token string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(s.salt))
	mac.Write([]byte{0})
	mac.Write([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(mac.Sum(nil))
}
