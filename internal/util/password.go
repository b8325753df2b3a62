package util

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	saltLength   = 16
	hashLength   = 32
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4

	argonPrefix = "$argon2id$"
)

var (
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrUnsupportedHash   = errors.New("unsupported password hash format")
	errMalformedArgonKey = errors.New("malformed argon2id hash")
)

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

var currentParams = argonParams{memory: argonMemory, time: argonTime, threads: argonThreads}

func generateSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// HashPassword derives an Argon2id key for password and returns it in the
// PHC string format, so the salt and cost travel with the hash.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", ErrEmptyPassword
	}
	salt, err := generateSalt()
	if err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, currentParams.time, currentParams.memory, currentParams.threads, hashLength)
	return encodeArgon(currentParams, salt, key), nil
}

// VerifyPassword reports whether password matches encoded. Both Argon2id and
// legacy bcrypt hashes are accepted.
func VerifyPassword(password, encoded string) bool {
	if len(password) == 0 || encoded == "" {
		return false
	}
	switch {
	case strings.HasPrefix(encoded, argonPrefix):
		params, salt, expected, err := decodeArgon(encoded)
		if err != nil {
			return false
		}
		candidate := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(expected)))
		return subtle.ConstantTimeCompare(candidate, expected) == 1
	case isBcrypt(encoded):
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
	default:
		return false
	}
}

// NeedsRehash is true for bcrypt hashes and Argon2id hashes created with
// parameters other than the current ones.
func NeedsRehash(encoded string) bool {
	if !strings.HasPrefix(encoded, argonPrefix) {
		return true
	}
	params, _, _, err := decodeArgon(encoded)
	if err != nil {
		return true
	}
	return params != currentParams
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") || strings.HasPrefix(encoded, "$2b$") || strings.HasPrefix(encoded, "$2y$")
}

func encodeArgon(p argonParams, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decodeArgon(encoded string) (argonParams, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return argonParams{}, nil, nil, errMalformedArgonKey
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return argonParams{}, nil, nil, errMalformedArgonKey
	}
	if version != argon2.Version {
		return argonParams{}, nil, nil, ErrUnsupportedHash
	}

	var p argonParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return argonParams{}, nil, nil, errMalformedArgonKey
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return argonParams{}, nil, nil, errMalformedArgonKey
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return argonParams{}, nil, nil, errMalformedArgonKey
	}
	return p, salt, key, nil
}
