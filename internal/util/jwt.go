package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the fixed payload of a bearer token. Subject carries the username.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager returns a manager signing with the HMAC algorithm named by
// alg (HS256, HS384 or HS512). An empty secret or a non-HMAC algorithm is an
// error.
func NewJWTManager(secret, alg string, ttl time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty secret")
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("jwt: unsupported signing algorithm %q", alg)
	}
	if ttl <= 0 {
		return nil, errors.New("jwt: token lifetime must be positive")
	}
	return &JWTManager{secret: []byte(secret), method: method, ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of m reading the current time from now.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	clone := *m
	clone.now = now
	return &clone
}

// Issue signs a token for subject. A non-positive ttl falls back to the
// configured lifetime.
func (m *JWTManager) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	return m.IssueWithEmail(subject, "", ttl)
}

func (m *JWTManager) IssueWithEmail(subject, email string, ttl time.Duration) (string, time.Time, error) {
	if subject == "" && email == "" {
		return "", time.Time{}, errors.New("jwt: subject is required")
	}
	if ttl <= 0 {
		ttl = m.ttl
	}
	issuedAt := m.now()
	expiresAt := issuedAt.Add(ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies the signature, algorithm and expiry of tokenString.
// Expired tokens yield ErrTokenExpired, everything else ErrTokenInvalid.
func (m *JWTManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
