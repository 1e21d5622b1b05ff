package security

import (
	"errors"
	"fmt"
	"time"

	"system_sentinel/internal/common"

	"github.com/golang-jwt/jwt/v5"
)

// Internal token failure taxonomy. The distinction is kept for logging and
// tests; every one of these wraps common.ErrUnauthorized so the external
// response is the same generic 401 regardless of which check failed.
var (
	ErrInvalidSignature = fmt.Errorf("token signature invalid: %w", common.ErrUnauthorized)
	ErrTokenExpired     = fmt.Errorf("token expired: %w", common.ErrUnauthorized)
	ErrMalformedToken   = fmt.Errorf("token missing subject claim: %w", common.ErrUnauthorized)
)

// TokenService issues and verifies HMAC-signed bearer tokens carrying a
// subject and an absolute expiration. Tokens are self-contained; nothing is
// persisted server-side and there is no revocation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService validates the configured algorithm and returns a service
// with the given default time-to-live. Only HS256 is supported.
func NewTokenService(secret []byte, algorithm string, ttl time.Duration) (*TokenService, error) {
	if algorithm != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if len(secret) == 0 {
		return nil, errors.New("signing secret must not be empty")
	}
	return &TokenService{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured default token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token whose payload is {sub: subject, exp: now + ttl}.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	return token.SignedString(s.secret)
}

// VerifySubject checks signature first, then expiration, then extracts the
// subject. Expiration is inclusive: a token whose exp equals the current
// instant is already expired, with no clock-skew grace.
func (s *TokenService) VerifySubject(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		// Bad signature, wrong algorithm and undecodable structure are all
		// the same failure class.
		return "", ErrInvalidSignature
	}
	if claims.Subject == "" {
		return "", ErrMalformedToken
	}
	return claims.Subject, nil
}
