// Package auth issues and verifies session tokens, checks the demo
// credentials, and gates routes on the session cookie.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed session payload.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service. ttl is usually the result of
// ParseExpiry.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime given to issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for the given subject and email.
func (s *TokenService) Issue(subject, email string) (string, error) {
	if subject == "" || email == "" {
		return "", errors.New("subject and email are required")
	}

	now := s.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses token and reports whether it is a valid session. Any
// failure, including a payload without subject or email, yields false.
func (s *TokenService) Verify(token string) (Claims, bool) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, false
	}

	if claims.Subject == "" || claims.Email == "" {
		return Claims{}, false
	}
	return claims, true
}
