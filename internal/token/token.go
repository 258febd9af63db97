// Package token issues and validates short-lived, purpose-scoped access
// tokens. A token is self-contained: validity is a function of its HMAC
// signature and age only, nothing is stored server-side and nothing can be
// revoked before expiry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ScopeSMSSend       = "sms-send"
	ScopePasswordReset = "password-reset"
	ScopeOAuthBind     = "oauth-bind"
	ScopeEmailVerify   = "email-verify"
)

// ErrInvalid covers every validation failure: bad signature, expired token,
// wrong scope, or a subject that does not match the acted-on resource. Callers
// must not learn which check failed.
var ErrInvalid = errors.New("invalid access token")

type claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Service signs tokens with a process-wide secret. Each scope carries its own
// maximum age.
type Service struct {
	secret  []byte
	maxAges map[string]time.Duration
}

func NewService(secret string, maxAges map[string]time.Duration) *Service {
	ages := make(map[string]time.Duration, len(maxAges))
	for scope, age := range maxAges {
		ages[scope] = age
	}
	return &Service{secret: []byte(secret), maxAges: ages}
}

// Issue signs a token binding subject to scope, stamped with the current time.
func (s *Service) Issue(scope, subject string) (string, error) {
	maxAge, ok := s.maxAges[scope]
	if !ok {
		return "", errors.New("token: unknown scope " + scope)
	}
	now := time.Now()
	c := claims{
		Purpose: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(maxAge)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Validate checks signature, age, and scope, returning the embedded subject.
func (s *Service) Validate(scope, tokenString string) (string, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalid
	}
	if c.Purpose != scope {
		return "", ErrInvalid
	}
	return c.Subject, nil
}

// ValidateSubject additionally requires the token subject to equal expected.
func (s *Service) ValidateSubject(scope, tokenString, expected string) error {
	subject, err := s.Validate(scope, tokenString)
	if err != nil {
		return err
	}
	if subject != expected {
		return ErrInvalid
	}
	return nil
}
