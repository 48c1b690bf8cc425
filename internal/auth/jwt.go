package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/emmanuelnwankwo/api-template/pkg/errors"
)

// tokenIssuer identifies tokens minted by this service.
const tokenIssuer = "account-service"

// Claims is the identity bundle embedded in every token.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies time-bound identity tokens with a
// process-wide secret. The secret is injected at construction and never
// read from ambient state; it is not rotated at runtime.
type TokenService struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewTokenService creates a token service with the given signing secret and
// lifetimes for session and password-reset tokens.
func NewTokenService(secret string, sessionTTL, resetTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}
}

// IssueSession mints a session token for the given identity.
func (s *TokenService) IssueSession(id, email string) (string, error) {
	return s.Issue(id, email, s.sessionTTL)
}

// IssueReset mints a password-reset token for the given identity.
func (s *TokenService) IssueReset(id, email string) (string, error) {
	return s.Issue(id, email, s.resetTTL)
}

// Issue mints a signed HS256 token carrying the identity claims with the
// given lifetime.
func (s *TokenService) Issue(id, email string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		ID:    id,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and expiry of a token and returns its claims.
// Malformed, tampered, and expired tokens all fail with the same
// ErrInvalidToken sentinel; callers cannot distinguish the cases. There is
// no revocation: a token stays valid for its whole lifetime even if the
// account state changes.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
