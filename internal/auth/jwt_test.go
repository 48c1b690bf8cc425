package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/emmanuelnwankwo/api-template/pkg/errors"
)

func newTestTokenService() *TokenService {
	return NewTokenService("test-secret-key-for-testing", 24*time.Hour, 24*time.Hour)
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.IssueSession("user-1", "tony@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.ID)
	assert.Equal(t, "tony@x.com", claims.Email)
	assert.Equal(t, "account-service", claims.Issuer)
}

func TestVerify_ExpiredToken(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.Issue("user-1", "tony@x.com", -time.Minute)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerify_TamperedToken(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.IssueSession("user-1", "tony@x.com")
	require.NoError(t, err)

	// Flip a byte in the signature segment.
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'a' {
		tampered[last] = 'b'
	} else {
		tampered[last] = 'a'
	}

	claims, err := svc.Verify(string(tampered))
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := newTestTokenService().IssueSession("user-1", "tony@x.com")
	require.NoError(t, err)

	other := NewTokenService("a-completely-different-secret", 24*time.Hour, 24*time.Hour)
	claims, err := other.Verify(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	svc := newTestTokenService()

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		claims, err := svc.Verify(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	}
}
