package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHMACTokenService_RoundTrip(t *testing.T) {
	svc, err := NewHMACTokenService("secret", time.Hour, testLogger())
	require.NoError(t, err)

	token, err := svc.IssueToken(42)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)

	id, err := claims.GetUserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestHMACTokenService_Rejects(t *testing.T) {
	svc, err := NewHMACTokenService("secret", time.Hour, testLogger())
	require.NoError(t, err)

	other, err := NewHMACTokenService("other-secret", time.Hour, testLogger())
	require.NoError(t, err)
	foreign, err := other.IssueToken(1)
	require.NoError(t, err)

	expiredSvc, err := NewHMACTokenService("secret", time.Hour, testLogger())
	require.NoError(t, err)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.IssueToken(1)
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"wrong issuer", wrongIssuer},
		{"non numeric subject", badSubject},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyToken(tt.token)
			assert.True(t, errors.Is(err, domain.ErrUnauthorized), "got %v", err)
		})
	}
}

func TestNewHMACTokenService_Validation(t *testing.T) {
	_, err := NewHMACTokenService("", time.Hour, testLogger())
	assert.Error(t, err)

	_, err = NewHMACTokenService("secret", 0, testLogger())
	assert.Error(t, err)
}
