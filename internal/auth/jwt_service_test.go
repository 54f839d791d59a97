package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	scope, token, err := svc.GenerateScopeToken()
	require.NoError(t, err)
	require.NotEmpty(t, scope)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, scope, claims.Scope())
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTService_ScopesAreUnique(t *testing.T) {
	svc := NewJWTService("test-secret", 0)
	a, _, err := svc.GenerateScopeToken()
	require.NoError(t, err)
	b, _, err := svc.GenerateScopeToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestJWTService_NoExpiry(t *testing.T) {
	svc := NewJWTService("test-secret", 0)
	_, token, err := svc.GenerateScopeToken()
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)
	_, token, err := svc.GenerateScopeToken()
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		_, err := NewJWTService("other", time.Minute).ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTService("test-secret", time.Minute)
		later.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &ScopeClaims{}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = svc.ValidateToken(raw)
		assert.EqualError(t, err, "scope not found")
	})

	t.Run("none algorithm", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, &ScopeClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "forged"},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateToken(raw)
		assert.Error(t, err)
	})
}
