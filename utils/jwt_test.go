package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	service := NewJWTService("test-secret")

	t.Run("accepts a valid token and returns its claims", func(t *testing.T) {
		signed := signToken(t, "test-secret", Claims{
			UserID: "user-1",
			Role:   RoleAmbulanceDriver,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		claims, err := service.ValidateToken(signed)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, RoleAmbulanceDriver, claims.Role)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		signed := signToken(t, "wrong-secret", Claims{UserID: "user-1"})
		_, err := service.ValidateToken(signed)
		require.Error(t, err)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		signed := signToken(t, "test-secret", Claims{
			UserID: "user-1",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})
		_, err := service.ValidateToken(signed)
		require.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-token")
		require.Error(t, err)
	})

	t.Run("rejects a non-HMAC signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ValidateToken(signed)
		require.Error(t, err)
	})
}
