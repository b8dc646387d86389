//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"car-rental-booking/internal/pkg/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ValidateToken(t *testing.T) {
	svc := jwt.NewService("test-secret", "car-rental-test")
	userID := uuid.New()

	t.Run("success: round trip", func(t *testing.T) {
		token, err := svc.GenerateToken(userID, time.Hour)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)

		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "car-rental-test", claims.Issuer)
	})

	t.Run("error: expired", func(t *testing.T) {
		token, err := svc.GenerateToken(userID, -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)

		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("error: signed with another secret", func(t *testing.T) {
		token, err := jwt.NewService("other-secret", "car-rental-test").GenerateToken(userID, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)

		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("error: foreign issuer", func(t *testing.T) {
		token, err := jwt.NewService("test-secret", "someone-else").GenerateToken(userID, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)

		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("error: missing user", func(t *testing.T) {
		claims := jwt.Claims{
			RegisteredClaims: gojwt.RegisteredClaims{
				Issuer:    "car-rental-test",
				ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)

		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("error: garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")

		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
