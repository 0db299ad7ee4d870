package service

import (
	"testing"
	"time"

	"github.com/Oksidation/iq-testing-app/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
}

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: uuid.New(),
		Email:  "someone@example.com",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestPasswordHashRoundTrip(t *testing.T) {
	s := NewAuthService(testConfig(), nil, nil)

	hash, err := s.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, s.CheckPassword(hash, "correct horse battery staple"))
	assert.ErrorIs(t, s.CheckPassword(hash, "wrong password"), ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	s := NewAuthService(testConfig(), nil, nil)

	t.Run("Valid", func(t *testing.T) {
		token := signToken(t, "test-secret", time.Now().Add(time.Hour))
		claims, err := s.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "someone@example.com", claims.Email)
		assert.NotEqual(t, uuid.Nil, claims.UserID)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token := signToken(t, "other-secret", time.Now().Add(time.Hour))
		_, err := s.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		token := signToken(t, "test-secret", time.Now().Add(-time.Minute))
		_, err := s.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := s.ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}
