package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(&JWTConfig{
		Secret:      "test-secret",
		TokenExpiry: expiry,
		Issuer:      "shoutly-test",
	})
}

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	m := testManager(time.Hour)
	admin := &Admin{ID: uuid.New(), Email: "admin@example.com"}

	token, expiresAt, err := m.GenerateToken(admin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, admin.Email, claims.Email)
	assert.Equal(t, "shoutly-test", claims.Issuer)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	m := testManager(-time.Minute)
	admin := &Admin{ID: uuid.New(), Email: "admin@example.com"}

	token, _, err := m.GenerateToken(admin)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	m := testManager(time.Hour)
	admin := &Admin{ID: uuid.New(), Email: "admin@example.com"}

	token, _, err := m.GenerateToken(admin)
	require.NoError(t, err)

	other := NewJWTManager(&JWTConfig{Secret: "different-secret", TokenExpiry: time.Hour})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m := testManager(time.Hour)
	_, err := m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
