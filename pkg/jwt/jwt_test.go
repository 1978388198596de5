package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateAccessToken("4b7a0f1e-8a5d-4d44-9c63-0b1f4f0e7a11", "ciftci@example.com", "supplier")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "4b7a0f1e-8a5d-4d44-9c63-0b1f4f0e7a11", claims.UserID)
	assert.Equal(t, "supplier", claims.Role)
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	token, err := NewManager("one", time.Hour).GenerateAccessToken("u", "", "supplier")
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("s", time.Hour)
	m.accessTTL = -time.Minute

	token, err := m.GenerateAccessToken("u", "", "supplier")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestManager_RejectsWrongType(t *testing.T) {
	claims := Claims{
		UserID: "u",
		Type:   "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewManager("s", time.Hour).ValidateAccessToken(token)
	assert.ErrorContains(t, err, "invalid token type")
}
