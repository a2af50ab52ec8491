package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)

	token, err := m.GenerateToken(42)
	require.NoError(t, err)

	userID, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour)
	assert.Error(t, err)

	m, err := NewManager("secret", 0)
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, m.ttl)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m, err := NewManager("secret", time.Minute)
	require.NoError(t, err)

	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }
	token, err := m.GenerateToken(7)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	signer, err := NewManager("secret", time.Hour)
	require.NoError(t, err)
	verifier, err := NewManager("another-secret", time.Hour)
	require.NoError(t, err)

	token, err := signer.GenerateToken(7)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestValidateTokenRejectsUnsignedToken(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ValidateToken(unsigned)
	assert.Error(t, err)

	_, err = m.ValidateToken("garbage")
	assert.Error(t, err)
}
