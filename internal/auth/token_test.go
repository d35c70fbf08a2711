package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	t.Run("Success - Round trip", func(t *testing.T) {
		token, err := m.Generate(42, "editor")
		require.NoError(t, err)

		p, err := m.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, Principal{ID: 42, Role: "editor"}, p)
		assert.True(t, p.CanManage(42))
		assert.False(t, p.CanManage(7))
	})

	t.Run("Error - Expired", func(t *testing.T) {
		token, err := m.Generate(1, "admin")
		require.NoError(t, err)

		later := NewTokenManager("secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = later.Parse(token)
		assert.Error(t, err)
	})

	t.Run("Error - Wrong secret", func(t *testing.T) {
		token, err := NewTokenManager("other", time.Hour).Generate(1, "admin")
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.Error(t, err)
	})

	t.Run("Error - Unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			Role:             "admin",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.Error(t, err)
	})

	t.Run("Error - Missing subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: "admin"}).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.Error(t, err)
	})
}

func TestPrincipal(t *testing.T) {
	admin := Principal{ID: 1, Role: "admin"}
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.CanManage(99))

	assert.False(t, Principal{}.CanManage(0))
}
