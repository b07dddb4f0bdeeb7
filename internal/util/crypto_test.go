package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenIsUnique(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestHmacSHA256(t *testing.T) {
	h1 := HmacSHA256("secret", "data")
	h2 := HmacSHA256("secret", "data")
	h3 := HmacSHA256("other", "data")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("abc", "abc"))
	assert.False(t, ConstantTimeEqual("abc", "abd"))
	assert.False(t, ConstantTimeEqual("abc", "abcd"))
	assert.True(t, ConstantTimeEqual("", ""))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("Sicher#123")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("Sicher#123", hash))
	assert.False(t, CheckPasswordHash("Falsch#123", hash))
}

func TestDummyHashRejectsAnyPassword(t *testing.T) {
	dummy, err := DummyHash()
	require.NoError(t, err)
	assert.False(t, CheckPasswordHash("anything", dummy))
}

func TestGenerateVerificationCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}

func TestRandomIntRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		n, err := RandomInt(1, 10)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 10)
	}
}
