package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("max@example.com"))
	assert.True(t, IsValidEmail("max.muster+tag@sub.example.de"))

	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("max"))
	assert.False(t, IsValidEmail("max@"))
	assert.False(t, IsValidEmail("max@example"))
	assert.False(t, IsValidEmail("max muster@example.com"))
}

func TestIsValidUsername(t *testing.T) {
	assert.True(t, IsValidUsername("max"))
	assert.True(t, IsValidUsername(strings.Repeat("a", 50)))

	assert.False(t, IsValidUsername("ab"))
	assert.False(t, IsValidUsername(strings.Repeat("a", 51)))
	assert.False(t, IsValidUsername(""))
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("Sicher#123"))

	assert.False(t, IsStrongPassword("Kurz#1a"))     // too short
	assert.False(t, IsStrongPassword("sicher#123"))  // no upper case
	assert.False(t, IsStrongPassword("SICHER#123"))  // no lower case
	assert.False(t, IsStrongPassword("SicherHash#")) // no digit
	assert.False(t, IsStrongPassword("Sicher1234"))  // no symbol
}
