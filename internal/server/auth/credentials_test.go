package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewCredentialChecker(t *testing.T) {
	c, err := NewCredentialChecker("plain")
	require.NoError(t, err)
	assert.IsType(t, PlainChecker{}, c)

	c, err = NewCredentialChecker("")
	require.NoError(t, err)
	assert.IsType(t, PlainChecker{}, c)

	c, err = NewCredentialChecker("bcrypt")
	require.NoError(t, err)
	assert.IsType(t, BcryptChecker{}, c)

	_, err = NewCredentialChecker("md5")
	require.ErrorContains(t, err, `unknown password scheme "md5"`)
}

func TestPlainChecker(t *testing.T) {
	c := PlainChecker{}

	stored, err := c.Hash("admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin123", stored)

	assert.True(t, c.Match(stored, "admin123"))
	assert.False(t, c.Match(stored, "admin1234"))
	assert.False(t, c.Match(stored, "ADMIN123"))
	assert.False(t, c.Match(stored, ""))
}

func TestBcryptChecker(t *testing.T) {
	c := BcryptChecker{Cost: bcrypt.MinCost}

	stored, err := c.Hash("user123")
	require.NoError(t, err)
	assert.NotEqual(t, "user123", stored)

	assert.True(t, c.Match(stored, "user123"))
	assert.False(t, c.Match(stored, "user456"))
	assert.False(t, c.Match("user123", "user123"), "plain stored value is not a hash")
}
