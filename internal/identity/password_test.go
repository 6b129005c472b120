// internal/identity/password_test.go
package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifySecret(t *testing.T) {
	hash, salt, err := hashSecret("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	ok, err := verifySecret("correct horse battery staple", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifySecret("wrong password", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashSecretUsesFreshSalt(t *testing.T) {
	hash1, salt1, err := hashSecret("same password")
	require.NoError(t, err)
	hash2, salt2, err := hashSecret("same password")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}

func TestVerifySecretRejectsCorruptEncoding(t *testing.T) {
	_, _, err := hashSecret("secret")
	require.NoError(t, err)

	_, err = verifySecret("secret", "not base64!!!", "also not base64!!!")
	assert.Error(t, err)
}
