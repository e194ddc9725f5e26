package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_NeverStoresPlaintext(t *testing.T) {
	hashed, err := HashPassword("password1234")
	require.NoError(t, err)

	assert.NotEqual(t, "password1234", hashed)
	assert.NotEmpty(t, hashed)
}

func TestCheckPassword(t *testing.T) {
	hashed, err := HashPassword("password1234")
	require.NoError(t, err)

	assert.True(t, CheckPassword("password1234", hashed))
	assert.False(t, CheckPassword("wrong-password", hashed))
	assert.False(t, CheckPassword("", hashed))
}

func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	first, err := HashPassword("password1234")
	require.NoError(t, err)
	second, err := HashPassword("password1234")
	require.NoError(t, err)

	// Соль делает хеши разными, но оба сверяются с исходным паролем
	assert.NotEqual(t, first, second)
	assert.True(t, CheckPassword("password1234", first))
	assert.True(t, CheckPassword("password1234", second))
}
