package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier(t *testing.T) {
	t.Parallel()

	v := NewBcryptVerifier(bcrypt.MinCost)
	hashed, err := v.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hashed)

	assert.NoError(t, v.Compare(hashed, "correct horse battery staple"))
	assert.ErrorIs(t, v.Compare(hashed, "wrong password entirely"), ErrPasswordMismatch)
	assert.Error(t, v.Compare("not-a-bcrypt-hash", "anything"))
}

func TestNewBcryptVerifierCostFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptVerifier(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptVerifier(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewBcryptVerifier(12).cost)
}
