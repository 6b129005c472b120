// internal/identity/token_test.go
package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	user := &User{ID: uuid.New(), Role: RoleAdmin}

	token, err := tm.Issue(user)
	require.NoError(t, err)

	principal, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, RoleAdmin, principal.Role)
	assert.True(t, principal.IsAdmin())
}

func TestTokenUnknownRoleDowngradesToCustomer(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	user := &User{ID: uuid.New(), Role: Role("superuser")}

	token, err := tm.Issue(user)
	require.NoError(t, err)

	principal, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, principal.Role)
	assert.False(t, principal.IsAdmin())
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", time.Hour)
	other := NewTokenManager("secret-b", time.Hour)

	token, err := tm.Issue(&User{ID: uuid.New(), Role: RoleCustomer})
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Issue(&User{ID: uuid.New(), Role: RoleCustomer})
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	_, err := tm.Verify("not.a.token")
	assert.Error(t, err)
}
