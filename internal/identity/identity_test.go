// internal/identity/identity_test.go
package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phstore/internal/platform/apperr"
	"phstore/internal/platform/postgres/postgrestest"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "CC-1001", "s3cret-pass", RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, user.Role)

	authed, err := svc.Authenticate(ctx, "jane@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	// The plaintext never reaches the database.
	var stored string
	require.NoError(t, db.QueryRow(`SELECT password_hash FROM credentials WHERE user_id = $1`, user.ID).Scan(&stored))
	assert.NotEqual(t, "s3cret-pass", stored)
}

func TestAuthenticateFailures(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Jane Doe", "jane2@example.com", "", "s3cret-pass", RoleCustomer)
	require.NoError(t, err)

	// Wrong password and unknown email look identical to the caller.
	_, err = svc.Authenticate(ctx, "jane2@example.com", "wrong")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, "invalid credentials", apperr.MessageOf(err))

	_, err = svc.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, "invalid credentials", apperr.MessageOf(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Jane Doe", "dup@example.com", "", "pass-one", RoleCustomer)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "John Doe", "dup@example.com", "", "pass-two", RoleCustomer)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "x@example.com", "", "pass", RoleCustomer)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = svc.Register(ctx, "Jane", "x@example.com", "", "", RoleCustomer)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestRegisterUnknownRoleDefaultsToCustomer(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Jane", "role@example.com", "", "pass", Role("root"))
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, user.Role)
}

func TestGetUser(t *testing.T) {
	db := postgrestest.Setup(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Jane", "get@example.com", "CC-2002", "pass", RoleAdmin)
	require.NoError(t, err)

	loaded, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", loaded.Name)
	assert.Equal(t, RoleAdmin, loaded.Role)
	assert.Equal(t, "CC-2002", loaded.DocumentNumber)

	_, err = svc.GetUser(ctx, uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
