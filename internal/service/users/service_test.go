package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/repository"
	"github.com/prasertw/voltbook/internal/repository/memory"
	"github.com/prasertw/voltbook/internal/service/users"
)

func TestUpdateRole(t *testing.T) {
	// GIVEN: A whitelisted regular user
	// WHEN: Updating their role to admin
	// THEN: The stored account reflects the new role

	store := memory.NewUserStore()
	store.Put(models.UserAccount{ID: "uid-1", Email: "somchai@nr.ac.th", Role: models.RoleUser})
	svc := users.NewService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.UpdateRole(ctx, "uid-1", models.RoleAdmin))

	account, err := svc.Profile(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, account.Role)
}

func TestUpdateRole_InvalidRole(t *testing.T) {
	store := memory.NewUserStore()
	store.Put(models.UserAccount{ID: "uid-1", Email: "somchai@nr.ac.th"})
	svc := users.NewService(store, nil)

	err := svc.UpdateRole(context.Background(), "uid-1", "owner")

	assert.ErrorIs(t, err, users.ErrInvalidRole)
}

func TestUpdateRole_UnknownAccount(t *testing.T) {
	svc := users.NewService(memory.NewUserStore(), nil)

	err := svc.UpdateRole(context.Background(), "uid-missing", models.RoleUser)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEffectiveRole_DefaultsToUser(t *testing.T) {
	assert.Equal(t, models.RoleUser, models.UserAccount{}.EffectiveRole())
	assert.Equal(t, models.RoleUser, models.UserAccount{Role: "owner"}.EffectiveRole())
	assert.Equal(t, models.RoleAdmin, models.UserAccount{Role: models.RoleAdmin}.EffectiveRole())
}
