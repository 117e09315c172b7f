package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/portero/internal/authz"
	"github.com/dropDatabas3/portero/internal/store/core"
	"github.com/dropDatabas3/portero/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, repo core.Repository, superuser bool) *core.User {
	t.Helper()
	u := &core.User{
		ID:          "u-" + t.Name(),
		Username:    "user_" + t.Name(),
		Email:       t.Name() + "@example.com",
		IsActive:    true,
		IsSuperuser: superuser,
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func newRole(t *testing.T, repo core.Repository, name string, active bool, perms ...string) *core.Role {
	t.Helper()
	r := &core.Role{ID: "r-" + name, Name: name, IsActive: active, CreatedAt: time.Now()}
	require.NoError(t, repo.CreateRole(context.Background(), r))
	for _, p := range perms {
		require.NoError(t, repo.GrantPermission(context.Background(), r.ID, p))
	}
	return r
}

func TestUserPermissions_UnionOfActiveRoles(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	u := newUser(t, repo, false)

	viewer := newRole(t, repo, "lector", true, "users:read", "tenants:read")
	editor := newRole(t, repo, "editor", true, "users:update", "users:read")
	require.NoError(t, repo.AssignRole(ctx, u.ID, viewer.ID))
	require.NoError(t, repo.AssignRole(ctx, u.ID, editor.ID))

	perms, err := authz.UserPermissions(ctx, repo, u)
	require.NoError(t, err)
	assert.Len(t, perms, 3)
	assert.Contains(t, perms, "users:read")
	assert.Contains(t, perms, "users:update")
	assert.Contains(t, perms, "tenants:read")
}

func TestUserPermissions_InactiveRoleContributesNothing(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	u := newUser(t, repo, false)

	suspended := newRole(t, repo, "suspendido", false, "users:manage")
	require.NoError(t, repo.AssignRole(ctx, u.ID, suspended.ID))

	perms, err := authz.UserPermissions(ctx, repo, u)
	require.NoError(t, err)
	assert.Empty(t, perms)

	ok, err := authz.HasPermission(ctx, repo, u, "users:manage")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSuperuser_ImplicitFullCatalog(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	su := newUser(t, repo, true)

	// sin roles asignados, y aun así todo el catálogo
	perms, err := authz.UserPermissions(ctx, repo, su)
	require.NoError(t, err)
	assert.Len(t, perms, len(authz.Catalog))

	ok, err := authz.HasPermission(ctx, repo, su, "system:admin")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAnyHasAll(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	u := newUser(t, repo, false)
	r := newRole(t, repo, "parcial", true, "users:read")
	require.NoError(t, repo.AssignRole(ctx, u.ID, r.ID))

	any, err := authz.HasAny(ctx, repo, u, "users:delete", "users:read")
	require.NoError(t, err)
	assert.True(t, any)

	all, err := authz.HasAll(ctx, repo, u, "users:read", "users:delete")
	require.NoError(t, err)
	assert.False(t, all)
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	require.NoError(t, authz.Seed(ctx, repo))
	require.NoError(t, authz.Seed(ctx, repo))

	perms, err := repo.ListPermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, len(authz.Catalog))

	for _, tpl := range authz.RoleTemplates() {
		role, err := repo.GetRoleByName(ctx, tpl.Name)
		require.NoError(t, err, "role %s", tpl.Name)
		assert.Equal(t, tpl.IsSystem, role.IsSystem)

		granted, err := repo.GetRolePermissions(ctx, role.ID)
		require.NoError(t, err)
		assert.Len(t, granted, len(tpl.Permissions))
	}
}

func TestSplitKey(t *testing.T) {
	res, act := authz.SplitKey("users:create")
	assert.Equal(t, "users", res)
	assert.Equal(t, "create", act)
}
