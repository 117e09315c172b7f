// Package authz evalúa permisos efectivos: catálogo estático, roles
// sembrados, y el override de superuser.
package authz

import (
	"context"
	"strings"

	"github.com/dropDatabas3/portero/internal/store/core"
)

// UserPermissions devuelve el set efectivo de permisos del usuario.
// Superuser → catálogo completo implícito. Si no, unión de los permisos de
// sus roles ACTIVOS (un rol inactivo no aporta nada).
func UserPermissions(ctx context.Context, repo core.Repository, u *core.User) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if u.IsSuperuser {
		for k := range Catalog {
			out[k] = struct{}{}
		}
		return out, nil
	}
	roles, err := repo.GetUserRoles(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if !r.IsActive {
			continue
		}
		perms, err := repo.GetRolePermissions(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range perms {
			out[p] = struct{}{}
		}
	}
	return out, nil
}

// HasPermission: superuser corta en true sin tocar el store.
func HasPermission(ctx context.Context, repo core.Repository, u *core.User, key string) (bool, error) {
	if u.IsSuperuser {
		return true, nil
	}
	perms, err := UserPermissions(ctx, repo, u)
	if err != nil {
		return false, err
	}
	_, ok := perms[key]
	return ok, nil
}

func HasAny(ctx context.Context, repo core.Repository, u *core.User, keys ...string) (bool, error) {
	if u.IsSuperuser {
		return true, nil
	}
	perms, err := UserPermissions(ctx, repo, u)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if _, ok := perms[k]; ok {
			return true, nil
		}
	}
	return false, nil
}

func HasAll(ctx context.Context, repo core.Repository, u *core.User, keys ...string) (bool, error) {
	if u.IsSuperuser {
		return true, nil
	}
	perms, err := UserPermissions(ctx, repo, u)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if _, ok := perms[k]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// SplitKey separa "resource:action". Action queda vacía si no hay ':'.
func SplitKey(key string) (resource, action string) {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return key, ""
}
