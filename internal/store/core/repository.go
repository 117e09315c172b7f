package core

import (
	"context"
	"time"
)

// Repository es el contrato de persistencia del core. Las implementaciones
// (pg, memory) traducen sus errores nativos a ErrNotFound/ErrConflict; nada
// más arriba debería ver un error crudo del driver.
type Repository interface {
	Ping(ctx context.Context) error

	// Users
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// GetUserByIdentifier resuelve username O email, tal como se almacenó.
	GetUserByIdentifier(ctx context.Context, identifier string) (*User, error)
	CreateUser(ctx context.Context, u *User) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	SetUserActive(ctx context.Context, userID string, active bool) error

	// RBAC
	GetUserRoles(ctx context.Context, userID string) ([]Role, error)
	GetRolePermissions(ctx context.Context, roleID string) ([]string, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	CreateRole(ctx context.Context, r *Role) error
	AssignRole(ctx context.Context, userID, roleID string) error
	GrantPermission(ctx context.Context, roleID, perm string) error

	// Catálogo de permisos (seed idempotente)
	GetPermission(ctx context.Context, name string) (*Permission, error)
	CreatePermission(ctx context.Context, p *Permission) error
	ListPermissions(ctx context.Context) ([]Permission, error)

	// Tenants / branches
	GetTenantByID(ctx context.Context, id string) (*Tenant, error)
	CreateTenant(ctx context.Context, t *Tenant) error
	CreateBranch(ctx context.Context, b *Branch) error
	CountTenantUsers(ctx context.Context, tenantID string) (int, error)
	CountTenantBranches(ctx context.Context, tenantID string) (int, error)

	// Memberships
	AddTenantMembership(ctx context.Context, m *TenantMembership) error
	GetTenantMembership(ctx context.Context, userID, tenantID string) (*TenantMembership, error)
	ListTenantMemberships(ctx context.Context, userID string) ([]TenantMembership, error)
	AddBranchMembership(ctx context.Context, m *BranchMembership) error
	GetPrimaryBranch(ctx context.Context, userID, tenantID string) (*Branch, error)
}
