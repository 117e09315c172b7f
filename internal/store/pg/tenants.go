package pg

import (
	"context"

	"github.com/dropDatabas3/portero/internal/store/core"
)

func (s *Store) GetTenantByID(ctx context.Context, id string) (*core.Tenant, error) {
	const q = `
SELECT id, name, code, plan_type, max_users, max_branches,
       subscription_status, trial_ends_at, is_active, created_at, updated_at
FROM tenants WHERE id = $1;`
	var t core.Tenant
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&t.ID, &t.Name, &t.Code, &t.PlanType, &t.MaxUsers, &t.MaxBranches,
		&t.SubscriptionStatus, &t.TrialEndsAt, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) CreateTenant(ctx context.Context, t *core.Tenant) error {
	const q = `
INSERT INTO tenants (id, name, code, plan_type, max_users, max_branches,
                     subscription_status, trial_ends_at, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);`
	_, err := s.pool.Exec(ctx, q,
		t.ID, t.Name, t.Code, t.PlanType, t.MaxUsers, t.MaxBranches,
		t.SubscriptionStatus, t.TrialEndsAt, t.IsActive, t.CreatedAt, t.UpdatedAt,
	)
	return translate(err)
}

func (s *Store) CreateBranch(ctx context.Context, b *core.Branch) error {
	const q = `
INSERT INTO branches (id, tenant_id, name, code, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := s.pool.Exec(ctx, q, b.ID, b.TenantID, b.Name, b.Code, b.IsActive, b.CreatedAt)
	return translate(err)
}

// CountTenantUsers cuenta solo usuarios activos: los límites de plan aplican
// a cuentas utilizables, no a bajas lógicas.
func (s *Store) CountTenantUsers(ctx context.Context, tenantID string) (int, error) {
	const q = `
SELECT count(*)
FROM tenant_memberships tm
JOIN users u ON u.id = tm.user_id
WHERE tm.tenant_id = $1 AND u.is_active;`
	var n int
	if err := s.pool.QueryRow(ctx, q, tenantID).Scan(&n); err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (s *Store) CountTenantBranches(ctx context.Context, tenantID string) (int, error) {
	const q = `SELECT count(*) FROM branches WHERE tenant_id = $1;`
	var n int
	if err := s.pool.QueryRow(ctx, q, tenantID).Scan(&n); err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// ---------- memberships ----------

func (s *Store) AddTenantMembership(ctx context.Context, m *core.TenantMembership) error {
	const q = `
INSERT INTO tenant_memberships (user_id, tenant_id, is_primary, joined_at)
VALUES ($1,$2,$3,$4);`
	_, err := s.pool.Exec(ctx, q, m.UserID, m.TenantID, m.IsPrimary, m.JoinedAt)
	return translate(err)
}

func (s *Store) GetTenantMembership(ctx context.Context, userID, tenantID string) (*core.TenantMembership, error) {
	const q = `
SELECT user_id, tenant_id, is_primary, joined_at
FROM tenant_memberships WHERE user_id = $1 AND tenant_id = $2;`
	var m core.TenantMembership
	err := s.pool.QueryRow(ctx, q, userID, tenantID).Scan(&m.UserID, &m.TenantID, &m.IsPrimary, &m.JoinedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) ListTenantMemberships(ctx context.Context, userID string) ([]core.TenantMembership, error) {
	const q = `
SELECT user_id, tenant_id, is_primary, joined_at
FROM tenant_memberships WHERE user_id = $1 ORDER BY tenant_id;`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []core.TenantMembership
	for rows.Next() {
		var m core.TenantMembership
		if err := rows.Scan(&m.UserID, &m.TenantID, &m.IsPrimary, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) AddBranchMembership(ctx context.Context, m *core.BranchMembership) error {
	const q = `
INSERT INTO branch_memberships (user_id, branch_id, tenant_id, is_primary, joined_at)
VALUES ($1,$2,$3,$4,$5);`
	_, err := s.pool.Exec(ctx, q, m.UserID, m.BranchID, m.TenantID, m.IsPrimary, m.JoinedAt)
	return translate(err)
}

// GetPrimaryBranch: lookup directo por el flag is_primary de la membership,
// sin escanear todas las branches del usuario.
func (s *Store) GetPrimaryBranch(ctx context.Context, userID, tenantID string) (*core.Branch, error) {
	const q = `
SELECT b.id, b.tenant_id, b.name, b.code, b.is_active, b.created_at
FROM branch_memberships bm
JOIN branches b ON b.id = bm.branch_id
WHERE bm.user_id = $1 AND bm.tenant_id = $2 AND bm.is_primary
LIMIT 1;`
	var b core.Branch
	err := s.pool.QueryRow(ctx, q, userID, tenantID).Scan(&b.ID, &b.TenantID, &b.Name, &b.Code, &b.IsActive, &b.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}
