package pg

import (
	"context"

	"github.com/dropDatabas3/portero/internal/store/core"
)

// ---------- lecturas ----------

func (s *Store) GetUserRoles(ctx context.Context, userID string) ([]core.Role, error) {
	const q = `
SELECT r.id, r.name, r.description, r.is_system, r.is_active, r.created_at
FROM roles r
JOIN user_roles ur ON ur.role_id = r.id
WHERE ur.user_id = $1
ORDER BY r.name;`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []core.Role
	for rows.Next() {
		var r core.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.IsSystem, &r.IsActive, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetRolePermissions(ctx context.Context, roleID string) ([]string, error) {
	const q = `
SELECT rp.permission_name
FROM role_permissions rp
WHERE rp.role_id = $1
ORDER BY rp.permission_name;`
	rows, err := s.pool.Query(ctx, q, roleID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (*core.Role, error) {
	const q = `
SELECT id, name, description, is_system, is_active, created_at
FROM roles WHERE name = $1;`
	var r core.Role
	err := s.pool.QueryRow(ctx, q, name).Scan(&r.ID, &r.Name, &r.Description, &r.IsSystem, &r.IsActive, &r.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// ---------- escrituras ----------

func (s *Store) CreateRole(ctx context.Context, r *core.Role) error {
	const q = `
INSERT INTO roles (id, name, description, is_system, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := s.pool.Exec(ctx, q, r.ID, r.Name, r.Description, r.IsSystem, r.IsActive, r.CreatedAt)
	return translate(err)
}

func (s *Store) AssignRole(ctx context.Context, userID, roleID string) error {
	const q = `INSERT INTO user_roles (user_id, role_id) VALUES ($1,$2);`
	_, err := s.pool.Exec(ctx, q, userID, roleID)
	return translate(err)
}

func (s *Store) GrantPermission(ctx context.Context, roleID, perm string) error {
	const q = `INSERT INTO role_permissions (role_id, permission_name) VALUES ($1,$2);`
	_, err := s.pool.Exec(ctx, q, roleID, perm)
	return translate(err)
}

// ---------- catálogo de permisos ----------

func (s *Store) GetPermission(ctx context.Context, name string) (*core.Permission, error) {
	const q = `SELECT name, description, resource, action FROM permissions WHERE name = $1;`
	var p core.Permission
	err := s.pool.QueryRow(ctx, q, name).Scan(&p.Name, &p.Description, &p.Resource, &p.Action)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) CreatePermission(ctx context.Context, p *core.Permission) error {
	// ON CONFLICT DO NOTHING: el seed es idempotente por diseño
	const q = `
INSERT INTO permissions (name, description, resource, action)
VALUES ($1,$2,$3,$4)
ON CONFLICT (name) DO NOTHING;`
	_, err := s.pool.Exec(ctx, q, p.Name, p.Description, p.Resource, p.Action)
	return translate(err)
}

func (s *Store) ListPermissions(ctx context.Context) ([]core.Permission, error) {
	const q = `SELECT name, description, resource, action FROM permissions ORDER BY name;`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []core.Permission
	for rows.Next() {
		var p core.Permission
		if err := rows.Scan(&p.Name, &p.Description, &p.Resource, &p.Action); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
