package pg

import (
	"context"
	"time"

	"github.com/dropDatabas3/portero/internal/store/core"
)

const userCols = `id, username, email, password_hash, first_name, last_name, phone,
       is_active, is_verified, is_superuser, last_login_at, primary_tenant_id,
       created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*core.User, error) {
	var u core.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.IsActive, &u.IsVerified, &u.IsSuperuser, &u.LastLoginAt, &u.PrimaryTenantID,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1;`
	return scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = $1;`
	return scanUser(s.pool.QueryRow(ctx, q, email))
}

// GetUserByIdentifier: username O email, case-sensitive tal como se guardó.
func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string) (*core.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE username = $1 OR email = $1;`
	return scanUser(s.pool.QueryRow(ctx, q, identifier))
}

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	const q = `
INSERT INTO users (id, username, email, password_hash, first_name, last_name, phone,
                   is_active, is_verified, is_superuser, primary_tenant_id,
                   created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13);`
	_, err := s.pool.Exec(ctx, q,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone,
		u.IsActive, u.IsVerified, u.IsSuperuser, u.PrimaryTenantID,
		u.CreatedAt, u.UpdatedAt,
	)
	return translate(err)
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1;`
	tag, err := s.pool.Exec(ctx, q, userID, hash)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	const q = `UPDATE users SET last_login_at = $2 WHERE id = $1;`
	tag, err := s.pool.Exec(ctx, q, userID, at)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) SetUserActive(ctx context.Context, userID string, active bool) error {
	const q = `UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1;`
	tag, err := s.pool.Exec(ctx, q, userID, active)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
