// Package guard resuelve identidad y contexto de tenant a partir del bearer
// token, y es la precondición de toda operación tenant-scoped.
package guard

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/portero/internal/store/core"
	"github.com/dropDatabas3/portero/internal/token"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type Guard struct {
	Repo   core.Repository
	Issuer *token.Issuer
}

func New(repo core.Repository, iss *token.Issuer) *Guard {
	return &Guard{Repo: repo, Issuer: iss}
}

// ResolveIdentity decodifica el access token y carga el usuario por sub.
// Token inválido o usuario inexistente/inactivo → ErrUnauthenticated, sin
// distinguir causas.
func (g *Guard) ResolveIdentity(ctx context.Context, bearer string) (*core.User, error) {
	claims, err := g.Issuer.Decode(bearer)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	u, err := g.Repo.GetUserByID(ctx, claims.Subject)
	if err != nil || !u.IsActive {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

// ResolveTenant exige el claim tid y que el tenant esté utilizable:
// suscripción active, o trial no vencido.
func (g *Guard) ResolveTenant(ctx context.Context, bearer string) (*core.Tenant, error) {
	claims, err := g.Issuer.Decode(bearer)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if claims.TenantID == "" {
		return nil, ErrForbidden
	}
	t, err := g.Repo.GetTenantByID(ctx, claims.TenantID)
	if err != nil {
		return nil, ErrForbidden
	}
	if !TenantUsable(t, time.Now().UTC()) {
		return nil, ErrForbidden
	}
	return t, nil
}

// EnsureMembership es el gate previo a cualquier operación tenant-scoped.
func (g *Guard) EnsureMembership(ctx context.Context, u *core.User, tenantID string) error {
	if _, err := g.Repo.GetTenantMembership(ctx, u.ID, tenantID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	return nil
}

// TenantUsable: activo y con suscripción vigente.
func TenantUsable(t *core.Tenant, now time.Time) bool {
	if !t.IsActive {
		return false
	}
	switch t.SubscriptionStatus {
	case core.SubscriptionActive:
		return true
	case core.SubscriptionTrial:
		return t.TrialEndsAt == nil || now.Before(*t.TrialEndsAt)
	default:
		return false
	}
}

// Recursos sujetos a límite de plan.
const (
	ResourceUsers    = "users"
	ResourceBranches = "branches"
)

// CheckPlanLimit: true si todavía se puede crear un recurso más.
// Máximo nil = ilimitado (el único sentinel del sistema; ver migración).
func CheckPlanLimit(t *core.Tenant, resource string, current int) bool {
	var max *int
	switch resource {
	case ResourceUsers:
		max = t.MaxUsers
	case ResourceBranches:
		max = t.MaxBranches
	default:
		return false
	}
	if max == nil {
		return true
	}
	return current < *max
}
