package handlers

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/portero/internal/app"
	"github.com/dropDatabas3/portero/internal/guard"
	httperrors "github.com/dropDatabas3/portero/internal/http/errors"
	"github.com/dropDatabas3/portero/internal/http/middlewares"
	"github.com/dropDatabas3/portero/internal/metrics"
	"github.com/go-chi/chi/v5"
)

type PlanUsage struct {
	Current int  `json:"current"`
	Max     *int `json:"max"` // null = ilimitado
	CanAdd  bool `json:"can_add"`
}

type TenantSummaryResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	SubscriptionStatus string    `json:"subscription_status"`
	TrialEndsAt        *string   `json:"trial_ends_at,omitempty"`
	Users              PlanUsage `json:"users"`
	Branches           PlanUsage `json:"branches"`
}

// NewTenantSummaryHandler devuelve el estado del tenant y el uso contra los
// límites del plan. Requiere RequireAuth y RequireTenant antes en la cadena;
// además exige que el tenant del path coincida con el del token y que el
// usuario sea miembro.
func NewTenantSummaryHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := middlewares.UserFrom(r.Context())
		t := middlewares.TenantFrom(r.Context())
		if u == nil || t == nil {
			httperrors.WriteError(w, httperrors.ErrTokenMissing)
			return
		}
		// la membership ya la garantizó RequireTenant; acá solo se exige que
		// el tenant del path sea el mismo que el del token
		if chi.URLParam(r, "tenantID") != t.ID {
			metrics.AuthzDenied("tenant_mismatch")
			httperrors.WriteError(w, httperrors.ErrForbidden)
			return
		}

		users, err := c.Store.CountTenantUsers(r.Context(), t.ID)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
			return
		}
		branches, err := c.Store.CountTenantBranches(r.Context(), t.ID)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
			return
		}

		resp := TenantSummaryResponse{
			ID:                 t.ID,
			Name:               t.Name,
			SubscriptionStatus: t.SubscriptionStatus,
			Users: PlanUsage{
				Current: users,
				Max:     t.MaxUsers,
				CanAdd:  guard.CheckPlanLimit(t, guard.ResourceUsers, users),
			},
			Branches: PlanUsage{
				Current: branches,
				Max:     t.MaxBranches,
				CanAdd:  guard.CheckPlanLimit(t, guard.ResourceBranches, branches),
			},
		}
		if t.TrialEndsAt != nil {
			s := t.TrialEndsAt.UTC().Format(time.RFC3339)
			resp.TrialEndsAt = &s
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
