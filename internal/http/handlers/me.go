package handlers

import (
	"net/http"
	"sort"

	"github.com/dropDatabas3/portero/internal/app"
	"github.com/dropDatabas3/portero/internal/authz"
	httperrors "github.com/dropDatabas3/portero/internal/http/errors"
	"github.com/dropDatabas3/portero/internal/http/middlewares"
	"github.com/dropDatabas3/portero/internal/observability/logger"
	"github.com/dropDatabas3/portero/internal/store/core"
	"go.uber.org/zap"
)

type MeResponse struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	FirstName       string   `json:"first_name,omitempty"`
	LastName        string   `json:"last_name,omitempty"`
	IsSuperuser     bool     `json:"is_superuser"`
	PrimaryTenantID string   `json:"primary_tenant_id,omitempty"`
	Roles           []string `json:"roles"`
	Permissions     []string `json:"permissions"`
}

// NewMeHandler devuelve la identidad autenticada junto con sus roles activos
// y el set efectivo de permisos, ordenado para que el output sea estable.
func NewMeHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := middlewares.UserFrom(r.Context())
		if u == nil {
			httperrors.WriteError(w, httperrors.ErrTokenMissing)
			return
		}

		roles, err := c.Store.GetUserRoles(r.Context(), u.ID)
		if err != nil {
			logger.From(r.Context()).Error("roles lookup failed", zap.String("user_id", u.ID), zap.Error(err))
			httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
			return
		}
		perms, err := authz.UserPermissions(r.Context(), c.Store, u)
		if err != nil {
			logger.From(r.Context()).Error("permissions lookup failed", zap.String("user_id", u.ID), zap.Error(err))
			httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
			return
		}

		resp := MeResponse{
			ID:          u.ID,
			Username:    u.Username,
			Email:       u.Email,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			IsSuperuser: u.IsSuperuser,
			Roles:       activeRoleNames(roles),
			Permissions: sortedKeys(perms),
		}
		if u.PrimaryTenantID != nil {
			resp.PrimaryTenantID = *u.PrimaryTenantID
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func activeRoleNames(roles []core.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r.IsActive {
			out = append(out, r.Name)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
