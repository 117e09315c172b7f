package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/portero/internal/app"
	httperrors "github.com/dropDatabas3/portero/internal/http/errors"
	"github.com/dropDatabas3/portero/internal/http/middlewares"
	"github.com/dropDatabas3/portero/internal/observability/logger"
	"go.uber.org/zap"
)

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// NewChangePasswordHandler opera sobre el usuario autenticado; requiere
// RequireAuth antes en la cadena.
func NewChangePasswordHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := middlewares.UserFrom(r.Context())
		if u == nil {
			httperrors.WriteError(w, httperrors.ErrTokenMissing)
			return
		}
		var req ChangePasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.CurrentPassword == "" || req.NewPassword == "" {
			httperrors.WriteError(w, httperrors.ErrMissingFields)
			return
		}

		err := c.Auth.ChangePassword(r.Context(), u.ID, req.CurrentPassword, req.NewPassword)
		if err != nil {
			if errors.Is(err, app.ErrInvalidCredentials) {
				httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
				return
			}
			if weak, ok := app.IsWeakPassword(err); ok {
				httperrors.WriteError(w, httperrors.ErrPasswordTooWeak.WithDetail(strings.Join(weak.Reasons, ", ")))
				return
			}
			logger.From(r.Context()).Error("change password failed", zap.String("user_id", u.ID), zap.Error(err))
			httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
