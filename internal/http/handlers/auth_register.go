package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/portero/internal/app"
	httperrors "github.com/dropDatabas3/portero/internal/http/errors"
	"github.com/dropDatabas3/portero/internal/observability/logger"
	"github.com/dropDatabas3/portero/internal/store/core"
	"go.uber.org/zap"
)

type AuthRegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	TenantID  string `json:"tenant_id,omitempty"`
}

type AuthRegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewAuthRegisterHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
			httperrors.WriteError(w, httperrors.ErrMissingFields)
			return
		}

		u, err := c.Auth.Register(r.Context(), app.RegisterInput{
			Username:  req.Username,
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			TenantID:  req.TenantID,
		})
		if err != nil {
			switch {
			case errors.Is(err, app.ErrDuplicateIdentifier):
				httperrors.WriteError(w, httperrors.ErrDuplicateIdentifier)
			case errors.Is(err, core.ErrInvalid):
				httperrors.WriteError(w, httperrors.ErrInvalidFormat)
			default:
				if weak, ok := app.IsWeakPassword(err); ok {
					httperrors.WriteError(w, httperrors.ErrPasswordTooWeak.WithDetail(strings.Join(weak.Reasons, ", ")))
					return
				}
				logger.From(r.Context()).Error("register failed", zap.Error(err))
				httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
			}
			return
		}
		writeJSON(w, http.StatusCreated, AuthRegisterResponse{ID: u.ID, Username: u.Username, Email: u.Email})
	}
}
