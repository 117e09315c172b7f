package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/portero/internal/app"
	httperrors "github.com/dropDatabas3/portero/internal/http/errors"
	"github.com/dropDatabas3/portero/internal/observability/logger"
	"go.uber.org/zap"
)

type AuthLoginRequest struct {
	// Identifier acepta username o email.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func NewAuthLoginHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthLoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Identifier = strings.TrimSpace(req.Identifier)
		if req.Identifier == "" || req.Password == "" {
			httperrors.WriteError(w, httperrors.ErrMissingFields)
			return
		}

		pair, err := c.Auth.Login(r.Context(), req.Identifier, req.Password)
		if err != nil {
			if errors.Is(err, app.ErrInvalidCredentials) {
				httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
				return
			}
			logger.From(r.Context()).Error("login failed", zap.Error(err))
			httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}
