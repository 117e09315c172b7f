package handlers

import (
	"net/http"

	"github.com/dropDatabas3/portero/internal/app"
	httperrors "github.com/dropDatabas3/portero/internal/http/errors"
)

type AuthRefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// NewAuthRefreshHandler rota el par: refresh válido → access+refresh nuevos.
// Un access token presentado acá falla igual que un token roto.
func NewAuthRefreshHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRefreshRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			httperrors.WriteError(w, httperrors.ErrMissingFields)
			return
		}
		pair, err := c.Auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrTokenInvalid)
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}
