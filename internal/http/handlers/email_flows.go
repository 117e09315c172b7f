package handlers

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/portero/internal/app"
	httperrors "github.com/dropDatabas3/portero/internal/http/errors"
	"github.com/dropDatabas3/portero/internal/validation"
)

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type forgotPasswordResponse struct {
	Message string `json:"message"`
}

// NewForgotPasswordHandler responde 202 con el mismo cuerpo exista o no la
// cuenta. El único camino de error visible es el de formato.
func NewForgotPasswordHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ForgotPasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		if !validation.ValidEmail(req.Email) {
			httperrors.WriteError(w, httperrors.ErrInvalidFormat)
			return
		}

		// siempre nil por contrato; los fallos internos quedan en logs
		_ = c.Auth.RequestPasswordReset(r.Context(), req.Email)

		writeJSON(w, http.StatusAccepted, forgotPasswordResponse{
			Message: "Si el correo está registrado, recibirá instrucciones para restablecer su contraseña.",
		})
	}
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// NewResetPasswordHandler consume el token de reset y fija la nueva password.
// Cualquier problema con el token (firma, expiry, replay, email cambiado)
// colapsa en TOKEN_INVALID.
func NewResetPasswordHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetPasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Token == "" || req.NewPassword == "" {
			httperrors.WriteError(w, httperrors.ErrMissingFields)
			return
		}

		err := c.Auth.ResetPassword(r.Context(), req.Token, req.NewPassword)
		if err != nil {
			if weak, ok := app.IsWeakPassword(err); ok {
				httperrors.WriteError(w, httperrors.ErrPasswordTooWeak.WithDetail(strings.Join(weak.Reasons, ", ")))
				return
			}
			httperrors.WriteError(w, httperrors.ErrTokenInvalid)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
