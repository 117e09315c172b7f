// Package http arma el router y el servidor del servicio.
package http

import (
	"net/http"

	"github.com/dropDatabas3/portero/internal/app"
	"github.com/dropDatabas3/portero/internal/http/handlers"
	mw "github.com/dropDatabas3/portero/internal/http/middlewares"
	"github.com/go-chi/chi/v5"
)

// NewRouter registra todas las rutas de la API con sus cadenas de
// middlewares. Las rutas de auth público llevan rate limit por IP; lo
// tenant-scoped exige RequireAuth + RequireTenant.
func NewRouter(c *app.Container) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())

	r.Get("/healthz", handlers.NewHealthzHandler())
	r.Get("/readyz", handlers.NewReadyzHandler(c))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(mw.WithRateLimit(c.LoginLimiter)).Post("/login", handlers.NewAuthLoginHandler(c))
			r.Post("/refresh", handlers.NewAuthRefreshHandler(c))
			r.Post("/register", handlers.NewAuthRegisterHandler(c))
			r.With(mw.WithRateLimit(c.ForgotLimiter)).Post("/forgot", handlers.NewForgotPasswordHandler(c))
			r.With(mw.WithRateLimit(c.ForgotLimiter)).Post("/reset", handlers.NewResetPasswordHandler(c))

			r.With(mw.RequireAuth(c.Guard)).Post("/change-password", handlers.NewChangePasswordHandler(c))
		})

		r.With(mw.RequireAuth(c.Guard)).Get("/me", handlers.NewMeHandler(c))

		r.Route("/tenants", func(r chi.Router) {
			r.Use(mw.RequireAuth(c.Guard))
			r.Use(mw.RequireTenant(c.Guard))
			r.With(mw.RequirePermission(c.Store, "tenants:read")).
				Get("/{tenantID}/summary", handlers.NewTenantSummaryHandler(c))
		})
	})

	return r
}
