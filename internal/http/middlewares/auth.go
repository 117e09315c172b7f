package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/portero/internal/authz"
	"github.com/dropDatabas3/portero/internal/guard"
	httperrors "github.com/dropDatabas3/portero/internal/http/errors"
	"github.com/dropDatabas3/portero/internal/metrics"
	"github.com/dropDatabas3/portero/internal/store/core"
)

func bearerFromRequest(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[len("Bearer "):])
}

// RequireAuth valida Authorization: Bearer <JWT>, resuelve el usuario y lo
// guarda en el contexto. Token ausente/inválido/usuario inexistente → 401
// con cuerpo uniforme (sin distinguir la causa).
func RequireAuth(g *guard.Guard) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerFromRequest(r)
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			u, err := g.ResolveIdentity(r.Context(), raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}
			ctx := WithUser(r.Context(), u)
			ctx = withBearer(ctx, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission autoriza la acción puntual. El 403 lleva la descripción
// humana del permiso faltante, no la key cruda: la identidad del caller ya
// es conocida, esto no filtra nada nuevo.
func RequirePermission(repo core.Repository, key string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFrom(r.Context())
			if u == nil {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			ok, err := authz.HasPermission(r.Context(), repo, u, key)
			if err != nil {
				httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
				return
			}
			if !ok {
				metrics.AuthzDenied("permission")
				httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail(authz.Describe(key)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTenant resuelve el tenant del token y exige membership del usuario.
// Corre después de RequireAuth (necesita el bearer y el usuario del contexto).
func RequireTenant(g *guard.Guard) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFrom(r.Context())
			raw := BearerFrom(r.Context())
			if u == nil || raw == "" {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			t, err := g.ResolveTenant(r.Context(), raw)
			if err != nil {
				metrics.AuthzDenied("tenant_status")
				httperrors.WriteError(w, httperrors.ErrForbidden)
				return
			}
			if err := g.EnsureMembership(r.Context(), u, t.ID); err != nil {
				metrics.AuthzDenied("membership")
				httperrors.WriteError(w, httperrors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}
