package middlewares

import (
	"context"

	"github.com/dropDatabas3/portero/internal/store/core"
)

type ctxKeyRequestID struct{}
type ctxKeyUser struct{}
type ctxKeyTenant struct{}
type ctxKeyBearer struct{}

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, rid)
}

func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return rid
}

// WithUser guarda el usuario autenticado en el contexto (lo setea RequireAuth).
func WithUser(ctx context.Context, u *core.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

// UserFrom extrae el usuario autenticado; nil si el request no pasó por
// RequireAuth.
func UserFrom(ctx context.Context) *core.User {
	u, _ := ctx.Value(ctxKeyUser{}).(*core.User)
	return u
}

func WithTenant(ctx context.Context, t *core.Tenant) context.Context {
	return context.WithValue(ctx, ctxKeyTenant{}, t)
}

func TenantFrom(ctx context.Context) *core.Tenant {
	t, _ := ctx.Value(ctxKeyTenant{}).(*core.Tenant)
	return t
}

func withBearer(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, ctxKeyBearer{}, raw)
}

// BearerFrom devuelve el bearer crudo del request (para re-validaciones
// tenant-aware más abajo en la cadena).
func BearerFrom(ctx context.Context) string {
	b, _ := ctx.Value(ctxKeyBearer{}).(string)
	return b
}
