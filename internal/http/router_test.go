package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropDatabas3/portero/internal/app"
	"github.com/dropDatabas3/portero/internal/authz"
	cachemem "github.com/dropDatabas3/portero/internal/cache/memory"
	"github.com/dropDatabas3/portero/internal/guard"
	porterohttp "github.com/dropDatabas3/portero/internal/http"
	"github.com/dropDatabas3/portero/internal/rate"
	"github.com/dropDatabas3/portero/internal/security/password"
	"github.com/dropDatabas3/portero/internal/store/core"
	"github.com/dropDatabas3/portero/internal/store/memory"
	"github.com/dropDatabas3/portero/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mailerStub struct{}

func (mailerStub) Send(to, subject, htmlBody, textBody string) error { return nil }

var weakParams = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func newTestServer(t *testing.T) (*httptest.Server, *app.Container) {
	t.Helper()
	repo := memory.New()
	require.NoError(t, authz.Seed(context.Background(), repo))

	iss := token.NewIssuer([]byte("router-test-secret"), "portero-test", time.Minute, time.Hour, time.Hour)
	cm := cachemem.New(time.Minute)
	c := &app.Container{
		Store:         repo,
		Issuer:        iss,
		Auth:          app.NewService(repo, iss, weakParams, password.DefaultPolicy(false), cm, mailerStub{}),
		Guard:         guard.New(repo, iss),
		Cache:         cm,
		LoginLimiter:  rate.Noop{},
		ForgotLimiter: rate.Noop{},
	}
	srv := httptest.NewServer(porterohttp.NewRouter(c))
	t.Cleanup(srv.Close)
	return srv, c
}

func doJSON(t *testing.T, method, url, bearer string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestRegisterLoginMeFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"username": "ana", "email": "ana@example.com", "password": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["id"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"identifier": "ana", "password": "Passw0rd!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access, _ := body["access_token"].(string)
	refresh, _ := body["refresh_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/me", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ana", body["username"])
	assert.Equal(t, false, body["is_superuser"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])
}

func TestLogin_UniformErrorBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, unknown := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"identifier": "nadie", "password": "Passw0rd!",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"username": "ana", "email": "ana@example.com", "password": "Passw0rd!",
	})
	resp, wrongPass := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"identifier": "ana", "password": "incorrecta1A",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// mismo cuerpo para usuario inexistente y password incorrecta
	assert.Equal(t, unknown, wrongPass)
	assert.Equal(t, "INVALID_CREDENTIALS", wrongPass["code"])
}

func TestMe_RequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_MISSING", body["code"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/me", "basura", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_INVALID", body["code"])
}

func TestRegister_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"username": "beto", "email": "beto@example.com", "password": "corta",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "PASSWORD_TOO_WEAK", body["code"])
	assert.NotEmpty(t, body["detail"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"username": "beto", "email": "no-es-email", "password": "Passw0rd!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_FORMAT", body["code"])

	doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"username": "beto", "email": "beto@example.com", "password": "Passw0rd!",
	})
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"username": "beto", "email": "otro@example.com", "password": "Passw0rd!",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_IDENTIFIER", body["code"])
}

func TestForgot_SameResponseEitherWay(t *testing.T) {
	srv, _ := newTestServer(t)
	doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"username": "ana", "email": "ana@example.com", "password": "Passw0rd!",
	})

	resp1, body1 := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/forgot", "", map[string]string{"email": "ana@example.com"})
	resp2, body2 := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/forgot", "", map[string]string{"email": "nadie@example.com"})

	assert.Equal(t, http.StatusAccepted, resp1.StatusCode)
	assert.Equal(t, http.StatusAccepted, resp2.StatusCode)
	assert.Equal(t, body1, body2)
}

func TestChangePassword_EndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)
	doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"username": "ana", "email": "ana@example.com", "password": "Passw0rd!",
	})
	_, login := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"identifier": "ana", "password": "Passw0rd!",
	})
	access := login["access_token"].(string)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/change-password", access, map[string]string{
		"current_password": "Passw0rd!", "new_password": "Nueva0pass",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"identifier": "ana", "password": "Nueva0pass",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResetPassword_EndToEnd(t *testing.T) {
	srv, c := newTestServer(t)
	doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"username": "ana", "email": "ana@example.com", "password": "Passw0rd!",
	})
	u, err := c.Store.GetUserByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	tok, err := c.Issuer.IssuePasswordReset(u.ID, u.Email)
	require.NoError(t, err)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/reset", "", map[string]string{
		"token": tok, "new_password": "Nueva0pass",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// replay: el jti ya fue consumido
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/reset", "", map[string]string{
		"token": tok, "new_password": "Tercera0pass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_INVALID", body["code"])
}

func TestTenantSummary(t *testing.T) {
	srv, c := newTestServer(t)
	ctx := context.Background()

	one := 1
	ten := &core.Tenant{
		ID: "t1", Name: "Acme", Code: "acme",
		SubscriptionStatus: core.SubscriptionActive, IsActive: true,
		MaxUsers: nil, MaxBranches: &one,
	}
	require.NoError(t, c.Store.CreateTenant(ctx, ten))

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"username": "ana", "email": "ana@example.com", "password": "Passw0rd!",
		"tenant_id": "t1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// rol con tenants:read para pasar el gate de permisos
	u, err := c.Store.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	role, err := c.Store.GetRoleByName(ctx, "tenant_admin")
	require.NoError(t, err)
	require.NoError(t, c.Store.AssignRole(ctx, u.ID, role.ID))

	_, login := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"identifier": "ana", "password": "Passw0rd!",
	})
	access := login["access_token"].(string)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/tenants/t1/summary", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Acme", body["name"])

	users := body["users"].(map[string]any)
	assert.Equal(t, float64(1), users["current"])
	assert.Nil(t, users["max"]) // ilimitado
	assert.Equal(t, true, users["can_add"])

	branches := body["branches"].(map[string]any)
	assert.Equal(t, float64(0), branches["current"])
	assert.Equal(t, float64(1), branches["max"])
	assert.Equal(t, true, branches["can_add"])

	// el path no puede apuntar a otro tenant que el del token
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/tenants/t2/summary", access, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestTenantSummary_PermissionDenied(t *testing.T) {
	srv, c := newTestServer(t)
	ctx := context.Background()

	ten := &core.Tenant{
		ID: "t1", Name: "Acme", Code: "acme",
		SubscriptionStatus: core.SubscriptionActive, IsActive: true,
	}
	require.NoError(t, c.Store.CreateTenant(ctx, ten))

	doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"username": "ana", "email": "ana@example.com", "password": "Passw0rd!",
		"tenant_id": "t1",
	})
	// sin rol asignado: sin tenants:read
	_, login := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"identifier": "ana", "password": "Passw0rd!",
	})
	access := login["access_token"].(string)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/tenants/t1/summary", access, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	// el 403 lleva la descripción humana del permiso faltante
	assert.Equal(t, authz.Describe("tenants:read"), body["detail"])
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/readyz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["store"])
}

func TestRateLimit_Login(t *testing.T) {
	_, c := newTestServer(t)
	c.LoginLimiter = rate.NewWindowLimiter(c.Cache, "rl:login:", 2, time.Hour)

	// el primer router capturó el Noop; armar uno nuevo con el limiter real
	srv2 := httptest.NewServer(porterohttp.NewRouter(c))
	defer srv2.Close()

	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, http.MethodPost, srv2.URL+"/v1/auth/login", "", map[string]string{
			"identifier": "nadie", "password": fmt.Sprintf("Passw0rd%d", i),
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, body := doJSON(t, http.MethodPost, srv2.URL+"/v1/auth/login", "", map[string]string{
		"identifier": "nadie", "password": "Passw0rd3",
	})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["code"])
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}
