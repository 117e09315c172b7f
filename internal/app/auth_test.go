package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/portero/internal/app"
	cachemem "github.com/dropDatabas3/portero/internal/cache/memory"
	"github.com/dropDatabas3/portero/internal/security/password"
	"github.com/dropDatabas3/portero/internal/store/core"
	"github.com/dropDatabas3/portero/internal/store/memory"
	"github.com/dropDatabas3/portero/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

// captureMailer guarda los envíos en vez de mandarlos.
type captureMailer struct {
	sent []struct{ to, subject string }
}

func (m *captureMailer) Send(to, subject, htmlBody, textBody string) error {
	m.sent = append(m.sent, struct{ to, subject string }{to, subject})
	return nil
}

func newService(t *testing.T) (*app.Service, *memory.Store, *captureMailer) {
	t.Helper()
	repo := memory.New()
	iss := token.NewIssuer([]byte("app-test-secret"), "portero-test", time.Minute, time.Hour, time.Hour)
	mailer := &captureMailer{}
	svc := app.NewService(repo, iss, testParams, password.DefaultPolicy(false), cachemem.New(time.Minute), mailer)
	return svc, repo, mailer
}

func register(t *testing.T, svc *app.Service) *core.User {
	t.Helper()
	u, err := svc.Register(context.Background(), app.RegisterInput{
		Username: "ana",
		Email:    "ana@example.com",
		Password: "Passw0rd!",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newService(t)
	u := register(t, svc)
	assert.True(t, u.IsActive)

	// por username
	pair, err := svc.Login(context.Background(), "ana", "Passw0rd!")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Greater(t, pair.ExpiresIn, int64(0))

	// por email
	_, err = svc.Login(context.Background(), "ana@example.com", "Passw0rd!")
	require.NoError(t, err)
}

func TestLogin_UpdatesLastLogin(t *testing.T) {
	svc, repo, _ := newService(t)
	u := register(t, svc)
	require.Nil(t, u.LastLoginAt)

	_, err := svc.Login(context.Background(), "ana", "Passw0rd!")
	require.NoError(t, err)

	got, err := repo.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)
}

// Desconocido, password incorrecta y cuenta inactiva: mismo error.
func TestAuthenticate_UniformFailure(t *testing.T) {
	svc, repo, _ := newService(t)
	u := register(t, svc)

	_, err := svc.Authenticate(context.Background(), "nadie", "Passw0rd!")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "ana", "otraCosa1")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)

	require.NoError(t, repo.SetUserActive(context.Background(), u.ID, false))
	_, err = svc.Authenticate(context.Background(), "ana", "Passw0rd!")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestRegister_DuplicateIdentifier(t *testing.T) {
	svc, _, _ := newService(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), app.RegisterInput{
		Username: "ana", Email: "otra@example.com", Password: "Passw0rd!",
	})
	assert.ErrorIs(t, err, app.ErrDuplicateIdentifier)

	_, err = svc.Register(context.Background(), app.RegisterInput{
		Username: "beto", Email: "ana@example.com", Password: "Passw0rd!",
	})
	assert.ErrorIs(t, err, app.ErrDuplicateIdentifier)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Register(context.Background(), app.RegisterInput{
		Username: "beto", Email: "beto@example.com", Password: "corta",
	})
	weak, ok := app.IsWeakPassword(err)
	require.True(t, ok)
	assert.Contains(t, weak.Reasons, "too_short")
}

func TestRegister_InvalidIdentity(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Register(context.Background(), app.RegisterInput{
		Username: "x", Email: "beto@example.com", Password: "Passw0rd!",
	})
	assert.ErrorIs(t, err, core.ErrInvalid)

	_, err = svc.Register(context.Background(), app.RegisterInput{
		Username: "beto", Email: "no-es-email", Password: "Passw0rd!",
	})
	assert.ErrorIs(t, err, core.ErrInvalid)
}

func TestRefresh_RotatesPair(t *testing.T) {
	svc, _, _ := newService(t)
	register(t, svc)
	pair, err := svc.Login(context.Background(), "ana", "Passw0rd!")
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEmpty(t, rotated.RefreshToken)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _, _ := newService(t)
	register(t, svc)
	pair, err := svc.Login(context.Background(), "ana", "Passw0rd!")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestRefresh_RejectsDeactivatedUser(t *testing.T) {
	svc, repo, _ := newService(t)
	u := register(t, svc)
	pair, err := svc.Login(context.Background(), "ana", "Passw0rd!")
	require.NoError(t, err)

	require.NoError(t, repo.SetUserActive(context.Background(), u.ID, false))
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newService(t)
	register(t, svc)

	err := svc.ChangePassword(context.Background(), "inexistente", "x", "y")
	assert.Error(t, err)

	u, err := svc.Authenticate(context.Background(), "ana", "Passw0rd!")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(context.Background(), u.ID, "equivocada", "Nueva0pass"), app.ErrInvalidCredentials)

	_, ok := app.IsWeakPassword(svc.ChangePassword(context.Background(), u.ID, "Passw0rd!", "corta"))
	assert.True(t, ok)

	require.NoError(t, svc.ChangePassword(context.Background(), u.ID, "Passw0rd!", "Nueva0pass"))
	_, err = svc.Authenticate(context.Background(), "ana", "Nueva0pass")
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), "ana", "Passw0rd!")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

// Exista o no el email, el caller ve lo mismo; el envío solo ocurre para
// cuentas reales.
func TestRequestPasswordReset_AntiEnumeration(t *testing.T) {
	svc, _, mailer := newService(t)
	register(t, svc)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nadie@example.com"))
	assert.Empty(t, mailer.sent)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ana@example.com"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@example.com", mailer.sent[0].to)
}

func TestResetPassword_RoundTripAndReplay(t *testing.T) {
	svc, _, _ := newService(t)
	u := register(t, svc)

	tok, err := svc.Issuer.IssuePasswordReset(u.ID, u.Email)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), tok, "Nueva0pass"))
	_, err = svc.Authenticate(context.Background(), "ana", "Nueva0pass")
	require.NoError(t, err)

	// replay del mismo token: consumido, falla
	err = svc.ResetPassword(context.Background(), tok, "Tercera0pass")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = svc.Authenticate(context.Background(), "ana", "Nueva0pass")
	require.NoError(t, err)
}

func TestResetPassword_EmailSnapshotMismatch(t *testing.T) {
	svc, _, _ := newService(t)
	u := register(t, svc)

	// token emitido para un email que ya no es el del usuario
	tok, err := svc.Issuer.IssuePasswordReset(u.ID, "viejo@example.com")
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), tok, "Nueva0pass")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestResetPassword_RejectsOtherTokenTypes(t *testing.T) {
	svc, _, _ := newService(t)
	register(t, svc)
	pair, err := svc.Login(context.Background(), "ana", "Passw0rd!")
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), pair.AccessToken, "Nueva0pass")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}
