package token_test

import (
	"testing"
	"time"

	"github.com/dropDatabas3/portero/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret-0123456789")

func newIssuer(accessTTL time.Duration) *token.Issuer {
	return token.NewIssuer(secret, "portero-test", accessTTL, time.Hour, time.Hour)
}

func TestAccess_RoundTrip(t *testing.T) {
	iss := newIssuer(time.Minute)

	raw, exp, err := iss.IssueAccess("user-1", "tenant-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	c, err := iss.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.Subject)
	assert.Equal(t, "tenant-1", c.TenantID)
	assert.Empty(t, c.Type)
	assert.NotEmpty(t, c.JTI)
}

func TestAccess_WithoutTenant(t *testing.T) {
	iss := newIssuer(time.Minute)
	raw, _, err := iss.IssueAccess("user-1", "")
	require.NoError(t, err)

	c, err := iss.Decode(raw)
	require.NoError(t, err)
	assert.Empty(t, c.TenantID)
}

func TestDecode_RejectsExpired(t *testing.T) {
	iss := newIssuer(-time.Minute)
	raw, _, err := iss.IssueAccess("user-1", "")
	require.NoError(t, err)

	_, err = iss.Decode(raw)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestDecode_RejectsWrongSecret(t *testing.T) {
	iss := newIssuer(time.Minute)
	raw, _, err := iss.IssueAccess("user-1", "")
	require.NoError(t, err)

	other := token.NewIssuer([]byte("otro-secreto"), "portero-test", time.Minute, time.Hour, time.Hour)
	_, err = other.Decode(raw)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestDecode_RejectsWrongIssuer(t *testing.T) {
	other := token.NewIssuer(secret, "otro-iss", time.Minute, time.Hour, time.Hour)
	raw, _, err := other.IssueAccess("user-1", "")
	require.NoError(t, err)

	_, err = newIssuer(time.Minute).Decode(raw)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// Un token de un tipo presentado en el endpoint de otro tipo falla igual que
// un token roto.
func TestTypeConfinement(t *testing.T) {
	iss := newIssuer(time.Minute)

	access, _, err := iss.IssueAccess("user-1", "")
	require.NoError(t, err)
	refresh, _, err := iss.IssueRefresh("user-1", "")
	require.NoError(t, err)
	reset, err := iss.IssuePasswordReset("user-1", "a@b.com")
	require.NoError(t, err)

	_, err = iss.Decode(refresh)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = iss.Decode(reset)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = iss.DecodeRefresh(access)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = iss.DecodeRefresh(reset)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = iss.VerifyPasswordReset(access)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = iss.VerifyPasswordReset(refresh)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerifyPasswordReset_CarriesEmailSnapshot(t *testing.T) {
	iss := newIssuer(time.Minute)
	raw, err := iss.IssuePasswordReset("user-1", "persona@example.com")
	require.NoError(t, err)

	c, err := iss.VerifyPasswordReset(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.Subject)
	assert.Equal(t, "persona@example.com", c.Email)
	assert.NotEmpty(t, c.JTI)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	iss := newIssuer(time.Minute)
	for _, raw := range []string{"", "no.es.jwt", "aaaa.bbbb"} {
		_, err := iss.Decode(raw)
		assert.ErrorIs(t, err, token.ErrInvalidToken, "raw=%q", raw)
	}
}
