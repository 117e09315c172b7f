// Package token emite y valida los JWT del core: access, refresh y
// password-reset. Firma HS256 con el secreto del proceso (cargado una vez
// al inicio, nunca rotado en runtime).
package token

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken: firma inválida, estructura rota, expirado o typ que no
// corresponde al endpoint. Todo colapsa acá a propósito: no damos oráculo.
var ErrInvalidToken = errors.New("invalid_token")

// Discriminadores de tipo. El access token no lleva typ (ausencia = access);
// mezclar tipos entre endpoints es un defecto de seguridad, no un detalle.
const (
	TypeRefresh       = "refresh"
	TypePasswordReset = "password_reset"
)

// Claims son las claims propias del core ya tipadas.
type Claims struct {
	Subject  string // user id
	TenantID string // opcional
	Type     string // "" | refresh | password_reset
	Email    string // solo password_reset
	JTI      string
	IssuedAt time.Time
	Expiry   time.Time
}

// Issuer firma y verifica tokens. Inmutable después de construido; seguro
// para uso concurrente.
type Issuer struct {
	secret     []byte
	iss        string
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

func NewIssuer(secret []byte, iss string, accessTTL, refreshTTL, resetTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &Issuer{secret: secret, iss: iss, accessTTL: accessTTL, refreshTTL: refreshTTL, resetTTL: resetTTL}
}

func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }
func (i *Issuer) ResetTTL() time.Duration  { return i.resetTTL }

func (i *Issuer) sign(claims jwtv5.MapClaims) (string, error) {
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	return tk.SignedString(i.secret)
}

func (i *Issuer) base(sub, tenantID string, ttl time.Duration) (jwtv5.MapClaims, time.Time) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwtv5.MapClaims{
		"iss": i.iss,
		"sub": sub,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
		"jti": uuid.NewString(),
	}
	if tenantID != "" {
		claims["tid"] = tenantID
	}
	return claims, exp
}

// IssueAccess emite un access token (sin claim typ).
func (i *Issuer) IssueAccess(userID, tenantID string) (string, time.Time, error) {
	claims, exp := i.base(userID, tenantID, i.accessTTL)
	signed, err := i.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefresh emite un refresh token (typ=refresh).
func (i *Issuer) IssueRefresh(userID, tenantID string) (string, time.Time, error) {
	claims, exp := i.base(userID, tenantID, i.refreshTTL)
	claims["typ"] = TypeRefresh
	signed, err := i.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssuePasswordReset emite un token de reset single-use (typ=password_reset).
// Lleva snapshot del email: si el usuario cambia su email, el token muere.
func (i *Issuer) IssuePasswordReset(userID, email string) (string, error) {
	claims, _ := i.base(userID, "", i.resetTTL)
	claims["typ"] = TypePasswordReset
	claims["email"] = email
	return i.sign(claims)
}

func (i *Issuer) parse(raw string) (*Claims, error) {
	tok, err := jwtv5.Parse(raw, func(t *jwtv5.Token) (any, error) {
		return i.secret, nil
	},
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(i.iss),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	c := &Claims{}
	c.Subject, _ = mc["sub"].(string)
	c.TenantID, _ = mc["tid"].(string)
	c.Type, _ = mc["typ"].(string)
	c.Email, _ = mc["email"].(string)
	c.JTI, _ = mc["jti"].(string)
	if iatf, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iatf), 0).UTC()
	}
	if expf, ok := mc["exp"].(float64); ok {
		c.Expiry = time.Unix(int64(expf), 0).UTC()
	}
	if c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

// Decode valida un access token. Un refresh o reset presentado acá falla
// igual que un token roto.
func (i *Issuer) Decode(raw string) (*Claims, error) {
	c, err := i.parse(raw)
	if err != nil {
		return nil, err
	}
	if c.Type != "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

// DecodeRefresh valida un refresh token (typ=refresh obligatorio).
func (i *Issuer) DecodeRefresh(raw string) (*Claims, error) {
	c, err := i.parse(raw)
	if err != nil {
		return nil, err
	}
	if c.Type != TypeRefresh {
		return nil, ErrInvalidToken
	}
	return c, nil
}

// VerifyPasswordReset valida firma, expiry y typ=password_reset.
func (i *Issuer) VerifyPasswordReset(raw string) (*Claims, error) {
	c, err := i.parse(raw)
	if err != nil {
		return nil, err
	}
	if c.Type != TypePasswordReset || c.Email == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}
