// Package app orquesta la autenticación: credenciales, emisión de tokens,
// cambio y reset de password, registro.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/portero/internal/cache"
	"github.com/dropDatabas3/portero/internal/email"
	"github.com/dropDatabas3/portero/internal/metrics"
	"github.com/dropDatabas3/portero/internal/observability/logger"
	"github.com/dropDatabas3/portero/internal/security/password"
	"github.com/dropDatabas3/portero/internal/store/core"
	"github.com/dropDatabas3/portero/internal/token"
	"github.com/dropDatabas3/portero/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenPair es lo que devuelve login/refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // segundos del access
}

// Service es el servicio de autenticación. Stateless por request: todo lo
// mutable vive en Repo y Cache.
type Service struct {
	Repo   core.Repository
	Issuer *token.Issuer
	Params password.Params
	Policy password.Policy
	Cache  cache.Client
	Mailer email.Sender

	// decoy para igualar el costo del camino "usuario desconocido" con el
	// de "password incorrecta"
	decoyHash string
}

func NewService(repo core.Repository, iss *token.Issuer, params password.Params, pol password.Policy, c cache.Client, mailer email.Sender) *Service {
	decoy, _ := password.Hash(params, uuid.NewString())
	return &Service{
		Repo:      repo,
		Issuer:    iss,
		Params:    params,
		Policy:    pol,
		Cache:     c,
		Mailer:    mailer,
		decoyHash: decoy,
	}
}

// Authenticate verifica identifier (username O email, tal como se almacenó)
// + password. Desconocido, password incorrecta y cuenta inactiva devuelven
// el mismo ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, identifier, pwd string) (*core.User, error) {
	u, err := s.Repo.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		// quemar una comparación igual: que el timing no delate la cuenta
		password.Verify(pwd, s.decoyHash)
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(pwd, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login autentica y emite el par access+refresh con el tenant primario del
// usuario. El write de last-login es best-effort: se loguea, no tira el login.
func (s *Service) Login(ctx context.Context, identifier, pwd string) (*TokenPair, error) {
	u, err := s.Authenticate(ctx, identifier, pwd)
	if err != nil {
		metrics.Login("invalid_credentials")
		return nil, err
	}

	if password.NeedsRehash(u.PasswordHash, s.Params) {
		if h, herr := password.Hash(s.Params, pwd); herr == nil {
			if uerr := s.Repo.UpdatePasswordHash(ctx, u.ID, h); uerr != nil {
				logger.From(ctx).Warn("opportunistic rehash failed", zap.String("user_id", u.ID), zap.Error(uerr))
			}
		}
	}

	pair, err := s.issuePair(u)
	if err != nil {
		metrics.Login("error")
		return nil, err
	}
	if err := s.Repo.UpdateLastLogin(ctx, u.ID, time.Now().UTC()); err != nil {
		logger.From(ctx).Warn("last-login update failed", zap.String("user_id", u.ID), zap.Error(err))
	}
	metrics.Login("ok")
	return pair, nil
}

// Refresh rota el par: un refresh válido emite access+refresh nuevos.
// No hay ledger server-side: el refresh viejo sigue siendo criptográficamente
// válido hasta su exp (limitación documentada del diseño).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.Issuer.DecodeRefresh(refreshToken)
	if err != nil {
		return nil, token.ErrInvalidToken
	}
	u, err := s.Repo.GetUserByID(ctx, claims.Subject)
	if err != nil || !u.IsActive {
		return nil, token.ErrInvalidToken
	}
	return s.issuePair(u)
}

func (s *Service) issuePair(u *core.User) (*TokenPair, error) {
	tenantID := ""
	if u.PrimaryTenantID != nil {
		tenantID = *u.PrimaryTenantID
	}
	access, exp, err := s.Issuer.IssueAccess(u.ID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("issue access: %w", err)
	}
	refresh, _, err := s.Issuer.IssueRefresh(u.ID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh: %w", err)
	}
	metrics.TokenIssued("access")
	metrics.TokenIssued("refresh")
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	}, nil
}

// RegisterInput son los campos de alta de usuario.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	TenantID  string // opcional: membership inicial + tenant primario
}

// Register valida sintaxis y policy, chequea unicidad y persiste.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*core.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if !validation.ValidUsername(in.Username) || !validation.ValidEmail(in.Email) {
		return nil, core.ErrInvalid
	}
	if ok, reasons := s.Policy.Validate(in.Password); !ok {
		return nil, &WeakPasswordError{Reasons: reasons}
	}

	hash, err := password.Hash(s.Params, in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &core.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.TenantID != "" {
		u.PrimaryTenantID = &in.TenantID
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, ErrDuplicateIdentifier
		}
		return nil, err
	}
	if in.TenantID != "" {
		m := &core.TenantMembership{UserID: u.ID, TenantID: in.TenantID, IsPrimary: true, JoinedAt: now}
		if err := s.Repo.AddTenantMembership(ctx, m); err != nil && !errors.Is(err, core.ErrConflict) {
			logger.From(ctx).Warn("initial membership failed", zap.String("user_id", u.ID), zap.Error(err))
		}
	}
	return u, nil
}

// ChangePassword exige la password actual antes de aceptar la nueva.
// No invalida tokens emitidos (sin ledger de revocación; gap documentado).
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !password.Verify(current, u.PasswordHash) {
		return ErrInvalidCredentials
	}
	if ok, reasons := s.Policy.Validate(next); !ok {
		return &WeakPasswordError{Reasons: reasons}
	}
	hash, err := password.Hash(s.Params, next)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePasswordHash(ctx, u.ID, hash)
}

// RequestPasswordReset SIEMPRE devuelve nil: exista o no el email, el caller
// ve lo mismo (anti-enumeración). El token viaja solo por el Sender.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = strings.TrimSpace(strings.ToLower(emailAddr))
	u, err := s.Repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		metrics.ResetFlow("request", "unknown_email")
		return nil
	}
	tok, err := s.Issuer.IssuePasswordReset(u.ID, u.Email)
	if err != nil {
		logger.From(ctx).Error("reset token issue failed", zap.String("user_id", u.ID), zap.Error(err))
		return nil
	}
	metrics.TokenIssued("password_reset")

	html, text, err := email.RenderReset(email.ResetVars{Name: u.FirstName, Token: tok})
	if err == nil {
		if serr := s.Mailer.Send(u.Email, "Password reset", html, text); serr != nil {
			logger.From(ctx).Error("reset mail send failed", zap.String("user_id", u.ID), zap.Error(serr))
		}
	}
	metrics.ResetFlow("request", "ok")
	return nil
}

const consumedPrefix = "reset:consumed:"

// ResetPassword valida el token, exige que el email embebido siga siendo el
// actual (un cambio de email mata tokens viejos), y lo marca consumido por
// jti: single-use real, con TTL igual a la vida restante del token.
func (s *Service) ResetPassword(ctx context.Context, rawToken, next string) error {
	claims, err := s.Issuer.VerifyPasswordReset(rawToken)
	if err != nil {
		metrics.ResetFlow("confirm", "invalid_token")
		return token.ErrInvalidToken
	}
	if used, cerr := s.Cache.Exists(ctx, consumedPrefix+claims.JTI); cerr == nil && used {
		metrics.ResetFlow("confirm", "replayed")
		return token.ErrInvalidToken
	}
	u, err := s.Repo.GetUserByID(ctx, claims.Subject)
	if err != nil {
		metrics.ResetFlow("confirm", "invalid_token")
		return token.ErrInvalidToken
	}
	if !strings.EqualFold(u.Email, claims.Email) {
		metrics.ResetFlow("confirm", "email_mismatch")
		return token.ErrInvalidToken
	}
	if ok, reasons := s.Policy.Validate(next); !ok {
		return &WeakPasswordError{Reasons: reasons}
	}
	hash, err := password.Hash(s.Params, next)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return err
	}
	ttl := time.Until(claims.Expiry)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	if err := s.Cache.Set(ctx, consumedPrefix+claims.JTI, "1", ttl); err != nil {
		logger.From(ctx).Error("reset jti mark failed", zap.String("jti", claims.JTI), zap.Error(err))
	}
	metrics.ResetFlow("confirm", "ok")
	return nil
}
