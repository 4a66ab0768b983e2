package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/theonesud/API-Template/internal/domain"
	"github.com/theonesud/API-Template/internal/repository"
)

// AuthService coordina login, refresh y logout sobre verificador, codec y sesiones.
type AuthService struct {
	logger   *zap.Logger
	verifier CredentialVerifier
	codec    *TokenCodec
	users    repository.UserRepository
	sessions repository.SessionRepository
	now      func() time.Time
}

func NewAuthService(
	logger *zap.Logger,
	verifier CredentialVerifier,
	codec *TokenCodec,
	users repository.UserRepository,
	sessions repository.SessionRepository,
) *AuthService {
	return &AuthService{
		logger:   logger,
		verifier: verifier,
		codec:    codec,
		users:    users,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login verifica la asercion, abre una sesion nueva y emite access + refresh.
// Las sesiones previas del usuario siguen activas.
func (s *AuthService) Login(ctx context.Context, assertion string) (TokenPair, error) {
	identity, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		return TokenPair{}, err
	}

	user, err := s.activeUser(ctx, identity.Email)
	if err != nil {
		return TokenPair{}, err
	}

	loginTime := s.now()
	session, err := s.sessions.Create(ctx, user.ID, loginTime)
	if err != nil {
		return TokenPair{}, persistenceError("create session", err)
	}

	claims := claimsFor(user, identity.Name, identity.Picture, loginTime)
	access, err := s.codec.Issue(claims, loginTime, TokenTypeAccess)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.Issue(claims, loginTime, TokenTypeRefresh)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	s.logger.Info("login",
		zap.String("email", user.Email),
		zap.Int64("user_id", user.ID),
		zap.Int64("session_id", session.ID),
	)
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rota las sesiones del usuario y emite solo un access token nuevo.
// El refresh token presentado no se rota.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.codec.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	user, err := s.activeUser(ctx, claims.Email)
	if err != nil {
		return TokenPair{}, err
	}

	loginTime := s.now()
	session, err := s.sessions.Rotate(ctx, user.ID, loginTime)
	if err != nil {
		return TokenPair{}, persistenceError("rotate sessions", err)
	}

	next := claimsFor(user, claims.Name, claims.Image, loginTime)
	access, err := s.codec.Issue(next, loginTime, TokenTypeAccess)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	s.logger.Info("refresh",
		zap.String("email", user.Email),
		zap.Int64("user_id", user.ID),
		zap.Int64("session_id", session.ID),
	)
	return TokenPair{AccessToken: access}, nil
}

// Logout invalida todas las sesiones del usuario. El access token sigue siendo
// valido hasta su exp: no hay lista de revocacion.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.codec.ParseAccessToken(accessToken)
	if err != nil {
		return err
	}

	n, err := s.sessions.InvalidateAll(ctx, claims.ID)
	if err != nil {
		return persistenceError("invalidate sessions", err)
	}

	s.logger.Info("logout",
		zap.String("email", claims.Email),
		zap.Int64("user_id", claims.ID),
		zap.Int64("sessions_invalidated", n),
	)
	return nil
}

// CurrentUser devuelve los claims del access token tal cual, sin consultar la base.
func (s *AuthService) CurrentUser(_ context.Context, accessToken string) (Claims, error) {
	claims, err := s.codec.ParseAccessToken(accessToken)
	if err != nil {
		return Claims{}, err
	}
	s.logger.Info("current user", zap.String("email", claims.Email), zap.Int64("user_id", claims.ID))
	return claims, nil
}

func (s *AuthService) activeUser(ctx context.Context, email string) (domain.User, error) {
	user, err := s.users.GetActiveByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("user email not found or deactivated", zap.String("email", email))
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, persistenceError("lookup user", err)
	}
	return user, nil
}

// claimsFor combina el registro del usuario con los datos de perfil y la hora de login.
func claimsFor(user domain.User, name, image string, loginTime time.Time) Claims {
	return Claims{
		ID:        user.ID,
		Email:     user.Email,
		Name:      name,
		Image:     image,
		CompanyID: user.CompanyID,
		Deleted:   user.Deleted,
		LoginTime: loginTime.Format(time.RFC3339Nano),
	}
}
