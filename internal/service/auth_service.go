package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dopaj/field-service/internal/auth"
	"github.com/dopaj/field-service/internal/config"
	"github.com/dopaj/field-service/internal/domain"
	"github.com/dopaj/field-service/internal/repository"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

// AuthService coordinates login and logout.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	limiter  *auth.LoginLimiter
	revoked  auth.RevocationList
	logger   *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	RevocationList auth.RevocationList
	Logger         *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:    deps.UserRepo,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		limiter:  auth.NewLoginLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst),
		revoked:  deps.RevocationList,
		logger:   deps.Logger,
	}
}

// Login authenticates an account by identifier and secret. Succeeds only
// on an exact identifier match plus a bcrypt match; every failure looks
// identical to the caller.
func (s *AuthService) Login(ctx context.Context, identifier, secret string) (*domain.User, string, time.Time, error) {
	if !s.limiter.Allow(identifier) {
		return nil, "", time.Time{}, apperrors.NewRateLimited("too many login attempts, try again later")
	}

	user, err := s.users.GetByEmail(ctx, identifier)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, secret); err != nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	s.logger.Info("login", zap.String("uid", user.ID), zap.String("role", string(user.Role)))
	return user, token, expiresAt, nil
}

// Logout revokes the presented token unconditionally. An unparseable
// token is already unusable, so that case succeeds as a no-op.
func (s *AuthService) Logout(ctx context.Context, tokenStr string) error {
	claims, err := s.tokenMgr.ParseToken(tokenStr)
	if err != nil {
		return nil
	}
	if s.revoked == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the manager for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
