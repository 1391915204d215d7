package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/claims-console/internal/auth"
	"github.com/spec-kit/claims-console/internal/backend"
	"github.com/spec-kit/claims-console/internal/domain"
	"github.com/spec-kit/claims-console/internal/session"
	apperrors "github.com/spec-kit/claims-console/pkg/util"
)

const (
	msgInvalidCredential = "Invalid credential"
	msgSomethingWrong    = "Oops something went wrong"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	SessionID string
	Token     string
	ExpiresAt time.Time
	Identity  domain.Identity
}

// AuthService coordinates the console login, logout and refresh flows.
type AuthService struct {
	backend  Backend
	sessions *SessionService
	tokenMgr *auth.TokenManager
	logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(backendClient Backend, sessions *SessionService, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		backend:  backendClient,
		sessions: sessions,
		tokenMgr: tokens,
		logger:   logger,
	}
}

// TokenManager exposes the token manager used by the middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login checks the credential with the backend, opens a console session and fetches
// its identity.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	cookies, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, s.mapBackendError("login", err)
	}

	sessionID, store, err := s.sessions.Open(ctx, email, cookies)
	if err != nil {
		return nil, s.mapBackendError("fetch identity", err)
	}

	identity, ok := store.Identity()
	if !ok {
		s.sessions.Dispose(sessionID)
		return nil, apperrors.NewUnauthorized(msgInvalidCredential)
	}

	token, exp, err := s.tokenMgr.GenerateToken(sessionID)
	if err != nil {
		s.sessions.Dispose(sessionID)
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("console login", zap.String("session_id", sessionID), zap.String("user_id", identity.UserID))
	return &LoginResult{SessionID: sessionID, Token: token, ExpiresAt: exp, Identity: identity}, nil
}

// Logout ends the console session. It is safe to call for unknown sessions.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Logout(ctx, sessionID); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("console logout", zap.String("session_id", sessionID))
	return nil
}

// Refresh refetches the identity of a session.
func (s *AuthService) Refresh(ctx context.Context, sessionID string) (domain.Identity, error) {
	store, err := s.sessions.Refresh(ctx, sessionID)
	if err != nil && !errors.Is(err, session.ErrSuperseded) {
		return domain.Identity{}, apperrors.NewUnauthorized("session expired")
	}

	identity, ok := store.Identity()
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized("session expired")
	}
	return identity, nil
}

func (s *AuthService) mapBackendError(op string, err error) error {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return apperrors.NewUnauthorized(msgInvalidCredential)
	case errors.Is(err, session.ErrMalformed):
		s.logger.Warn("backend returned malformed identity", zap.String("op", op), zap.Error(err))
		return apperrors.NewBadGateway(msgSomethingWrong, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.MapError(err)
	default:
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) {
			s.logger.Warn("backend rejected request", zap.String("op", op), zap.Int("status", statusErr.Status))
		} else {
			s.logger.Warn("backend call failed", zap.String("op", op), zap.Error(err))
		}
		return apperrors.NewBadGateway(msgSomethingWrong, err)
	}
}
