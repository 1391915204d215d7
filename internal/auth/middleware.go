package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/claims-console/internal/domain"
	"github.com/spec-kit/claims-console/internal/session"
	apperrors "github.com/spec-kit/claims-console/pkg/util"
)

const principalKey = "auth_principal"

// ErrNoSession is returned by a StoreResolver when the session is unknown or no
// longer backed by a valid backend session.
var ErrNoSession = errors.New("auth: no console session")

// StoreResolver yields the identity store owned by a console session.
type StoreResolver interface {
	Store(ctx context.Context, sessionID string) (*session.Store, error)
}

// DenyHook observes denied gate decisions.
type DenyHook func(c *fiber.Ctx, subject string, roles domain.RoleSet)

// Principal represents the caller's console session.
type Principal struct {
	SessionID string
	Store     *session.Store
}

// AuthMiddleware resolves console session tokens into identity stores.
type AuthMiddleware struct {
	tokens     *TokenManager
	sessions   StoreResolver
	cookieName string
	logger     *zap.Logger
	onDeny     DenyHook
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions StoreResolver, cookieName string, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, sessions: sessions, cookieName: cookieName, logger: logger}
}

// OnDeny registers a hook invoked for every denied decision.
func (m *AuthMiddleware) OnDeny(hook DenyHook) {
	m.onDeny = hook
}

// Handle attaches the caller's principal when a valid session token is presented.
// Callers without one continue anonymously; gates decide what they may see.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw := m.tokenFromRequest(c)
	if raw == "" {
		return c.Next()
	}

	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		m.logger.Debug("ignoring invalid session token", zap.Error(err))
		return c.Next()
	}

	store, err := m.sessions.Store(c.UserContext(), claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return c.Next()
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{SessionID: claims.SessionID, Store: store})
	return c.Next()
}

// CookieName is the name of the console session cookie.
func (m *AuthMiddleware) CookieName() string {
	return m.cookieName
}

func (m *AuthMiddleware) tokenFromRequest(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Cookies(m.cookieName)
}

// PrincipalFromContext retrieves the caller's console session.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil && principal.Store != nil
}

// CurrentRoles returns the caller's roles, empty when anonymous.
func CurrentRoles(c *fiber.Ctx) domain.RoleSet {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return domain.RoleSet{}
	}
	return principal.Store.CurrentRoles()
}
