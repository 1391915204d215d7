package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/claims-console/internal/domain"
	apperrors "github.com/spec-kit/claims-console/pkg/util"
)

// RequireAuthenticated rejects callers without an identity.
func (m *AuthMiddleware) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.Store.Authenticated() {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRoles admits callers holding one of required. Everyone else, anonymous or
// not, gets the generic no-access placeholder.
func (m *AuthMiddleware) RequireRoles(subject string, required domain.RoleSet) fiber.Handler {
	required = required.Clone()
	return func(c *fiber.Ctx) error {
		current := CurrentRoles(c)
		if CanAccess(required, current) {
			return c.Next()
		}
		m.deny(c, subject, current)
		return apperrors.NewNoAccess()
	}
}

// RequireRoute gates a console page through the route table. The console layout
// itself requires All; unknown paths get the same placeholder as denied ones.
func (m *AuthMiddleware) RequireRoute(param string) fiber.Handler {
	layout := All()
	return func(c *fiber.Ctx) error {
		path := "/" + c.Params(param)
		current := CurrentRoles(c)

		route, ok := LookupRoute(path)
		if !ok {
			return apperrors.NewNoAccess()
		}
		if !CanAccess(layout, current) || !CanAccess(route.Roles, current) {
			m.deny(c, route.Path, current)
			return apperrors.NewNoAccess()
		}
		c.Locals(routeKey, route)
		return c.Next()
	}
}

const routeKey = "auth_route"

// RouteFromContext returns the route admitted by RequireRoute.
func RouteFromContext(c *fiber.Ctx) (Route, bool) {
	route, ok := c.Locals(routeKey).(Route)
	return route, ok
}

// Deny records a denied inline decision taken by a handler.
func (m *AuthMiddleware) Deny(c *fiber.Ctx, subject string, current domain.RoleSet) {
	m.deny(c, subject, current)
}

func (m *AuthMiddleware) deny(c *fiber.Ctx, subject string, current domain.RoleSet) {
	if m.onDeny != nil {
		m.onDeny(c, subject, current)
	}
}
