package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/claims-console/internal/api/dto"
	"github.com/spec-kit/claims-console/internal/auth"
	"github.com/spec-kit/claims-console/internal/domain"
	"github.com/spec-kit/claims-console/internal/menu"
	"github.com/spec-kit/claims-console/internal/observability"
	"github.com/spec-kit/claims-console/internal/service"
	apperrors "github.com/spec-kit/claims-console/pkg/util"
)

// ConsoleHandler serves identity, navigation and gate decisions to the console.
type ConsoleHandler struct {
	sessions *service.SessionService
	audit    *service.AuditService
	tree     []menu.Node
	metrics  *observability.Metrics
}

// NewConsoleHandler constructs handler.
func NewConsoleHandler(sessions *service.SessionService, audit *service.AuditService, tree []menu.Node, metrics *observability.Metrics) *ConsoleHandler {
	return &ConsoleHandler{sessions: sessions, audit: audit, tree: tree, metrics: metrics}
}

// Me handles GET /api/me.
func (h *ConsoleHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewNoAccess()
	}
	identity, ok := principal.Store.Identity()
	if !ok {
		return apperrors.NewNoAccess()
	}
	return c.JSON(fiber.Map{"data": dto.NewIdentityResponse(identity)})
}

// Navigation handles GET /api/navigation.
func (h *ConsoleHandler) Navigation(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return c.JSON(fiber.Map{"data": dto.NewMenu(menu.Filter(h.tree, nil))})
	}

	nodes, err := h.sessions.Menu(c.UserContext(), principal.SessionID)
	if err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			return c.JSON(fiber.Map{"data": dto.NewMenu(menu.Filter(h.tree, nil))})
		}
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMenu(nodes)})
}

// Access handles GET /api/access?roles=a,b.
func (h *ConsoleHandler) Access(c *fiber.Ctx) error {
	var raw []string
	for _, part := range strings.Split(c.Query("roles"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			raw = append(raw, part)
		}
	}

	required, unknown := domain.ParseRoleSet(raw)
	if len(unknown) > 0 {
		return apperrors.NewValidationError("unknown roles", map[string]any{"roles": unknown})
	}

	allowed := auth.CanAccess(required, auth.CurrentRoles(c))
	h.metrics.RecordDecision("access:"+required.String(), allowed)
	return c.JSON(fiber.Map{"data": dto.AccessResponse{Allowed: allowed}})
}

// Capabilities handles GET /api/capabilities.
func (h *ConsoleHandler) Capabilities(c *fiber.Ctx) error {
	current := auth.CurrentRoles(c)
	capabilities := make(map[string]bool)
	for _, name := range auth.ActionNames() {
		capabilities[name] = auth.CanAccessAction(name, current)
	}
	return c.JSON(fiber.Map{"data": capabilities})
}

// Page handles GET /console/* once RequireRoute admitted the caller.
func (h *ConsoleHandler) Page(c *fiber.Ctx) error {
	route, ok := auth.RouteFromContext(c)
	if !ok {
		return apperrors.NewNoAccess()
	}
	h.metrics.RecordDecision(route.Path, true)
	return c.JSON(fiber.Map{"data": dto.PageResponse{Path: route.Path, Name: route.Name}})
}

// Activity handles GET /api/me/activity.
func (h *ConsoleHandler) Activity(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	entries, err := h.audit.Activity(c.UserContext(), principal.SessionID, c.QueryInt("limit", 50))
	if err != nil {
		if errors.Is(err, service.ErrAuditDisabled) {
			return apperrors.NewNotFound("access audit", nil)
		}
		return err
	}

	out := make([]dto.ActivityEntry, 0, len(entries))
	for _, entry := range entries {
		roles := entry.Roles
		if roles == nil {
			roles = []string{}
		}
		out = append(out, dto.ActivityEntry{
			EventType:  entry.EventType,
			Subject:    entry.Subject,
			UserID:     entry.UserID,
			Roles:      roles,
			OccurredAt: entry.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(fiber.Map{"data": out})
}
