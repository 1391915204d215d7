package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/claims-console/internal/api/dto"
	"github.com/spec-kit/claims-console/internal/auth"
	"github.com/spec-kit/claims-console/internal/service"
	apperrors "github.com/spec-kit/claims-console/pkg/util"
)

// CookieSettings controls the console session cookie.
type CookieSettings struct {
	Name   string
	Secure bool
}

// AuthHandler exposes the console login, logout and refresh endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	cookie CookieSettings
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{auth: authService, cookie: cookie}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setCookie(c, result.Token, result.ExpiresAt)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"identity": dto.NewIdentityResponse(result.Identity),
			"auth":     dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}

// Logout handles POST /auth/logout. Calling it without a session succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		if err := h.auth.Logout(c.UserContext(), principal.SessionID); err != nil {
			return err
		}
	}
	h.clearCookie(c)
	return c.SendStatus(http.StatusNoContent)
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	identity, err := h.auth.Refresh(c.UserContext(), principal.SessionID)
	if err != nil {
		h.clearCookie(c)
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIdentityResponse(identity)})
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
