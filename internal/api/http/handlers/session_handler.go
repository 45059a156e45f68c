package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/citizen-portal/internal/api/dto"
	"github.com/spec-kit/citizen-portal/internal/auth"
	"github.com/spec-kit/citizen-portal/internal/service"
	apperrors "github.com/spec-kit/citizen-portal/pkg/util/errorutil"
)

// SessionHandler exposes the current session to scripts. Routes are guarded
// by Gate.RequireSession.
type SessionHandler struct{}

// NewSessionHandler constructs handler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Session handles GET /api/session.
func (h *SessionHandler) Session(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	return c.JSON(dto.SessionResponse{
		Username:  identity.Username,
		Role:      identity.Role,
		Dashboard: string(service.DashboardFor(identity.Role)),
		ExpiresAt: identity.ExpiresAt,
	})
}

// Navigation handles GET /api/navigation.
func (h *SessionHandler) Navigation(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	menu := service.MenuFor(identity.Role)
	return c.JSON(dto.NavigationResponse{Label: menu.Label, Items: menu.Items})
}
