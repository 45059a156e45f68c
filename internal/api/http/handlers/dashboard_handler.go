package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/citizen-portal/internal/auth"
	"github.com/spec-kit/citizen-portal/internal/domain"
	"github.com/spec-kit/citizen-portal/internal/service"
	"github.com/spec-kit/citizen-portal/internal/view"
)

// DashboardHandler renders role-dependent pages.
type DashboardHandler struct {
	views *view.Engine
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(views *view.Engine) *DashboardHandler {
	return &DashboardHandler{views: views}
}

// Root handles GET /.
func (h *DashboardHandler) Root(c *fiber.Ctx) error {
	return c.Redirect(auth.LandingPath, fiber.StatusSeeOther)
}

// Dashboard handles GET /dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return c.Redirect(auth.LoginPath, fiber.StatusSeeOther)
	}

	page := "citizen_dashboard"
	title := "Dashboard"
	if service.DashboardFor(identity.Role) == domain.DashboardAdmin {
		page = "admin_dashboard"
		title = "Administration"
	}
	return h.render(c, page, title, identity)
}

// Profile handles GET /profile.
func (h *DashboardHandler) Profile(c *fiber.Ctx) error {
	return h.page(c, "profile", "Profile")
}

// Settings handles GET /settings.
func (h *DashboardHandler) Settings(c *fiber.Ctx) error {
	return h.page(c, "settings", "Settings")
}

// Approvals handles GET /admin/approvals. The route is guarded by
// auth.RequireRole(domain.RoleAdmin).
func (h *DashboardHandler) Approvals(c *fiber.Ctx) error {
	return h.page(c, "approvals", "Approvals")
}

func (h *DashboardHandler) page(c *fiber.Ctx, name, title string) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return c.Redirect(auth.LoginPath, fiber.StatusSeeOther)
	}
	return h.render(c, name, title, identity)
}

func (h *DashboardHandler) render(c *fiber.Ctx, name, title string, identity *domain.SessionIdentity) error {
	menu := service.MenuFor(identity.Role)
	return h.views.Render(c, http.StatusOK, name, view.TemplateData{
		Title:    title,
		Identity: identity,
		Menu:     &menu,
	})
}
