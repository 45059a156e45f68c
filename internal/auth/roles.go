package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/citizen-portal/internal/domain"
	apperrors "github.com/spec-kit/citizen-portal/pkg/util/errorutil"
)

// RequireRole re-checks the session role server side. Requests without a
// session are sent to the login page.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[identity.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
