package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/citizen-portal/internal/domain"
	apperrors "github.com/spec-kit/citizen-portal/pkg/util/errorutil"
)

func TestRequireRole(t *testing.T) {
	newApp := func(identity *domain.SessionIdentity) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		}})
		app.Use(func(c *fiber.Ctx) error {
			if identity != nil {
				c.Locals(identityKey, identity)
			}
			return c.Next()
		})
		app.Get("/admin/users", RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
			return c.SendStatus(http.StatusOK)
		})
		return app
	}

	for _, tc := range []struct {
		name     string
		identity *domain.SessionIdentity
		status   int
	}{
		{"admin passes", &domain.SessionIdentity{Username: "root", Role: domain.RoleAdmin}, http.StatusOK},
		{"citizen is forbidden", &domain.SessionIdentity{Username: "alice", Role: domain.RoleCitizen}, http.StatusForbidden},
		{"no session redirects", nil, http.StatusSeeOther},
	} {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := newApp(tc.identity).Test(httptest.NewRequest(http.MethodGet, "/admin/users", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
