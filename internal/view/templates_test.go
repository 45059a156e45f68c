package view

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/citizen-portal/internal/domain"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err, "Templates should parse without error")
	for _, name := range []string{"login", "register", "forget_password", "citizen_dashboard", "admin_dashboard", "profile", "settings", "approvals"} {
		assert.Truef(t, engine.Has(name), "missing page %s", name)
	}
	assert.False(t, engine.Has("nope"))
}

func renderBody(t *testing.T, engine *Engine, status int, name string, data TemplateData) (int, string) {
	t.Helper()
	app := fiber.New()
	app.Get("/*", func(c *fiber.Ctx) error {
		return engine.Render(c, status, name, data)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	return resp.StatusCode, string(body)
}

func TestRenderLoginWithError(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	status, body := renderBody(t, engine, http.StatusUnauthorized, "login", TemplateData{
		Title: "Sign in",
		Error: "Invalid username or password",
		Form:  map[string]string{"username": "<alice>"},
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "Invalid username or password")
	assert.Contains(t, body, "&lt;alice&gt;")
	assert.NotContains(t, body, "Sign out")
}

func TestRenderDashboardWithMenu(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	menu := &domain.Menu{Label: "Main Menu", Items: []domain.MenuItem{{Title: "Dashboard", URL: "/dashboard"}}}
	_, body := renderBody(t, engine, http.StatusOK, "citizen_dashboard", TemplateData{
		Title:    "Dashboard",
		Identity: &domain.SessionIdentity{Username: "alice", Role: domain.RoleCitizen},
		Menu:     menu,
	})
	assert.Contains(t, body, "Main Menu")
	assert.Contains(t, body, `class="active"`)
	assert.Contains(t, body, "Welcome back, alice.")
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return engine.Render(c, http.StatusOK, "missing", TemplateData{})
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
