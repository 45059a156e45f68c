package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/citizen-portal/internal/domain"
	"github.com/spec-kit/citizen-portal/internal/observability"
	apperrors "github.com/spec-kit/citizen-portal/pkg/util/errorutil"
)

func newGateApp(t *testing.T, gate *Gate) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(gate.Handle)
	app.Get("/api/session", gate.RequireSession, func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		return c.SendString(identity.Username)
	})
	app.Get("/*", func(c *fiber.Ctx) error {
		if identity, ok := IdentityFromContext(c); ok {
			return c.SendString("hello " + identity.Username)
		}
		return c.SendString("ok")
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, path, artifact string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if artifact != "" {
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: artifact})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func persisted(t *testing.T, store *SessionStore, exp time.Time) string {
	t.Helper()
	artifact, err := store.Persist(sampleIdentity(t, domain.RoleCitizen, exp))
	require.NoError(t, err)
	return artifact
}

func TestDecideTransitionTable(t *testing.T) {
	cases := []struct {
		class    RouteClass
		state    SessionState
		action   Action
		location string
	}{
		{RoutePublic, StateNoSession, ActionAllow, ""},
		{RoutePublic, StateValid, ActionRedirect, LandingPath},
		{RoutePublic, StateExpired, ActionAllow, ""},
		{RouteProtected, StateNoSession, ActionRedirect, LoginPath},
		{RouteProtected, StateExpired, ActionRedirect, LoginPath},
		{RouteProtected, StateValid, ActionAllow, ""},
	}
	for _, tc := range cases {
		t.Run(tc.class.String()+"/"+tc.state.String(), func(t *testing.T) {
			d := Decide(tc.class, tc.state)
			assert.Equal(t, tc.action, d.Action)
			assert.Equal(t, tc.location, d.Location)
		})
	}
}

func TestClassifyIsExclusive(t *testing.T) {
	paths := []string{"/", "/login", "/login/", "/register", "/forget-password", "/dashboard", "/dashboard/services/1", "/profile", "/admin/approvals", "/registration"}
	states := []SessionState{StateNoSession, StateValid, StateExpired}

	for _, p := range paths {
		class := Classify(p)
		for _, s := range states {
			d := Decide(class, s)
			allowed := d.Action == ActionAllow
			redirected := d.Action == ActionRedirect && d.Location != ""
			assert.Truef(t, allowed != redirected, "path %s state %s", p, s)
		}
	}

	assert.Equal(t, RoutePublic, Classify("/login"))
	assert.Equal(t, RoutePublic, Classify("/register"))
	assert.Equal(t, RoutePublic, Classify("/forget-password"))
	assert.Equal(t, RouteProtected, Classify("/login/"))
	assert.Equal(t, RouteProtected, Classify("/registration"))
}

func TestMatches(t *testing.T) {
	for _, p := range []string{"/", "/login", "/dashboard", "/dashboard/queue", "/profile", "/settings", "/admin/users", "/middleware-check", "/logout"} {
		assert.Truef(t, Matches(p), "expected %s to be gated", p)
	}
	for _, p := range []string{"/api/session", "/api/auth/register", "/static/app.css", "/_next/data", "/favicon.ico", "/logo.png", "/fonts/a.woff2", "/health/live", "/metrics"} {
		assert.Falsef(t, Matches(p), "expected %s to bypass the gate", p)
	}
	assert.True(t, Matches("/dashboard/logo.png"))
	assert.True(t, Matches("/apix"), "exclusions match whole segments")
	assert.True(t, Matches("/statics/page"))
}

func TestGateExpiryBoundary(t *testing.T) {
	store := newTestStore(t, "session-secret")
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	artifact := persisted(t, store, exp)

	for _, tc := range []struct {
		name    string
		now     time.Time
		allowed bool
	}{
		{"well before", exp.Add(-30 * time.Minute), true},
		{"one millisecond before", exp.Add(-time.Millisecond), true},
		{"exactly at expiry", exp, false},
		{"after expiry", exp.Add(time.Second), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			now := tc.now
			gate := NewGate(store, NewTokenCodec(""), nil, WithClock(func() time.Time { return now }))
			resp := doGet(t, newGateApp(t, gate), "/dashboard", artifact)
			if tc.allowed {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			} else {
				assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
				assert.Equal(t, LoginPath, resp.Header.Get("Location"))
			}
		})
	}
}

func TestGateScenarios(t *testing.T) {
	store := newTestStore(t, "session-secret")
	gate := NewGate(store, NewTokenCodec(""), nil, WithMetrics(observability.NewMetrics()))
	app := newGateApp(t, gate)

	valid := persisted(t, store, time.Now().Add(time.Hour))
	expired := persisted(t, store, time.Now().Add(-time.Hour))

	t.Run("public without session is allowed", func(t *testing.T) {
		resp := doGet(t, app, "/login", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("public with valid session redirects to dashboard", func(t *testing.T) {
		resp := doGet(t, app, "/login", valid)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, LandingPath, resp.Header.Get("Location"))
	})

	t.Run("public with expired session is allowed", func(t *testing.T) {
		resp := doGet(t, app, "/register", expired)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("protected without session redirects to login", func(t *testing.T) {
		resp := doGet(t, app, "/dashboard", "")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, LoginPath, resp.Header.Get("Location"))
	})

	t.Run("protected with expired session redirects to login", func(t *testing.T) {
		resp := doGet(t, app, "/profile", expired)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, LoginPath, resp.Header.Get("Location"))
	})

	t.Run("protected with valid session is allowed", func(t *testing.T) {
		resp := doGet(t, app, "/dashboard", valid)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("tampered artifact is treated as no session", func(t *testing.T) {
		resp := doGet(t, app, "/dashboard", valid+"x")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, LoginPath, resp.Header.Get("Location"))

		resp = doGet(t, app, "/login", valid+"x")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unmatched paths bypass the gate", func(t *testing.T) {
		resp := doGet(t, app, "/static/app.css", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestGateReDerivesExpiryFromAccessToken(t *testing.T) {
	store := newTestStore(t, "session-secret")
	identity := sampleIdentity(t, domain.RoleCitizen, time.Now().Add(-time.Minute))
	identity.ExpiresAt = time.Now().Add(time.Hour).Unix()

	artifact, err := store.Persist(identity)
	require.NoError(t, err)

	gate := NewGate(store, NewTokenCodec(""), nil)
	resp := doGet(t, newGateApp(t, gate), "/dashboard", artifact)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestGateUndecodableAccessTokenIsNoSession(t *testing.T) {
	store := newTestStore(t, "session-secret")
	identity := sampleIdentity(t, domain.RoleCitizen, time.Now().Add(time.Hour))
	identity.AccessToken = "not-a-jwt"

	artifact, err := store.Persist(identity)
	require.NoError(t, err)

	app := newGateApp(t, NewGate(store, NewTokenCodec(""), nil))
	assert.Equal(t, http.StatusSeeOther, doGet(t, app, "/dashboard", artifact).StatusCode)
	assert.Equal(t, http.StatusOK, doGet(t, app, "/login", artifact).StatusCode)
}

func TestGateFailureReturnsStructuredError(t *testing.T) {
	gate := NewGate(nil, NewTokenCodec(""), nil)
	app := newGateApp(t, gate)

	resp := doGet(t, app, "/dashboard", "some-artifact")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}

func TestRequireSessionForAPIRoutes(t *testing.T) {
	store := newTestStore(t, "session-secret")
	app := newGateApp(t, NewGate(store, NewTokenCodec(""), nil))

	resp := doGet(t, app, "/api/session", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doGet(t, app, "/api/session", persisted(t, store, time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateHonorsSessionExpiry(t *testing.T) {
	store := newTestStore(t, "session-secret")
	identity := sampleIdentity(t, domain.RoleCitizen, time.Now().Add(time.Hour))
	identity.ExpiresAt = time.Now().Add(-time.Hour).Unix()

	artifact, err := store.Persist(identity)
	require.NoError(t, err)

	gate := NewGate(store, NewTokenCodec(""), nil)
	resp := doGet(t, newGateApp(t, gate), "/profile", artifact)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))

	now := time.Now()
	assert.Equal(t, StateExpired, gate.State(&identity, now))
}

func TestGateClearsStaleArtifact(t *testing.T) {
	store := newTestStore(t, "session-secret")
	expired := persisted(t, store, time.Now().Add(-time.Minute))

	app := newGateApp(t, NewGate(store, NewTokenCodec(""), nil))
	app.Post("/logout", func(c *fiber.Ctx) error {
		return c.SendString("logged out")
	})

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: expired})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))

	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == DefaultCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared, "stale session cookie should be expired")
	assert.Empty(t, cleared.Value)

	resp = doGet(t, app, "/dashboard", persisted(t, store, time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(fiber.HeaderSetCookie))
}

func TestRequireSessionGateFailure(t *testing.T) {
	gate := NewGate(nil, NewTokenCodec(""), nil)
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		domainErr := apperrors.ToDomainError(err)
		return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
	}})
	app.Get("/api/session", gate.RequireSession, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "some-artifact"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "GATE_FAILURE", string(body))
}
