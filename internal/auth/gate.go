package auth

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/citizen-portal/internal/domain"
	"github.com/spec-kit/citizen-portal/internal/observability"
	apperrors "github.com/spec-kit/citizen-portal/pkg/util/errorutil"
)

const (
	// LoginPath is where unauthenticated visitors are sent.
	LoginPath = "/login"
	// LandingPath is where authenticated visitors of public pages are sent.
	LandingPath = "/dashboard"

	identityKey = "session_identity"
)

// ErrGateFailure wraps unexpected conditions while reading a session.
var ErrGateFailure = errors.New("session gate failure")

// RouteClass separates pages anyone may see from pages requiring a session.
type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteProtected
)

func (r RouteClass) String() string {
	if r == RoutePublic {
		return "public"
	}
	return "protected"
}

// SessionState is the gate's view of the caller's session.
type SessionState int

const (
	StateNoSession SessionState = iota
	StateValid
	StateExpired
)

func (s SessionState) String() string {
	switch s {
	case StateValid:
		return "valid-session"
	case StateExpired:
		return "expired-session"
	default:
		return "no-session"
	}
}

// Action is what the gate does with a request.
type Action int

const (
	ActionAllow Action = iota
	ActionRedirect
)

func (a Action) String() string {
	if a == ActionAllow {
		return "allow"
	}
	return "redirect"
}

// Decision is the outcome of the transition table.
type Decision struct {
	Action   Action
	Location string
}

var publicPaths = map[string]struct{}{
	"/login":           {},
	"/forget-password": {},
	"/register":        {},
}

var protectedPrefixes = []string{"/middleware-check", "/dashboard", "/profile", "/settings", "/admin"}

var excludedPrefixes = []string{"/api", "/_next", "/static", "/health", "/metrics"}

var assetExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".svg": {}, ".webp": {}, ".gif": {},
	".ico": {}, ".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {},
}

// Classify returns the route class of a request path.
func Classify(p string) RouteClass {
	if _, ok := publicPaths[p]; ok {
		return RoutePublic
	}
	return RouteProtected
}

// Matches reports whether the gate evaluates the path at all. Static assets,
// API routes and operational endpoints bypass it.
func Matches(p string) bool {
	for _, prefix := range protectedPrefixes {
		if hasSegmentPrefix(p, prefix) {
			return true
		}
	}
	for _, prefix := range excludedPrefixes {
		if hasSegmentPrefix(p, prefix) {
			return false
		}
	}
	if p == "/favicon.ico" {
		return false
	}
	if _, ok := assetExtensions[strings.ToLower(path.Ext(p))]; ok {
		return false
	}
	return true
}

func hasSegmentPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// Decide applies the transition table. Exactly one row matches any input.
func Decide(class RouteClass, state SessionState) Decision {
	switch class {
	case RoutePublic:
		if state == StateValid {
			return Decision{Action: ActionRedirect, Location: LandingPath}
		}
		return Decision{Action: ActionAllow}
	default:
		if state == StateValid {
			return Decision{Action: ActionAllow}
		}
		return Decision{Action: ActionRedirect, Location: LoginPath}
	}
}

// Gate runs in front of every matched page request.
type Gate struct {
	sessions *SessionStore
	codec    *TokenCodec
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// GateOption customizes a Gate.
type GateOption func(*Gate)

// WithClock replaces the wall clock used for expiry checks.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		g.now = now
	}
}

// WithMetrics records every decision.
func WithMetrics(m *observability.Metrics) GateOption {
	return func(g *Gate) {
		g.metrics = m
	}
}

// NewGate constructs the request gate.
func NewGate(sessions *SessionStore, codec *TokenCodec, logger *zap.Logger, opts ...GateOption) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{sessions: sessions, codec: codec, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State derives the session state. Expiry is re-read from the access token
// and the earlier of it and the session's own expiry wins.
func (g *Gate) State(identity *domain.SessionIdentity, now time.Time) SessionState {
	if identity == nil {
		return StateNoSession
	}
	payload, err := g.codec.Decode(identity.AccessToken)
	if err != nil {
		return StateNoSession
	}
	if now.UnixMilli() >= min(identity.ExpiresAt, payload.ExpiresAt)*1000 {
		return StateExpired
	}
	return StateValid
}

// Resolve reads the caller's session. Invalid artifacts resolve to no-session;
// any other failure is returned wrapped in ErrGateFailure.
func (g *Gate) Resolve(c *fiber.Ctx) (identity *domain.SessionIdentity, state SessionState, err error) {
	defer func() {
		if r := recover(); r != nil {
			identity, state = nil, StateNoSession
			err = fmt.Errorf("%w: panic: %v", ErrGateFailure, r)
		}
	}()

	artifact := g.sessions.ArtifactFromRequest(c)
	if artifact == "" {
		return nil, StateNoSession, nil
	}
	identity, err = g.sessions.Read(artifact)
	if err != nil {
		if errors.Is(err, ErrInvalidArtifact) {
			g.logger.Debug("discarding invalid session artifact", zap.Error(err))
			return nil, StateNoSession, nil
		}
		return nil, StateNoSession, fmt.Errorf("%w: %v", ErrGateFailure, err)
	}
	state = g.State(identity, g.now())
	if state != StateValid {
		return nil, state, nil
	}
	return identity, state, nil
}

// Handle is the fiber middleware.
func (g *Gate) Handle(c *fiber.Ctx) error {
	p := c.Path()
	if !Matches(p) {
		return c.Next()
	}

	identity, state, err := g.Resolve(c)
	if err != nil {
		g.logger.Error("session gate failure", zap.String("path", p), zap.Error(err))
		g.metrics.RecordGateDecision(Classify(p).String(), state.String(), "error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "session gate failure",
			"message": "unable to evaluate session",
		})
	}

	class := Classify(p)
	decision := Decide(class, state)
	g.metrics.RecordGateDecision(class.String(), state.String(), decision.Action.String())

	// Stale or unreadable artifacts are dropped so the browser stops sending them.
	if state != StateValid && g.sessions.ArtifactFromRequest(c) != "" {
		g.sessions.ClearCookie(c)
	}

	if decision.Action == ActionRedirect {
		return c.Redirect(decision.Location, fiber.StatusSeeOther)
	}
	if identity != nil {
		c.Locals(identityKey, identity)
	}
	return c.Next()
}

// RequireSession guards API routes, which the page gate does not match.
func (g *Gate) RequireSession(c *fiber.Ctx) error {
	identity, _, err := g.Resolve(c)
	if err != nil {
		g.logger.Error("session gate failure", zap.String("path", c.Path()), zap.Error(err))
		return apperrors.NewGateFailure(err)
	}
	if identity == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "session required")
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the identity stored by the gate.
func IdentityFromContext(c *fiber.Ctx) (*domain.SessionIdentity, bool) {
	identity, ok := c.Locals(identityKey).(*domain.SessionIdentity)
	return identity, ok && identity != nil
}
