package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/spec-kit/citizen-portal/internal/domain"
)

const (
	// DefaultCookieName carries the session artifact.
	DefaultCookieName = "portal_session"

	sessionKeyInfo = "portal-session-artifact"
)

var (
	// ErrInvalidArtifact means the artifact is tampered, signed with another
	// secret, or malformed. Callers treat it as "no session".
	ErrInvalidArtifact = errors.New("invalid session artifact")
	// ErrStoreUnavailable means the store has no signing key.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrMissingSecret is returned when the store is built without a secret.
	ErrMissingSecret = errors.New("session secret must be provided")
)

type sessionClaims struct {
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
	AccessToken string      `json:"access_token"`
	jwt.RegisteredClaims
}

// SessionStore persists identities inside a signed cookie artifact. There is
// no server-side session table: rotating the secret invalidates every session.
type SessionStore struct {
	key        []byte
	cookieName string
	secure     bool
	parser     *jwt.Parser
	now        func() time.Time
}

// SessionOption customizes a SessionStore.
type SessionOption func(*SessionStore)

// WithCookie sets the cookie name and Secure flag.
func WithCookie(name string, secure bool) SessionOption {
	return func(s *SessionStore) {
		if name != "" {
			s.cookieName = name
		}
		s.secure = secure
	}
}

// NewSessionStore derives the artifact signing key from secret.
func NewSessionStore(secret string, opts ...SessionOption) (*SessionStore, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sessionKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}

	s := &SessionStore{
		key:        key,
		cookieName: DefaultCookieName,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CookieName returns the cookie carrying the artifact.
func (s *SessionStore) CookieName() string {
	return s.cookieName
}

// Persist signs the identity into an opaque artifact.
func (s *SessionStore) Persist(identity domain.SessionIdentity) (string, error) {
	if s == nil || len(s.key) == 0 {
		return "", ErrStoreUnavailable
	}
	claims := &sessionClaims{
		Username:    identity.Username,
		Role:        identity.Role,
		AccessToken: identity.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			ExpiresAt: jwt.NewNumericDate(identity.ExpiresTime()),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	artifact, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign session artifact: %w", err)
	}
	return artifact, nil
}

// Read verifies an artifact and reconstructs the identity it carries. Expiry
// is not enforced here; the gate owns that decision.
func (s *SessionStore) Read(artifact string) (*domain.SessionIdentity, error) {
	if s == nil || len(s.key) == 0 {
		return nil, ErrStoreUnavailable
	}
	if artifact == "" {
		return nil, ErrInvalidArtifact
	}

	claims := &sessionClaims{}
	parsed, err := s.parser.ParseWithClaims(artifact, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if !parsed.Valid || claims.ExpiresAt == nil || !claims.Role.IsValid() {
		return nil, ErrInvalidArtifact
	}

	return &domain.SessionIdentity{
		Subject:     claims.Subject,
		Username:    claims.Username,
		Role:        claims.Role,
		AccessToken: claims.AccessToken,
		ExpiresAt:   claims.ExpiresAt.Unix(),
	}, nil
}

// ArtifactFromRequest returns the raw artifact cookie, or "" when absent.
func (s *SessionStore) ArtifactFromRequest(c *fiber.Ctx) string {
	return c.Cookies(s.cookieName)
}

// SetCookie hands the artifact back to the client.
func (s *SessionStore) SetCookie(c *fiber.Ctx, artifact string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cookieName,
		Value:    artifact,
		Path:     "/",
		Expires:  expiresAt,
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the artifact cookie.
func (s *SessionStore) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
