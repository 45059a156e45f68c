package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role differentiates administrators from citizens.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCitizen Role = "CITIZEN"
)

// ParseRole normalizes a role claim. Missing or unknown values fall back to
// RoleCitizen.
func ParseRole(raw string) Role {
	if Role(strings.ToUpper(strings.TrimSpace(raw))) == RoleAdmin {
		return RoleAdmin
	}
	return RoleCitizen
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleCitizen
}

// Credentials is a username/password pair submitted at login. It is never
// persisted.
type Credentials struct {
	Username string
	Password string
}

// TokenPayload is the decoded body of an access token.
type TokenPayload struct {
	Subject   string
	Role      Role
	ExpiresAt int64
}

// SessionIdentity is the normalized identity carried by the session artifact.
type SessionIdentity struct {
	Subject      string
	Username     string
	Role         Role
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// ExpiresTime returns the expiry as a time.Time.
func (s SessionIdentity) ExpiresTime() time.Time {
	return time.Unix(s.ExpiresAt, 0)
}

// IsAdmin reports whether the identity carries the administrative role.
func (s SessionIdentity) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// FailureReason classifies authentication failures.
type FailureReason string

const (
	ReasonInvalidCredentials FailureReason = "invalid-credentials"
	ReasonMalformedToken     FailureReason = "malformed-token"
	ReasonNetworkError       FailureReason = "network-error"
)

// AuthFailure is returned when a login attempt cannot produce an identity.
// The reason is for logs only; end users always see a generic message.
type AuthFailure struct {
	Reason FailureReason
	Err    error
}

func (e *AuthFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed (%s)", e.Reason)
}

func (e *AuthFailure) Unwrap() error {
	return e.Err
}

// NewAuthFailure constructs an AuthFailure.
func NewAuthFailure(reason FailureReason, err error) *AuthFailure {
	return &AuthFailure{Reason: reason, Err: err}
}
