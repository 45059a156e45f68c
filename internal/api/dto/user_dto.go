package dto

import (
	"strings"

	"github.com/spec-kit/citizen-portal/internal/domain"
)

// LoginForm is the POST /login payload, accepted as a form or JSON.
type LoginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Credentials trims the username and converts the form.
func (f LoginForm) Credentials() domain.Credentials {
	return domain.Credentials{Username: strings.TrimSpace(f.Username), Password: f.Password}
}

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone" json:"phone"`
	Role     string `form:"role" json:"role"`
}

// Registration converts the request.
func (r RegisterRequest) Registration() domain.Registration {
	return domain.Registration{
		Username: r.Username,
		Password: r.Password,
		Email:    r.Email,
		Phone:    r.Phone,
		Role:     domain.Role(strings.TrimSpace(r.Role)),
	}
}

// FormValues echoes non-secret fields back into a re-rendered form.
func (r RegisterRequest) FormValues() map[string]string {
	return map[string]string{"username": r.Username, "email": r.Email, "phone": r.Phone}
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	Message string                `json:"message"`
	User    domain.RegisteredUser `json:"user,omitempty"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	Dashboard string      `json:"dashboard"`
	ExpiresAt int64       `json:"expires_at"`
}

// NavigationResponse is the menu for the current role.
type NavigationResponse struct {
	Label string            `json:"label"`
	Items []domain.MenuItem `json:"items"`
}
