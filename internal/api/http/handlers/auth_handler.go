package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/citizen-portal/internal/api/dto"
	"github.com/spec-kit/citizen-portal/internal/auth"
	"github.com/spec-kit/citizen-portal/internal/domain"
	"github.com/spec-kit/citizen-portal/internal/events"
	"github.com/spec-kit/citizen-portal/internal/observability"
	"github.com/spec-kit/citizen-portal/internal/service"
	"github.com/spec-kit/citizen-portal/internal/view"
	apperrors "github.com/spec-kit/citizen-portal/pkg/util/errorutil"
)

const (
	msgUsernameRequired   = "Username is required"
	msgPasswordRequired   = "Password is required"
	msgInvalidCredentials = "Invalid username or password"
	msgRegistered         = "Account created. You can now sign in."
)

type loginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// AuthHandler serves the login, logout and registration pages.
type AuthHandler struct {
	auth         *service.AuthService
	registration *service.RegistrationService
	sessions     *auth.SessionStore
	views        *view.Engine
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
	validate     *validator.Validate
}

// AuthHandlerDeps bundles AuthHandler dependencies.
type AuthHandlerDeps struct {
	Auth         *service.AuthService
	Registration *service.RegistrationService
	Sessions     *auth.SessionStore
	Views        *view.Engine
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(deps AuthHandlerDeps) *AuthHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		auth:         deps.Auth,
		registration: deps.Registration,
		sessions:     deps.Sessions,
		views:        deps.Views,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       logger,
		validate:     validator.New(),
	}
}

// ShowLogin handles GET /login.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	data := view.TemplateData{Title: "Sign in"}
	if c.Query("registered") != "" {
		data.Message = msgRegistered
	}
	return h.views.Render(c, http.StatusOK, "login", data)
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form dto.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, "", msgInvalidCredentials)
	}
	creds := form.Credentials()

	if msg := h.validateLogin(creds); msg != "" {
		return h.renderLogin(c, http.StatusBadRequest, creds.Username, msg)
	}

	identity, err := h.auth.Authenticate(c.UserContext(), creds)
	if err != nil {
		reason := string(domain.ReasonNetworkError)
		var failure *domain.AuthFailure
		if errors.As(err, &failure) {
			reason = string(failure.Reason)
		}
		h.logger.Warn("login failed",
			zap.String("username", creds.Username),
			zap.String("reason", reason),
			zap.String("request_id", observability.RequestID(c)),
			zap.Error(err))
		h.metrics.RecordLogin(reason)
		h.publish(c, events.EventLoginFailed, events.Actor{Username: creds.Username}, reason)
		return h.renderLogin(c, http.StatusUnauthorized, creds.Username, msgInvalidCredentials)
	}

	artifact, err := h.sessions.Persist(*identity)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	h.sessions.SetCookie(c, artifact, identity.ExpiresTime())

	h.metrics.RecordLogin("success")
	h.publish(c, events.EventLoginSucceeded, events.Actor{Username: identity.Username, Role: identity.Role}, "")
	return c.Redirect(auth.LandingPath, fiber.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.sessions.ClearCookie(c)
	if identity, ok := auth.IdentityFromContext(c); ok {
		h.publish(c, events.EventLogout, events.Actor{Username: identity.Username, Role: identity.Role}, "")
	}
	return c.Redirect(auth.LoginPath, fiber.StatusSeeOther)
}

// ShowRegister handles GET /register.
func (h *AuthHandler) ShowRegister(c *fiber.Ctx) error {
	return h.views.Render(c, http.StatusOK, "register", view.TemplateData{Title: "Create account"})
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return h.views.Render(c, http.StatusBadRequest, "register", view.TemplateData{
			Title: "Create account",
			Error: "All fields are required",
		})
	}
	if req.Role == "" {
		req.Role = string(domain.RoleCitizen)
	}

	if _, err := h.registration.Register(c.UserContext(), req.Registration()); err != nil {
		domainErr := apperrors.ToDomainError(err)
		message := domainErr.Message
		if domainErr.Code == "INTERNAL_ERROR" {
			h.logger.Error("registration failed", zap.Error(err))
			message = "Internal server error"
		}
		return h.views.Render(c, domainErr.HTTPStatus, "register", view.TemplateData{
			Title: "Create account",
			Error: message,
			Form:  req.FormValues(),
		})
	}

	h.publish(c, events.EventUserRegistered, events.Actor{Username: req.Username, Role: domain.Role(req.Role)}, "")
	return c.Redirect(auth.LoginPath+"?registered=1", fiber.StatusSeeOther)
}

// ShowForgetPassword handles GET /forget-password.
func (h *AuthHandler) ShowForgetPassword(c *fiber.Ctx) error {
	return h.views.Render(c, http.StatusOK, "forget_password", view.TemplateData{Title: "Forgot password"})
}

func (h *AuthHandler) validateLogin(creds domain.Credentials) string {
	err := h.validate.Struct(loginInput{Username: creds.Username, Password: creds.Password})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ""
	}
	if verrs[0].Field() == "Username" {
		return msgUsernameRequired
	}
	return msgPasswordRequired
}

func (h *AuthHandler) renderLogin(c *fiber.Ctx, status int, username, message string) error {
	return h.views.Render(c, status, "login", view.TemplateData{
		Title: "Sign in",
		Error: message,
		Form:  map[string]string{"username": username},
	})
}

func (h *AuthHandler) publish(c *fiber.Ctx, eventType events.EventType, actor events.Actor, reason string) {
	if h.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType, actor)
	event.Reason = reason
	event.IP = c.IP()
	event.UserAgent = c.Get(fiber.HeaderUserAgent)
	event.RequestID = observability.RequestID(c)
	if err := h.dispatcher.Publish(c.UserContext(), event); err != nil {
		h.logger.Warn("auth event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}
