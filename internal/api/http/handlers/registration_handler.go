package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/citizen-portal/internal/api/dto"
	"github.com/spec-kit/citizen-portal/internal/events"
	"github.com/spec-kit/citizen-portal/internal/observability"
	"github.com/spec-kit/citizen-portal/internal/service"
	apperrors "github.com/spec-kit/citizen-portal/pkg/util/errorutil"
)

// RegistrationHandler proxies JSON registrations to the identity service.
type RegistrationHandler struct {
	registration *service.RegistrationService
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// NewRegistrationHandler constructs handler.
func NewRegistrationHandler(registration *service.RegistrationService, dispatcher events.Dispatcher, logger *zap.Logger) *RegistrationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationHandler{registration: registration, dispatcher: dispatcher, logger: logger}
}

// Register handles POST /api/auth/register. Errors keep the flat
// {"error": message} shape existing clients expect.
func (h *RegistrationHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	user, err := h.registration.Register(c.UserContext(), req.Registration())
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		message := domainErr.Message
		if domainErr.Code == "INTERNAL_ERROR" {
			h.logger.Error("registration proxy failed",
				zap.String("request_id", observability.RequestID(c)),
				zap.Error(err))
			message = "Internal server error"
		}
		return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": message})
	}

	if h.dispatcher != nil {
		event := events.NewEvent(events.EventUserRegistered, events.Actor{Username: req.Username})
		event.IP = c.IP()
		event.RequestID = observability.RequestID(c)
		if err := h.dispatcher.Publish(c.UserContext(), event); err != nil {
			h.logger.Warn("auth event handler failed", zap.Error(err))
		}
	}

	return c.Status(http.StatusCreated).JSON(dto.RegisterResponse{
		Message: "User registered successfully",
		User:    user,
	})
}
