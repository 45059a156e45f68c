package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/citizen-portal/internal/domain"
	"github.com/spec-kit/citizen-portal/internal/identity"
	apperrors "github.com/spec-kit/citizen-portal/pkg/util/errorutil"
)

var phonePattern = regexp.MustCompile(`^0[0-9]{9}$`)

// registrationInput mirrors domain.Registration with validation rules.
type registrationInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
	Email    string `validate:"required,email"`
	Phone    string `validate:"required,local_phone"`
	Role     string `validate:"required,oneof=ADMIN CITIZEN"`
}

// RegistrationService validates sign-ups and forwards them to the identity
// service.
type RegistrationService struct {
	client   IdentityClient
	validate *validator.Validate
}

// NewRegistrationService builds the service.
func NewRegistrationService(client IdentityClient) *RegistrationService {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("local_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &RegistrationService{client: client, validate: v}
}

// Validate checks a registration and returns a validation error carrying the
// first failing rule's message.
func (s *RegistrationService) Validate(reg domain.Registration) error {
	in := registrationInput{
		Username: strings.TrimSpace(reg.Username),
		Password: reg.Password,
		Email:    strings.TrimSpace(reg.Email),
		Phone:    strings.TrimSpace(reg.Phone),
		Role:     string(reg.Role),
	}
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewInternalError(err)
	}
	// Any missing field wins over format problems.
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperrors.NewValidationError("All fields are required", nil)
		}
	}
	switch verrs[0].Field() {
	case "Email":
		return apperrors.NewValidationError("Invalid email format", map[string]any{"field": "email"})
	case "Phone":
		return apperrors.NewValidationError("Invalid phone number format", map[string]any{"field": "phone"})
	default:
		return apperrors.NewValidationError("Invalid role", map[string]any{"field": "role"})
	}
}

// Register validates and forwards the registration. Upstream rejections keep
// the upstream status and message.
func (s *RegistrationService) Register(ctx context.Context, reg domain.Registration) (domain.RegisteredUser, error) {
	if err := s.Validate(reg); err != nil {
		return nil, err
	}
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Phone = strings.TrimSpace(reg.Phone)

	user, err := s.client.Register(ctx, reg)
	if err != nil {
		var statusErr *identity.StatusError
		if errors.As(err, &statusErr) {
			msg := statusErr.Message
			if msg == "" {
				msg = "Registration failed"
			}
			return nil, apperrors.NewUpstreamError(statusErr.StatusCode, msg)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}
