package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/citizen-portal/internal/domain"
	"github.com/spec-kit/citizen-portal/internal/identity"
	apperrors "github.com/spec-kit/citizen-portal/pkg/util/errorutil"
)

func validRegistration() domain.Registration {
	return domain.Registration{
		Username: "carol",
		Password: "s3cret",
		Email:    "carol@example.com",
		Phone:    "0912345678",
		Role:     domain.RoleCitizen,
	}
}

func TestRegistrationValidation(t *testing.T) {
	svc := NewRegistrationService(&fakeIdentity{})

	cases := []struct {
		name    string
		mutate  func(r *domain.Registration)
		message string
	}{
		{"missing username", func(r *domain.Registration) { r.Username = "" }, "All fields are required"},
		{"blank password", func(r *domain.Registration) { r.Password = "" }, "All fields are required"},
		{"missing role and bad email", func(r *domain.Registration) { r.Role = ""; r.Email = "x" }, "All fields are required"},
		{"bad email", func(r *domain.Registration) { r.Email = "carol.example.com" }, "Invalid email format"},
		{"short phone", func(r *domain.Registration) { r.Phone = "09123" }, "Invalid phone number format"},
		{"phone without leading zero", func(r *domain.Registration) { r.Phone = "9123456789" }, "Invalid phone number format"},
		{"bad email wins over bad phone", func(r *domain.Registration) { r.Email = "nope"; r.Phone = "1" }, "Invalid email format"},
		{"unknown role", func(r *domain.Registration) { r.Role = "SUPERUSER" }, "Invalid role"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := validRegistration()
			tc.mutate(&reg)

			err := svc.Validate(reg)
			domainErr := apperrors.ToDomainError(err)
			require.NotNil(t, domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
			assert.Equal(t, tc.message, domainErr.Message)
		})
	}

	require.NoError(t, svc.Validate(validRegistration()))
}

func TestRegisterForwardsValidRegistration(t *testing.T) {
	client := &fakeIdentity{user: domain.RegisteredUser{"username": "carol"}}
	svc := NewRegistrationService(client)

	reg := validRegistration()
	reg.Username = "  carol "
	user, err := svc.Register(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, "carol", user["username"])
	assert.Equal(t, "carol", client.lastReg.Username)
}

func TestRegisterDoesNotForwardInvalidRegistration(t *testing.T) {
	client := &fakeIdentity{}
	reg := validRegistration()
	reg.Phone = "123"

	_, err := NewRegistrationService(client).Register(context.Background(), reg)
	require.Error(t, err)
	assert.Equal(t, 0, client.calls)
}

func TestRegisterUpstreamErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"conflict with message", &identity.StatusError{StatusCode: http.StatusConflict, Message: "Username already exists"}, http.StatusConflict, "Username already exists"},
		{"rejection without message", &identity.StatusError{StatusCode: http.StatusBadRequest}, http.StatusBadRequest, "Registration failed"},
		{"transport failure", fmt.Errorf("%w: %v", identity.ErrUnavailable, errTransport), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistrationService(&fakeIdentity{err: tc.err}).Register(context.Background(), validRegistration())
			var domainErr *apperrors.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tc.status, domainErr.HTTPStatus)
			assert.Equal(t, tc.message, domainErr.Message)
		})
	}
}
