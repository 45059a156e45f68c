package service

import (
	"context"
	"errors"

	"github.com/spec-kit/citizen-portal/internal/auth"
	"github.com/spec-kit/citizen-portal/internal/domain"
	"github.com/spec-kit/citizen-portal/internal/identity"
)

// IdentityClient is the subset of the identity service used by the portal.
type IdentityClient interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (*identity.TokenPair, error)
	Register(ctx context.Context, reg domain.Registration) (domain.RegisteredUser, error)
}

// AuthService exchanges credentials for a session identity.
type AuthService struct {
	client IdentityClient
	codec  *auth.TokenCodec
}

// NewAuthService builds the service.
func NewAuthService(client IdentityClient, codec *auth.TokenCodec) *AuthService {
	return &AuthService{client: client, codec: codec}
}

// Authenticate performs a single round trip to the identity service and
// decodes the returned access token. Any failure yields a *domain.AuthFailure
// whose reason is meant for logs only.
func (s *AuthService) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.SessionIdentity, error) {
	pair, err := s.client.Authenticate(ctx, creds)
	if err != nil {
		return nil, classifyAuthError(err)
	}

	payload, err := s.codec.Decode(pair.AccessToken)
	if err != nil {
		return nil, domain.NewAuthFailure(domain.ReasonMalformedToken, err)
	}
	if payload.Subject == "" {
		return nil, domain.NewAuthFailure(domain.ReasonMalformedToken, errors.New("access token has no subject"))
	}

	return &domain.SessionIdentity{
		Subject:      payload.Subject,
		Username:     creds.Username,
		Role:         payload.Role,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    payload.ExpiresAt,
	}, nil
}

func classifyAuthError(err error) error {
	var statusErr *identity.StatusError
	switch {
	case errors.As(err, &statusErr):
		return domain.NewAuthFailure(domain.ReasonInvalidCredentials, err)
	case errors.Is(err, identity.ErrInvalidResponse):
		return domain.NewAuthFailure(domain.ReasonMalformedToken, err)
	default:
		return domain.NewAuthFailure(domain.ReasonNetworkError, err)
	}
}
