package service

import (
	"context"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/citizen-portal/internal/domain"
	"github.com/spec-kit/citizen-portal/internal/identity"
)

// fakeIdentity is an in-process IdentityClient.
type fakeIdentity struct {
	pair     *identity.TokenPair
	user     domain.RegisteredUser
	err      error
	calls    int
	lastReg  domain.Registration
	lastCred domain.Credentials
}

func (f *fakeIdentity) Authenticate(_ context.Context, creds domain.Credentials) (*identity.TokenPair, error) {
	f.calls++
	f.lastCred = creds
	if f.err != nil {
		return nil, f.err
	}
	return f.pair, nil
}

func (f *fakeIdentity) Register(_ context.Context, reg domain.Registration) (domain.RegisteredUser, error) {
	f.calls++
	f.lastReg = reg
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

var errTransport = errors.New("connection refused")

func accessToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("issuer-key"))
	require.NoError(t, err)
	return token
}

func futureExp() int64 {
	return time.Now().Add(time.Hour).Unix()
}
