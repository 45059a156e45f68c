package auth

import (
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/citizen-portal/internal/domain"
)

// ErrDecode signals that an access token could not be turned into a payload.
var ErrDecode = errors.New("access token decode failed")

var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// accessClaims describes the identity service's access token payload.
type accessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec decodes access tokens issued by the identity service. It never
// issues tokens.
//
// Without a verification key the codec only checks structure: the signature
// segment is not verified.
type TokenCodec struct {
	verifyKey []byte
	parser    *jwt.Parser
}

// NewTokenCodec builds a codec. An empty verifyKey selects structural decoding.
func NewTokenCodec(verifyKey string) *TokenCodec {
	tc := &TokenCodec{
		parser: jwt.NewParser(jwt.WithValidMethods(hmacMethods), jwt.WithoutClaimsValidation()),
	}
	if verifyKey != "" {
		tc.verifyKey = []byte(verifyKey)
	}
	return tc
}

// Verifies reports whether the codec checks token signatures.
func (tc *TokenCodec) Verifies() bool {
	return tc != nil && len(tc.verifyKey) > 0
}

// Decode extracts subject, role and expiry from a token.
func (tc *TokenCodec) Decode(token string) (*domain.TokenPayload, error) {
	if tc == nil {
		return nil, fmt.Errorf("%w: codec not configured", ErrDecode)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrDecode)
	}

	claims := &accessClaims{}
	if tc.Verifies() {
		parsed, err := tc.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
			return tc.verifyKey, nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if !parsed.Valid {
			return nil, fmt.Errorf("%w: invalid signature", ErrDecode)
		}
	} else {
		if _, _, err := tc.parser.ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	}

	payload := &domain.TokenPayload{
		Subject: claims.Subject,
		Role:    domain.ParseRole(claims.Role),
	}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return payload, nil
}
