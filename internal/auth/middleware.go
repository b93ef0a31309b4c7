package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingToken = errors.New("authorization header missing")
	ErrTokenRevoked = errors.New("token has been revoked")
)

type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

type Authenticator struct {
	jwtService tokenValidator
	revoked    RevocationStore
}

// revoked may be nil, in which case logout only ends the client session.
func NewAuthenticator(jwtService tokenValidator, revoked RevocationStore) *Authenticator {
	return &Authenticator{
		jwtService: jwtService,
		revoked:    revoked,
	}
}

// Authenticate turns an Authorization header value into a Session.
func (a *Authenticator) Authenticate(ctx context.Context, authHeader string) (*Session, error) {
	if authHeader == "" {
		return nil, ErrMissingToken
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	claims, err := a.jwtService.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if a.revoked != nil {
		revoked, err := a.revoked.IsRevoked(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("checking token revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return &Session{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Logout revokes the session token for the rest of its lifetime.
func (a *Authenticator) Logout(ctx context.Context, s *Session) error {
	if a.revoked == nil || s == nil {
		return nil
	}
	ttl := time.Until(s.ExpiresAt)
	if err := a.revoked.Revoke(ctx, s.Token, ttl); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}
