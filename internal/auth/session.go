package auth

import (
	"context"
	"time"
)

type contextKey string

const sessionKey contextKey = "session"

// Session is the authenticated console user for the current request.
// Token is forwarded to the backend as the bearer credential.
type Session struct {
	UserID    string
	Email     string
	Role      string
	Token     string
	ExpiresAt time.Time
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func GetSession(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}

// BearerToken returns the session token stored in ctx.
func BearerToken(ctx context.Context) (string, bool) {
	s, ok := GetSession(ctx)
	if !ok || s.Token == "" {
		return "", false
	}
	return s.Token, true
}
