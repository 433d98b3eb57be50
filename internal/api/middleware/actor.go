package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/petbattle/internal/api/apierr"
	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/services/auth"
)

type contextKey string

const (
	actorContextKey   contextKey = "actor"
	sessionContextKey contextKey = "session"
)

// Actor requires a valid session token. Requests are sent as the address
// the session was opened for.
func Actor(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, sessionContextKey, session)
			ctx = context.WithValue(ctx, actorContextKey, session.Actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// GetActor returns the calling actor from the request context
func GetActor(ctx context.Context) model.ActorID {
	actor, _ := ctx.Value(actorContextKey).(model.ActorID)
	return actor
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

// MustGetActor returns the calling actor or panics
func MustGetActor(ctx context.Context) model.ActorID {
	actor := GetActor(ctx)
	if actor.IsZero() {
		panic("no actor in context - actor middleware not applied?")
	}
	return actor
}
