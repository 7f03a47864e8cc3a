package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Context key type to avoid collisions
type contextKey string

// PrincipalKey is the context key for the authenticated principal
const PrincipalKey contextKey = "principal"

// Principal is the authenticated caller of a request
type Principal struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"username"`
}

// GetRequestIDFromContext returns the id set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// GetPrincipalFromContext retrieves the principal from context
func GetPrincipalFromContext(ctx context.Context) *Principal {
	if val := ctx.Value(PrincipalKey); val != nil {
		if principal, ok := val.(*Principal); ok {
			return principal
		}
	}
	return nil
}

// WithPrincipal adds the principal to the context
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}
