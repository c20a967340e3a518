package middleware

import (
	"context"

	"github.com/characters-analyzer/backend/pkg/db/models"
)

type contextKey string

const ctxUser contextKey = "user"

// UserFromContext returns the authenticated user, or nil outside Auth.
func UserFromContext(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxUser).(*models.User); ok {
		return v
	}
	return nil
}

// WithUser injects the authenticated user into the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUser, user)
}
