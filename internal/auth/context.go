package auth

import (
	"context"

	"github.com/Dan9191/cleancare-api/internal/models"
)

type userKey struct{}

// WithUser stores the authenticated caller in ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the authenticated caller, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}
