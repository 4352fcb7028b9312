package middleware

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/firebase"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// IdentityFromContext returns the verified caller, or a zero identity on public routes.
func IdentityFromContext(ctx context.Context) firebase.Identity {
	if ctx == nil {
		return firebase.Identity{}
	}
	if v, ok := ctx.Value(ctxIdentity).(firebase.Identity); ok {
		return v
	}
	return firebase.Identity{}
}

func UserIDFromContext(ctx context.Context) string {
	return IdentityFromContext(ctx).UID
}

func RoleFromContext(ctx context.Context) enums.Role {
	return IdentityFromContext(ctx).Role
}

// WithIdentity injects the caller into the context for downstream handlers.
func WithIdentity(ctx context.Context, identity firebase.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}
