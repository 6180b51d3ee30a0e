package auth

import (
	"context"

	"github.com/sells-group/geo-analytics/internal/model"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity, if any.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*model.Identity)
	return id, ok && id != nil
}
