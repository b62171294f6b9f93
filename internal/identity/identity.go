// Package identity carries the authenticated owner through a request.
// Tokens are issued by the account service; this package only verifies them.
package identity

import (
	"context"

	"github.com/serroba/url-shortener/internal/shortener"
)

type ownerKey struct{}

// WithOwner returns a context carrying owner.
func WithOwner(ctx context.Context, owner shortener.OwnerID) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext returns the owner stored by WithOwner, or "" when absent.
func OwnerFromContext(ctx context.Context) shortener.OwnerID {
	if v, ok := ctx.Value(ownerKey{}).(shortener.OwnerID); ok {
		return v
	}

	return ""
}

// SecurityScheme is the OpenAPI security scheme name for owner bearer tokens.
// Operations listing it in their Security requirements need an owner.
const SecurityScheme = "bearer"
