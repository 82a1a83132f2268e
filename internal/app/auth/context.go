package auth

import (
	"context"
)

// Identity is the (username, token) pair the auth gate validated for a request
type Identity struct {
	Username string
	Token    string
}

// identityKey is the key type for storing Identity in context.Context
type identityKey struct{}

// WithIdentity returns a new context with identity attached
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// FromContext retrieves the Identity from ctx
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
