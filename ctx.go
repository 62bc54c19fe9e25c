package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// DefaultContextKey is the router Locals key used by the JWT middleware
const DefaultContextKey = "user"

// WithContext sets the PublicUser in the given context
func WithContext(r context.Context, user PublicUser) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (PublicUser, bool) {
	raw, ok := ctx.Value(userCtxKey).(PublicUser)
	return raw, ok
}

// WithClaimsContext sets the JWTClaims in the given context
func WithClaimsContext(r context.Context, claims *JWTClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the JWTClaims from the standard context
func GetClaims(ctx context.Context) (*JWTClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*JWTClaims)
	return raw, ok && raw != nil
}

// UserFromLocals returns the user the JWT middleware stored on the request
func UserFromLocals(c router.Context, key string) (PublicUser, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	switch v := c.Locals(key).(type) {
	case PublicUser:
		return v, true
	case *PublicUser:
		if v == nil {
			return PublicUser{}, false
		}
		return *v, true
	default:
		return PublicUser{}, false
	}
}

// IsAdmin reports whether the request user carries the admin role
func IsAdmin(ctx context.Context) bool {
	user, ok := FromContext(ctx)
	return ok && user.Role.IsAtLeast(RoleAdmin)
}
