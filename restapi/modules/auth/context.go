package auth

import "context"

type contextKey string

// Context keys used to carry the authenticated identity into GraphQL
// resolvers.
const (
	UserKey contextKey = "user_key"
	RoleKey contextKey = "role"
)

// UserFromContext returns the authenticated user's key from a resolver
// context, or "" for guests.
func UserFromContext(ctx context.Context) string {
	key, _ := ctx.Value(UserKey).(string)
	return key
}

// RoleFromContext returns the authenticated user's role, or "" for guests.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}
