package auth

import "context"

type contextKey struct{}

// AuthContext carries the verified identity for a request. Identity is
// established by the external provider; the portal only verifies its tokens.
type AuthContext struct {
	Email string
	Name  string
	Role  string
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// Email returns the authenticated caller's email, or "" if unauthenticated.
func Email(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.Email
}

func IsAdmin(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return ac.Role == "admin"
}
