package auth

import "context"

type contextKey string

const contextKeyUser contextKey = "auth.user_id"

// WithUser stores the authenticated user id in ctx.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeyUser, userID)
}

// UserFromContext returns the authenticated user id, or "" when the request
// was not authenticated.
func UserFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(contextKeyUser).(string); ok {
		return userID
	}
	return ""
}

// ResolveUser picks the user a request acts for. With an authenticated user,
// an explicit requested id must match it; without one, requested is trusted.
func ResolveUser(ctx context.Context, requested string) (string, error) {
	authed := UserFromContext(ctx)
	switch {
	case authed == "" && requested == "":
		return "", ErrMissingUser
	case authed == "":
		return requested, nil
	case requested != "" && requested != authed:
		return "", ErrUserMismatch
	default:
		return authed, nil
	}
}
