// Package auth carries the authenticated operator identity through a
// request's context.
package auth

import "context"

type contextKey struct{}

// Identity is the resolved operator behind a request.
type Identity struct {
	OperatorID int64
	Username   string
	SessionID  int64
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// OperatorID returns the operator id from the context, or 0 when the
// request is unauthenticated.
func OperatorID(ctx context.Context) int64 {
	id, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return id.OperatorID
}
