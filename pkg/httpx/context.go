package httpx

import "context"

// Caller is the identity resolved from a request credential by one of the
// auth guards. Handlers receive it as an explicit value through the request
// context rather than reading ambient per-request state.
type Caller struct {
	ID       string
	Username string
	Email    string
}

type ctxKey string

const ctxKeyCaller ctxKey = "caller"

// ContextWithCaller attaches the resolved caller identity to the context.
func ContextWithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKeyCaller, c)
}

// CallerFromContext returns the caller resolved by an auth guard, if any.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ctxKeyCaller).(Caller)
	return c, ok
}
