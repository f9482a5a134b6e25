package transport

import "context"

type skipLoaderContextKey struct{}

// WithSkipLoader marks every call issued under ctx as exempt from in-flight
// bookkeeping. Useful for background polling that must not flash the global
// busy indicator.
func WithSkipLoader(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipLoaderContextKey{}, true)
}

func skipLoaderFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	skip, _ := ctx.Value(skipLoaderContextKey{}).(bool)
	return skip
}
