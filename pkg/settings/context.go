package settings

import "context"

type runKey struct{}

// IntoContext attaches the options of the current invocation to ctx.
func IntoContext(ctx context.Context, r *Run) context.Context {
	return context.WithValue(ctx, runKey{}, r)
}

// FromContext returns the options attached by IntoContext, or the CLI
// defaults when ctx carries none.
func FromContext(ctx context.Context) *Run {
	if r, ok := ctx.Value(runKey{}).(*Run); ok && r != nil {
		return r
	}
	return NewCliParams()
}
