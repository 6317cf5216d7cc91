package mirror

import "context"

type mirrorContextKey struct{}

// WithContext returns a copy of ctx carrying m.
func WithContext(ctx context.Context, m *Mirror) context.Context {
	return context.WithValue(ctx, mirrorContextKey{}, m)
}

// FromContext returns the Mirror stored in ctx, or nil.
func FromContext(ctx context.Context) *Mirror {
	m, _ := ctx.Value(mirrorContextKey{}).(*Mirror)
	return m
}
