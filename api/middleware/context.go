package middleware

import "context"

type contextKey string

const ctxStaff contextKey = "staff"

// StaffFromContext returns the authenticated cashier's username, if any.
func StaffFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStaff).(string); ok {
		return v
	}
	return ""
}

// WithStaff injects the cashier's username into the context.
func WithStaff(ctx context.Context, username string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStaff, username)
}
