package correlationid

import "context"

// Header is the HTTP / message header carrying the correlation id.
const Header = "X-Correlation-ID"

type contextKey struct{}

// NewContext returns a copy of ctx carrying the given correlation id.
func NewContext(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, contextKey{}, correlationID)
}

// FromContext extracts the correlation id from ctx, if present.
func FromContext(ctx context.Context) (string, bool) {
	correlationID, ok := ctx.Value(contextKey{}).(string)
	return correlationID, ok
}
