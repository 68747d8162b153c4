package gtindata

import "context"

type requestIDContextKey struct{}
type userAgentContextKey struct{}

// WithRequestID attaches a caller-chosen request identifier to ctx. It
// is sent as the X-Request-ID header and echoed in the request event,
// replacing the generated one. Useful for correlating a UI action with
// the backend call it caused.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// WithUserAgent overrides the configured User-Agent for the calls made
// under ctx.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}
