package fittrack

import "context"

// requestMeta is the per-request caller data the Engine records in audit
// events and uses for per-IP throttling.
type requestMeta struct {
	clientIP  string
	userAgent string
}

type requestMetaKey struct{}

func metaFromContext(ctx context.Context) (m requestMeta) {
	if ctx == nil {
		return requestMeta{}
	}

	m, _ = ctx.Value(requestMetaKey{}).(requestMeta)

	return m
}

// WithClientIP returns a copy of ctx carrying the caller's IP address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	m := metaFromContext(ctx)
	m.clientIP = ip

	return context.WithValue(ctx, requestMetaKey{}, m)
}

// WithUserAgent returns a copy of ctx carrying the HTTP User-Agent.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	m := metaFromContext(ctx)
	m.userAgent = userAgent

	return context.WithValue(ctx, requestMetaKey{}, m)
}

func clientIPFromContext(ctx context.Context) (ip string) {
	return metaFromContext(ctx).clientIP
}

func userAgentFromContext(ctx context.Context) (ua string) {
	return metaFromContext(ctx).userAgent
}
