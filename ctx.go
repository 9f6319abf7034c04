package skillsprint

import "context"

var requestIDCtxKey = &contextKey{"request_id"}

type contextKey struct {
	name string
}

// WithRequestID sets the X-Request-ID sent by the transport for calls made
// with the returned context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, id)
}

// RequestIDFromContext returns the request id set with WithRequestID
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDCtxKey).(string)
	return id, ok && id != ""
}
