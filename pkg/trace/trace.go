package trace

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// HeaderName is the HTTP header carrying the trace id in both directions.
const HeaderName = "X-Trace-ID"

type ctxKey struct{}

// NewID returns a fresh trace id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// FromContext 从 context 中获取 trace_id
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(ctxKey{}).(string); ok {
		return traceID
	}
	return ""
}

// WithContext 将 trace_id 添加到 context 中
func WithContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}

// Ensure returns the header value when it is usable, otherwise a new id.
func Ensure(headerValue string) string {
	v := strings.TrimSpace(headerValue)
	if v == "" || len(v) > 128 {
		return NewID()
	}
	for _, r := range v {
		if r < 0x21 || r > 0x7e {
			return NewID()
		}
	}
	return v
}
