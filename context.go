package authsess

import (
	"context"

	"github.com/opencampus/authsess/gateway"
)

// WithRequestID attaches a correlation ID to ctx. Every backend request
// carries it in the X-Request-ID header; when absent, the gateway generates
// a fresh UUID per request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return gateway.WithRequestID(ctx, id)
}
