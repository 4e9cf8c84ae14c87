package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	domainKey    ctxKey = "domain"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithDomain tags every log line written under ctx with the schema it
// belongs to ("food" or "wallet").
func WithDomain(ctx context.Context, domain string) context.Context {
	return context.WithValue(ctx, domainKey, domain)
}

func DomainFrom(ctx context.Context) string {
	if v, ok := ctx.Value(domainKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns the process logger carrying request_id and domain when set.
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if domain := DomainFrom(ctx); domain != "" {
		l = l.With(zap.String("domain", domain))
	}
	return l
}
