package ports

import (
	"context"

	"github.com/google/uuid"
)

// Logger is the structured logging contract used by every layer. Fields are
// key/value pairs. Implementations must be safe for concurrent use and should
// add the run identifier stored in the context, when present.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...any)
	Info(ctx context.Context, msg string, fields ...any)
	Warn(ctx context.Context, msg string, fields ...any)
	Error(ctx context.Context, msg string, fields ...any)
	With(fields ...any) Logger
}

type runIDKey struct{}

// WithRunID attaches the provisioning run identifier to the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID extracts the run identifier from ctx, or "" when none is set.
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}

// NewRunID returns a fresh identifier for one provisioning run.
func NewRunID() string {
	return uuid.NewString()
}
