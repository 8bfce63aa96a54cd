package core

import "context"

type contextKey string

const ctxKeyRunID contextKey = "run_id"

// ContextWithRunID adds the migration run id to context for logging and manifests.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRunID, id)
}

// RunIDFromContext extracts the run id from context.
func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRunID).(string); ok {
		return v
	}
	return ""
}
