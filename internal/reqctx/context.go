// Package reqctx carries per-request correlation values on a context so
// services can log them.
package reqctx

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	keyRID ctxKey = "rid"
	keyUID ctxKey = "uid"
)

func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns the request id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

func WithUID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, keyUID, id)
}

// UID returns the authenticated user id, or 0.
func UID(ctx context.Context) uint64 {
	v, _ := ctx.Value(keyUID).(uint64)
	return v
}

// Fields returns the correlation fields present on ctx.
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if rid := RID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if uid := UID(ctx); uid != 0 {
		fields = append(fields, zap.Uint64("user_id", uid))
	}
	return fields
}
