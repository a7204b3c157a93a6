// Package logctx carries the request-scoped logger through a context.
package logctx

import (
	"context"

	"github.com/Zhima-Mochi/fooddelivery/internal/observability"
)

type key struct{}

func With(ctx context.Context, logger observability.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, key{}, logger)
}

// From returns the logger stored on ctx, or nil.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	l, _ := ctx.Value(key{}).(observability.Logger)
	return l
}

func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if l := From(ctx); l != nil {
		return l
	}
	return fallback
}

// Enrich replaces the logger on ctx with a child carrying fields. A ctx
// without a logger is returned unchanged.
func Enrich(ctx context.Context, fields ...observability.Field) context.Context {
	l := From(ctx)
	if l == nil || len(fields) == 0 {
		return ctx
	}
	return context.WithValue(ctx, key{}, l.With(fields...))
}
