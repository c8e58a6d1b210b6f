package logs

import (
	"context"
	"crypto/rand"
)

type Span string

type Phase string

const (
	PhaseLex      Phase = "lex"
	PhaseParse    Phase = "parse"
	PhaseOptimize Phase = "optimize"
	PhaseGenerate Phase = "generate"
	PhaseRun      Phase = "run"
)

type contextKey uint8

const (
	SpanKey contextKey = iota + 1
	PhaseKey
)

// WithPhase marks the compile phase for logs and errors under ctx.
func WithPhase(ctx context.Context, phase Phase) context.Context {
	return context.WithValue(ctx, PhaseKey, phase)
}

// NewSpan starts a span for one unit of work, usually one input file.
type NewSpan func(ctx context.Context, what string) (context.Context, Span)

func (Module) NewSpan(
	logger Logger,
) NewSpan {
	return func(ctx context.Context, what string) (context.Context, Span) {

		// parent
		var parent Span
		if v := ctx.Value(SpanKey); v != nil {
			parent = v.(Span)
		}

		// span
		span := Span(rand.Text())
		ctx = context.WithValue(ctx, SpanKey, span)

		// logs
		args := []any{
			"what", what,
		}
		if parent != "" {
			args = append(args, "parent", parent)
		}
		logger.DebugContext(ctx, "new span", args...)

		return ctx, span
	}
}
