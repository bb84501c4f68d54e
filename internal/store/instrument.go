package store

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Observer receives one sample per executed statement.
type Observer interface {
	ObserveStatement(kind Kind, d time.Duration, err error)
}

type instrumented struct {
	next     Executor
	observer Observer
	tracer   trace.Tracer
}

// Instrument wraps next so that every call produces a span and an Observer sample.
// A nil observer only traces.
func Instrument(next Executor, observer Observer, tracer trace.Tracer) Executor {
	return &instrumented{next: next, observer: observer, tracer: tracer}
}

func (i *instrumented) Execute(ctx context.Context, query string, params []any, opts QueryOptions) (*ResultSet, error) {
	kind, err := KindOf(query)
	if err != nil {
		return nil, err
	}

	ctx, span := i.tracer.Start(ctx, "store."+string(kind),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.statement", query),
			attribute.Int("db.params", len(params)),
			attribute.Int("db.fetch_size", opts.FetchSize),
		),
	)
	defer span.End()

	start := time.Now()
	rs, err := i.next.Execute(ctx, query, params, opts)
	i.finish(span, kind, start, err)
	if err == nil && rs != nil {
		span.SetAttributes(attribute.Int("db.rows", len(rs.Rows)))
	}
	return rs, err
}

func (i *instrumented) Batch(ctx context.Context, stmts []Statement) error {
	ctx, span := i.tracer.Start(ctx, "store.batch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("db.batch_size", len(stmts))),
	)
	defer span.End()

	start := time.Now()
	err := i.next.Batch(ctx, stmts)
	i.finish(span, KindBatch, start, err)
	return err
}

func (i *instrumented) finish(span trace.Span, kind Kind, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if i.observer != nil {
		i.observer.ObserveStatement(kind, time.Since(start), err)
	}
}
