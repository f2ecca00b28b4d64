package otel

import (
	"context"
	"sync"

	eventbus "github.com/CptLemming/graphql-tools/pkg/eventbus"
	events "github.com/CptLemming/graphql-tools/pkg/events"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers that
// trace delegations, batch flushes and transport calls.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("graphql-tools")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer          trace.Tracer
	delegationSpans sync.Map // delegation id -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.DelegationStart) {
		_, span := s.tracer.Start(ctx, "graphql.delegate")
		span.SetAttributes(
			attribute.String("graphql.subschema", e.Subschema),
			attribute.String("graphql.field", e.FieldName),
			attribute.String("graphql.operation.type", e.OperationType),
		)
		s.delegationSpans.Store(e.ID, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.DelegationFinish) {
		v, ok := s.delegationSpans.LoadAndDelete(e.ID)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int("graphql.error_count", e.ErrorCount))
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.BatchFlush) {
		_, span := s.tracer.Start(ctx, "graphql.batch_flush")
		span.SetAttributes(
			attribute.String("graphql.subschema", e.Subschema),
			attribute.Int("graphql.batch.size", e.Size),
		)
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.EntityResolve) {
		_, span := s.tracer.Start(ctx, "graphql.entity_resolve")
		span.SetAttributes(
			attribute.String("graphql.type", e.TypeName),
			attribute.String("graphql.subschema", e.Subschema),
			attribute.Int("graphql.entities", e.Entities),
		)
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.TransportCall) {
		_, span := s.tracer.Start(ctx, "http.client")
		span.SetAttributes(
			attribute.String("http.url", e.URL),
			semconv.HTTPStatusCodeKey.Int(e.Status),
		)
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})
}
