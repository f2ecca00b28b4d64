// Package zlog attaches a zap logger to the event bus. It is the logging
// counterpart of the otel subscriber: libraries publish events, the host
// decides what to do with them.
package zlog

import (
	"context"

	"go.uber.org/zap"

	eventbus "github.com/CptLemming/graphql-tools/pkg/eventbus"
	events "github.com/CptLemming/graphql-tools/pkg/events"
	reqid "github.com/CptLemming/graphql-tools/pkg/reqid"
)

// Setup subscribes log handlers for every delegation event. The returned
// function unsubscribes them.
func Setup(logger *zap.Logger) (unsubscribe func()) {
	subs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.DelegationFinish) {
			rid, _ := reqid.FromContext(ctx)
			logger.Debug("delegation finished",
				zap.Int64("rid", rid),
				zap.String("subschema", e.Subschema),
				zap.String("field", e.FieldName),
				zap.String("operation", e.OperationType),
				zap.Int("errors", e.ErrorCount),
				zap.Duration("duration", e.Duration),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.BatchFlush) {
			rid, _ := reqid.FromContext(ctx)
			logger.Debug("batch flushed",
				zap.Int64("rid", rid),
				zap.String("subschema", e.Subschema),
				zap.Int("size", e.Size),
				zap.Duration("wait", e.Wait),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.EntityResolve) {
			rid, _ := reqid.FromContext(ctx)
			logger.Debug("entities resolved",
				zap.Int64("rid", rid),
				zap.String("type", e.TypeName),
				zap.String("subschema", e.Subschema),
				zap.String("field", e.FieldName),
				zap.Int("entities", e.Entities),
				zap.Int("skipped", e.Skipped),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.TransportCall) {
			if e.Err != nil {
				logger.Warn("transport call failed",
					zap.String("url", e.URL),
					zap.Duration("duration", e.Duration),
					zap.Error(e.Err),
				)
				return
			}
			logger.Debug("transport call",
				zap.String("url", e.URL),
				zap.Int("status", e.Status),
				zap.Duration("duration", e.Duration),
			)
		}),
	}
	return func() {
		for _, unsub := range subs {
			unsub()
		}
	}
}
