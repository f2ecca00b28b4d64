// Package delegate issues sub-requests against a single subschema on behalf
// of a field in the stitched schema. It builds the minimal executable
// request, runs the subschema's executor through the configured transforms,
// and annotates the raw result as an External Object for the host engine.
package delegate

import (
	"context"
	"math/rand"
	"time"

	events "github.com/CptLemming/graphql-tools/pkg/events"
	eventbus "github.com/CptLemming/graphql-tools/pkg/eventbus"
	external "github.com/CptLemming/graphql-tools/pkg/external"
	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// Delegate executes one delegation and returns the annotated value.
//
// Error discipline:
//   - A request-construction failure returns a non-nil error, scoped to the
//     delegated field; the host attaches it there.
//   - Transport failures reported by the executor are folded into the result
//     as a single unpathed error and surface on the External Object.
//   - When the delegated value is null and the result carries errors, the
//     errors are returned combined so the host can place them at the field.
func Delegate(ctx context.Context, dctx *Context) (any, error) {
	built, err := buildRequest(dctx)
	if err != nil {
		return nil, err
	}

	req := applyRequestTransforms(dctx.Transforms, built.req)

	id := rand.Int63()
	start := time.Now()
	eventbus.Publish(ctx, events.DelegationStart{
		ID:            id,
		Subschema:     dctx.Subschema.Name,
		FieldName:     built.fieldKey,
		OperationType: string(req.OperationType),
	})

	res, execErr := dctx.Subschema.Executor().Execute(ctx, req)
	if execErr != nil {
		res = graphql.ErrorResult(execErr)
	}
	res = applyResultTransforms(dctx.Transforms, res)

	value, errs := extractRoot(res, built.fieldKey)

	eventbus.Publish(ctx, events.DelegationFinish{
		ID:            id,
		Subschema:     dctx.Subschema.Name,
		FieldName:     built.fieldKey,
		OperationType: string(req.OperationType),
		ErrorCount:    len(errs),
		Duration:      time.Since(start),
	})

	if value == nil {
		if combined := graphql.CombineErrors(errs); combined != nil {
			return nil, combined
		}
		return nil, nil
	}
	return external.Annotate(value, dctx.Subschema, errs, built.requested), nil
}

// Subscribe delegates a subscription operation. Each event on the returned
// channel is an annotated value, produced with the same rules as Delegate.
func Subscribe(ctx context.Context, dctx *Context) (<-chan any, error) {
	scoped := *dctx
	scoped.OperationType = language.Subscription
	dctx = &scoped
	built, err := buildRequest(dctx)
	if err != nil {
		return nil, err
	}
	subscriber := dctx.Subschema.Subscriber()
	if subscriber == nil {
		return nil, errNoSubscriber(dctx.Subschema.Name)
	}

	req := applyRequestTransforms(dctx.Transforms, built.req)
	source, err := subscriber.Subscribe(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make(chan any)
	go func() {
		defer close(out)
		for res := range source {
			res = applyResultTransforms(dctx.Transforms, res)
			value, errs := extractRoot(res, built.fieldKey)
			event := external.Annotate(value, dctx.Subschema, errs, built.requested)
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// extractRoot pulls the delegated root field's value out of the result and
// rebases the errors onto it: paths under the root field become relative,
// everything else loses its path and will be recorded as unpathed.
func extractRoot(res *graphql.Result, fieldKey string) (any, []graphql.Error) {
	var value any
	if data, ok := res.Data.(map[string]any); ok {
		value = data[fieldKey]
	}

	errs := make([]graphql.Error, 0, len(res.Errors))
	for _, err := range res.Errors {
		if len(err.Path) > 0 {
			if head, ok := err.Path[0].(string); ok && head == fieldKey {
				err.Path = err.Path[1:]
				errs = append(errs, err)
				continue
			}
		}
		err.Path = nil
		errs = append(errs, err)
	}
	return value, errs
}
