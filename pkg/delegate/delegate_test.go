package delegate

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	external "github.com/CptLemming/graphql-tools/pkg/external"
	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
)

// captureExecutor records the dispatched request and replays a canned
// outcome.
type captureExecutor struct {
	req *graphql.Request
	res *graphql.Result
	err error
}

func (e *captureExecutor) Execute(ctx context.Context, req *graphql.Request) (*graphql.Result, error) {
	e.req = req
	return e.res, e.err
}

func TestDelegateAnnotatesRootValue(t *testing.T) {
	exec := &captureExecutor{res: &graphql.Result{
		Data: map[string]any{"user": map[string]any{"name": "Ada", "email": nil}},
		Errors: []graphql.Error{
			graphql.NewError("email hidden", graphql.Path{"user", "email"}),
			graphql.NewError("slow backend", nil),
		},
	}}
	sub := buildTestSubschema(t, exec, nil)
	info := hostInfo(t, `{ user(id: "u1") { name email } }`, nil)

	value, err := Delegate(context.Background(), &Context{Subschema: sub, Info: info})
	require.NoError(t, err)

	obj, ok := value.(*external.Object)
	require.True(t, ok)
	require.Same(t, sub, obj.Subschema())

	if diff := cmp.Diff(map[string]any{"name": "Ada", "email": nil}, obj.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	// The root field segment is stripped; the error is relative to the object.
	wantPathed := []graphql.Error{graphql.NewError("email hidden", graphql.Path{"email"})}
	if diff := cmp.Diff(wantPathed, obj.Errors(), cmpopts.IgnoreUnexported(graphql.Error{})); diff != "" {
		t.Fatalf("pathed mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, obj.UnpathedErrors(), 1)
	require.Equal(t, "slow backend", obj.UnpathedErrors()[0].Message)
}

func TestDelegateTransportErrorBecomesFieldError(t *testing.T) {
	exec := &captureExecutor{err: errors.New("dial tcp: connection refused")}
	sub := buildTestSubschema(t, exec, nil)
	info := hostInfo(t, `{ user(id: "u1") { name } }`, nil)

	value, err := Delegate(context.Background(), &Context{Subschema: sub, Info: info})
	require.Nil(t, value)
	require.ErrorContains(t, err, "connection refused")
}

func TestDelegateNullWithErrorsReturnsCombined(t *testing.T) {
	exec := &captureExecutor{res: &graphql.Result{
		Data:   map[string]any{"user": nil},
		Errors: []graphql.Error{graphql.NewError("not found", graphql.Path{"user"})},
	}}
	sub := buildTestSubschema(t, exec, nil)
	info := hostInfo(t, `{ user(id: "u1") { name } }`, nil)

	value, err := Delegate(context.Background(), &Context{Subschema: sub, Info: info})
	require.Nil(t, value)
	require.ErrorContains(t, err, "not found")
}

func TestDelegateNullWithoutErrors(t *testing.T) {
	exec := &captureExecutor{res: &graphql.Result{Data: map[string]any{"user": nil}}}
	sub := buildTestSubschema(t, exec, nil)
	info := hostInfo(t, `{ user(id: "u1") { name } }`, nil)

	value, err := Delegate(context.Background(), &Context{Subschema: sub, Info: info})
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestDelegateListResult(t *testing.T) {
	exec := &captureExecutor{res: &graphql.Result{
		Data: map[string]any{"user": []any{
			map[string]any{"name": "Ada"},
			nil,
		}},
	}}
	sub := buildTestSubschema(t, exec, nil)
	info := hostInfo(t, `{ user(id: "u1") { name } }`, nil)

	value, err := Delegate(context.Background(), &Context{Subschema: sub, Info: info})
	require.NoError(t, err)

	list, ok := value.([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	require.IsType(t, &external.Object{}, list[0])
	require.Nil(t, list[1])
}

type orderTransform struct {
	name string
	log  *[]string
}

func (o orderTransform) TransformRequest(req *graphql.Request) *graphql.Request {
	*o.log = append(*o.log, "req:"+o.name)
	return req
}

func (o orderTransform) TransformResult(res *graphql.Result) *graphql.Result {
	*o.log = append(*o.log, "res:"+o.name)
	return res
}

func TestTransformsRunInOrderAndReverse(t *testing.T) {
	exec := &captureExecutor{res: &graphql.Result{Data: map[string]any{"user": map[string]any{"name": "Ada"}}}}
	sub := buildTestSubschema(t, exec, nil)
	info := hostInfo(t, `{ user(id: "u1") { name } }`, nil)

	var log []string
	_, err := Delegate(context.Background(), &Context{
		Subschema: sub,
		Info:      info,
		Transforms: []Transform{
			orderTransform{name: "a", log: &log},
			orderTransform{name: "b", log: &log},
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"req:a", "req:b", "res:b", "res:a"}, log)
}

func TestRequestTransformRewritesDispatchedRequest(t *testing.T) {
	exec := &captureExecutor{res: &graphql.Result{Data: map[string]any{"user": map[string]any{"name": "Ada"}}}}
	sub := buildTestSubschema(t, exec, nil)
	info := hostInfo(t, `{ user(id: "u1") { name } }`, nil)

	_, err := Delegate(context.Background(), &Context{
		Subschema: sub,
		Info:      info,
		Transforms: []Transform{RequestTransform(func(req *graphql.Request) *graphql.Request {
			next := *req
			next.OperationName = "Rewritten"
			return &next
		})},
	})
	require.NoError(t, err)
	require.Equal(t, "Rewritten", exec.req.OperationName)
}

type channelSubscriber struct {
	results []*graphql.Result
}

func (s *channelSubscriber) Subscribe(ctx context.Context, req *graphql.Request) (<-chan *graphql.Result, error) {
	out := make(chan *graphql.Result)
	go func() {
		defer close(out)
		for _, res := range s.results {
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func TestSubscribeAnnotatesEachEvent(t *testing.T) {
	subr := &channelSubscriber{results: []*graphql.Result{
		{Data: map[string]any{"user": map[string]any{"name": "one"}}},
		{Data: map[string]any{"user": map[string]any{"name": "two"}}},
	}}
	sub := buildTestSubschema(t, discardExecutor, subr)
	info := hostInfo(t, `subscription { user(id: "u1") { name } }`, nil)

	events, err := Subscribe(context.Background(), &Context{Subschema: sub, Info: info})
	require.NoError(t, err)

	var names []string
	for event := range events {
		obj := event.(*external.Object)
		name, _ := obj.Get("name")
		names = append(names, name.(string))
	}
	require.Equal(t, []string{"one", "two"}, names)
}

func TestSubscribeWithoutSubscriber(t *testing.T) {
	sub := buildTestSubschema(t, discardExecutor, nil)
	info := hostInfo(t, `subscription { user(id: "u1") { name } }`, nil)

	_, err := Subscribe(context.Background(), &Context{Subschema: sub, Info: info})
	require.Error(t, err)
}
