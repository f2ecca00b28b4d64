package batch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// echoExecutor answers every root selection with its response name and
// records each dispatched request.
type echoExecutor struct {
	mu    sync.Mutex
	calls []*graphql.Request
}

func (e *echoExecutor) Execute(ctx context.Context, req *graphql.Request) (*graphql.Result, error) {
	e.mu.Lock()
	e.calls = append(e.calls, req)
	e.mu.Unlock()

	data := make(map[string]any)
	op := req.Operation()
	for _, sel := range op.SelectionSet {
		if f, ok := sel.(*language.Field); ok {
			name := f.Alias
			if name == "" {
				name = f.Name
			}
			data[name] = name
		}
	}
	return &graphql.Result{Data: data}, nil
}

func (e *echoExecutor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func queryRequest(t *testing.T, query string, vars map[string]any) *graphql.Request {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return &graphql.Request{
		Document:      doc,
		OperationType: language.Query,
		Variables:     vars,
	}
}

func TestConcurrentRequestsShareOneDispatch(t *testing.T) {
	target := &echoExecutor{}
	e := New(target, WithWindow(50*time.Millisecond))

	const n = 4
	results := make([]*graphql.Result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := queryRequest(t, fmt.Sprintf("{ field%d }", i), nil)
			res, err := e.Execute(context.Background(), req)
			require.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, target.callCount())
	for i, res := range results {
		field := fmt.Sprintf("field%d", i)
		want := map[string]any{field: field}
		if diff := cmp.Diff(want, res.Data); diff != "" {
			t.Fatalf("caller %d data mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestMaxSizeFlushesBeforeWindow(t *testing.T) {
	target := &echoExecutor{}
	e := New(target, WithWindow(time.Hour), WithMaxSize(2))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.Execute(context.Background(), queryRequest(t, fmt.Sprintf("{ f%d }", i), nil))
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, target.callCount())
}

func TestSingleRequestPassesThroughUnprefixed(t *testing.T) {
	target := &echoExecutor{}
	e := New(target, WithWindow(time.Millisecond))

	res, err := e.Execute(context.Background(), queryRequest(t, "{ viewer }", nil))
	require.NoError(t, err)

	want := map[string]any{"viewer": "viewer"}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 1, target.callCount())
}

func TestSubscriptionsBypassBatching(t *testing.T) {
	target := &echoExecutor{}
	e := New(target, WithWindow(time.Hour))

	doc, err := language.ParseQuery("subscription { ticks }")
	require.NoError(t, err)
	req := &graphql.Request{Document: doc, OperationType: language.Subscription}

	_, err = e.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, target.callCount())
}

func TestOperationTypesBatchSeparately(t *testing.T) {
	target := &echoExecutor{}
	e := New(target, WithWindow(50*time.Millisecond))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := e.Execute(context.Background(), queryRequest(t, "{ q }", nil))
		require.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		doc, err := language.ParseQuery("mutation { m }")
		require.NoError(t, err)
		_, err = e.Execute(context.Background(), &graphql.Request{
			Document:      doc,
			OperationType: language.Mutation,
		})
		require.NoError(t, err)
	}()
	wg.Wait()

	require.Equal(t, 2, target.callCount())
}
