package delegate

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	external "github.com/CptLemming/graphql-tools/pkg/external"
	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

func TestRenameRootField(t *testing.T) {
	exec := &captureExecutor{res: &graphql.Result{
		Data: map[string]any{"user": map[string]any{"name": "Ada"}},
	}}
	sub := buildTestSubschema(t, exec, nil)
	info := hostInfo(t, `{ user(id: "u1") { name } }`, nil)

	value, err := Delegate(context.Background(), &Context{
		Subschema:  sub,
		Info:       info,
		Transforms: []Transform{RenameRootField("user", "account")},
	})
	require.NoError(t, err)

	root := exec.req.Operation().SelectionSet[0].(*language.Field)
	require.Equal(t, "account", root.Name)
	// The alias keeps the original response key, so extraction still works.
	require.Equal(t, "user", root.Alias)
	require.IsType(t, &external.Object{}, value)
}

func TestRenameRootFieldLeavesOtherFields(t *testing.T) {
	doc, err := language.ParseQuery(`{ health }`)
	require.NoError(t, err)
	req := &graphql.Request{Document: doc, OperationType: language.Query}

	out := RenameRootField("user", "account").TransformRequest(req)
	root := out.Operation().SelectionSet[0].(*language.Field)
	require.Equal(t, "health", root.Name)
}

func TestForwardExtensions(t *testing.T) {
	doc, err := language.ParseQuery(`{ health }`)
	require.NoError(t, err)
	req := &graphql.Request{
		Document:   doc,
		Extensions: map[string]any{"existing": true},
	}

	out := ForwardExtensions(map[string]any{"traceparent": "00-abc", "existing": false}).TransformRequest(req)

	want := map[string]any{"existing": true, "traceparent": "00-abc"}
	if diff := cmp.Diff(want, out.Extensions); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	// The original request is untouched.
	if diff := cmp.Diff(map[string]any{"existing": true}, req.Extensions); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}
