package subschema

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

const productSDL = `
	type Query {
		productsByUpc(upcs: [String!]!): [Product]
	}
	type Product {
		upc: String!
		price: Int
		shippingEstimate: Int
	}
`

var nopExecutor = graphql.ExecutorFunc(func(ctx context.Context, req *graphql.Request) (*graphql.Result, error) {
	return &graphql.Result{}, nil
})

func productMerge() map[string]MergedTypeConfig {
	return map[string]MergedTypeConfig{
		"Product": {
			EntryPoints: []EntryPoint{{
				FieldName:    "productsByUpc",
				SelectionSet: language.MustSelectionSet("{ upc }"),
				Key: func(entity map[string]any) any {
					return entity["upc"]
				},
				ArgsFromKeys: func(keys []any) map[string]any {
					return map[string]any{"upcs": keys}
				},
			}},
		},
	}
}

func TestBuild(t *testing.T) {
	reg, err := Build([]Config{{
		Name:     "products",
		SDL:      productSDL,
		Executor: nopExecutor,
		Merge:    productMerge(),
	}})
	require.NoError(t, err)

	require.Len(t, reg.Subschemas(), 1)
	sub := reg.ForName("products")
	require.NotNil(t, sub)
	require.NotNil(t, sub.Schema.Types["Product"])
	require.Equal(t, []*Subschema{sub}, reg.MergeCandidates("Product"))
	require.Nil(t, reg.ForName("unknown"))
}

func TestBuildCandidateOrderFollowsConfigOrder(t *testing.T) {
	reg, err := Build([]Config{
		{Name: "a", SDL: productSDL, Executor: nopExecutor, Merge: productMerge()},
		{Name: "b", SDL: productSDL, Executor: nopExecutor, Merge: productMerge()},
		{Name: "c", SDL: productSDL, Executor: nopExecutor},
	})
	require.NoError(t, err)

	candidates := reg.MergeCandidates("Product")
	require.Len(t, candidates, 2)
	require.Equal(t, "a", candidates[0].Name)
	require.Equal(t, "b", candidates[1].Name)
}

func TestBuildWrapsBatchingExecutor(t *testing.T) {
	reg, err := Build([]Config{{
		Name:        "products",
		SDL:         productSDL,
		Executor:    nopExecutor,
		Batch:       true,
		BatchWindow: 5 * time.Millisecond,
	}})
	require.NoError(t, err)

	sub := reg.ForName("products")
	res, err := sub.Executor().Execute(context.Background(), &graphql.Request{
		Document:      mustQuery(t, "{ productsByUpc(upcs: []) { upc } }"),
		OperationType: language.Query,
	})
	require.NoError(t, err)
	require.NotNil(t, res)
}

func TestBuildValidation(t *testing.T) {
	base := func() Config {
		return Config{Name: "products", SDL: productSDL, Executor: nopExecutor}
	}

	cases := []struct {
		name    string
		configs []Config
		wantErr string
	}{
		{
			name:    "EmptyName",
			configs: []Config{{SDL: productSDL, Executor: nopExecutor}},
			wantErr: "empty name",
		},
		{
			name:    "DuplicateName",
			configs: []Config{base(), base()},
			wantErr: "duplicate name",
		},
		{
			name:    "MissingExecutor",
			configs: []Config{{Name: "products", SDL: productSDL}},
			wantErr: "executor is required",
		},
		{
			name:    "MissingSchema",
			configs: []Config{{Name: "products", Executor: nopExecutor}},
			wantErr: "schema or SDL is required",
		},
		{
			name:    "InvalidSDL",
			configs: []Config{{Name: "products", SDL: "type {", Executor: nopExecutor}},
			wantErr: "products",
		},
		{
			name: "UnknownMergedType",
			configs: []Config{func() Config {
				cfg := base()
				cfg.Merge = map[string]MergedTypeConfig{"Ghost": {}}
				return cfg
			}()},
			wantErr: `merged type "Ghost" not found`,
		},
		{
			name: "EntryPointWithoutSelection",
			configs: []Config{func() Config {
				cfg := base()
				merge := productMerge()
				mt := merge["Product"]
				mt.EntryPoints[0].SelectionSet = nil
				merge["Product"] = mt
				cfg.Merge = merge
				return cfg
			}()},
			wantErr: "empty selection set",
		},
		{
			name: "EntryPointWithoutKeyFuncs",
			configs: []Config{func() Config {
				cfg := base()
				merge := productMerge()
				mt := merge["Product"]
				mt.EntryPoints[0].Key = nil
				merge["Product"] = mt
				cfg.Merge = merge
				return cfg
			}()},
			wantErr: "must define both key and argsFromKeys",
		},
		{
			name: "EntryPointFieldNotOnQuery",
			configs: []Config{func() Config {
				cfg := base()
				merge := productMerge()
				mt := merge["Product"]
				mt.EntryPoints[0].FieldName = "missingField"
				merge["Product"] = mt
				cfg.Merge = merge
				return cfg
			}()},
			wantErr: `entry point field "missingField" not found on Query`,
		},
		{
			name: "UnknownComputedField",
			configs: []Config{func() Config {
				cfg := base()
				cfg.Merge = map[string]MergedTypeConfig{"Product": {
					ComputedFields: map[string]language.SelectionSet{
						"nope": language.MustSelectionSet("{ upc }"),
					},
				}}
				return cfg
			}()},
			wantErr: `computed field "nope" not found`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.configs)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func mustQuery(t *testing.T, source string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(source)
	require.NoError(t, err)
	return doc
}
