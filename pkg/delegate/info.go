package delegate

import (
	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// Info carries what the host execution engine knows about the field being
// resolved. It is the bridge from the host's resolve info into a delegation;
// the engine itself never walks the host query.
type Info struct {
	// FieldName is the field being resolved in the host schema.
	FieldName string
	// FieldNodes are the AST nodes backing the field, merged by the host
	// when the field appears more than once in the selection.
	FieldNodes []*language.Field
	// Path is the response position of the field in the host execution.
	// Relative error paths from the delegated result are offset by it.
	Path graphql.Path

	Operation           language.Operation
	Fragments           language.FragmentDefinitionList
	VariableDefinitions language.VariableDefinitionList
	Variables           map[string]any
}
