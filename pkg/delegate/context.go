package delegate

import (
	language "github.com/CptLemming/graphql-tools/pkg/language"
	subschema "github.com/CptLemming/graphql-tools/pkg/subschema"
)

// Context is the per-call immutable bundle tying together the chosen
// subschema, the relevant sub-selection and the active transforms. One is
// constructed per delegation and discarded after; it carries no state that
// outlives the call.
type Context struct {
	Subschema *subschema.Subschema

	// FieldName is the root field to delegate to on the subschema. Empty
	// means Info.FieldName.
	FieldName string

	// Args overrides the arguments of the delegated root field. When nil the
	// arguments of the original field node are forwarded.
	Args map[string]any

	// OperationType defaults to Info.Operation, then to a query.
	OperationType language.Operation

	// Required lists key selections the planner needs present in the result
	// to re-identify the entity on a later round-trip. Missing ones are
	// injected into the delegated selection.
	Required language.SelectionSet

	Info *Info

	Transforms []Transform
}

func (c *Context) targetField() string {
	if c.FieldName != "" {
		return c.FieldName
	}
	if c.Info != nil {
		return c.Info.FieldName
	}
	return ""
}

func (c *Context) operationType() language.Operation {
	if c.OperationType != "" {
		return c.OperationType
	}
	if c.Info != nil && c.Info.Operation != "" {
		return c.Info.Operation
	}
	return language.Query
}
