package graphql

import (
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// Request is a minimal, self-contained unit of execution against one
// subschema: a document with exactly the reachable fragments, the variables
// it declares, and the operation to run.
//
// A Request is immutable once built. Executors must not mutate it; code that
// needs a modified request (transforms, batching) builds a new one.
type Request struct {
	Document      *language.QueryDocument
	OperationName string
	OperationType language.Operation
	Variables     map[string]any
	RootValue     any
	Extensions    map[string]any
}

// Operation returns the operation definition addressed by OperationName,
// or the only operation when the name is empty.
func (r *Request) Operation() *language.OperationDefinition {
	if r.Document == nil {
		return nil
	}
	if r.OperationName == "" && len(r.Document.Operations) == 1 {
		return r.Document.Operations[0]
	}
	return r.Document.Operations.ForName(r.OperationName)
}
