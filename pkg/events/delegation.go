package events

import "time"

// DelegationStart is emitted before a sub-request is dispatched to a
// subschema. ID correlates the matching DelegationFinish.
type DelegationStart struct {
	ID            int64
	Subschema     string
	FieldName     string
	OperationType string
}

// DelegationFinish is emitted after the sub-result has been annotated.
type DelegationFinish struct {
	ID            int64
	Subschema     string
	FieldName     string
	OperationType string
	ErrorCount    int
	Duration      time.Duration
}

// EntityResolve is emitted when the planner completes a round of type
// merging for a group of sibling entities.
type EntityResolve struct {
	TypeName  string
	Subschema string
	FieldName string
	Entities  int
	Skipped   int // entities left out because their key resolved to null
}
