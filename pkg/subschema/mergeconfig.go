package subschema

import (
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// KeyFunc extracts the identifying key of an entity from its available
// fields. Returning nil means the entity cannot be fetched through this
// entry point; that is valid partial data, not an error.
type KeyFunc func(entity map[string]any) any

// ArgsFromKeysFunc builds the argument map for one batched entry point call
// covering every sibling key at once. The entry point field is expected to
// return one result per key, in key order.
type ArgsFromKeysFunc func(keys []any) map[string]any

// EntryPoint declares one way to fetch additional fields for a merged type
// from this subschema.
type EntryPoint struct {
	// FieldName is the root field to delegate to.
	FieldName string
	// SelectionSet lists the fields an entity must already have for this
	// entry point to be usable (and which Key reads).
	SelectionSet language.SelectionSet
	Key          KeyFunc
	ArgsFromKeys ArgsFromKeysFunc
}

// MergedTypeConfig describes how a subschema participates in type merging
// for one object type.
type MergedTypeConfig struct {
	EntryPoints []EntryPoint
	// ComputedFields maps a field name to the selection of foreign fields it
	// is derived from. A computed field is always sourced from the subschema
	// declaring it, overriding merge precedence.
	ComputedFields map[string]language.SelectionSet
}
