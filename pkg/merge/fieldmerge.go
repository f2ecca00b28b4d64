package merge

import (
	external "github.com/CptLemming/graphql-tools/pkg/external"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// Precedence decides which subschema's value survives when two non-computed
// fields overlap. The rule is a policy option rather than a hard-coded
// constant; FirstWins matches what most stitching gateways do.
type Precedence int

const (
	// FirstWins keeps the first non-null value an entity received.
	FirstWins Precedence = iota
	// LastWins lets a later subschema overwrite with any non-null value.
	LastWins
)

// Merge folds src into dst, which must describe the same logical entity.
// Computed fields always come from their declaring subschema, overriding
// precedence. Errors are appended, never replaced; src's relative paths stay
// valid because both objects share the entity root.
func Merge(dst, src *external.Object, computed map[string]language.SelectionSet, precedence Precedence) {
	for name, value := range src.Fields() {
		if _, isComputed := computed[name]; isComputed {
			dst.Set(name, value)
			continue
		}
		current, exists := dst.Get(name)
		switch precedence {
		case LastWins:
			if value != nil || !exists {
				dst.Set(name, value)
			}
		default:
			if !exists || current == nil {
				dst.Set(name, value)
			}
		}
	}
	dst.AddSource(src.Subschema())
	dst.AppendErrors(src.Errors()...)
	dst.AppendUnpathedErrors(src.UnpathedErrors()...)
}
