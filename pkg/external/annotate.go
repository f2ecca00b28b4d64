package external

import (
	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	subschema "github.com/CptLemming/graphql-tools/pkg/subschema"
)

// Annotate converts a raw delegated value into its external form:
//   - records become *Object carrying the subschema and split errors,
//   - lists are annotated element-wise, routing errors by index,
//   - scalars and nulls pass through unchanged.
//
// errs are relative to value. Errors whose path is empty, or whose head is
// not one of the requested response names, become unpathed. A nil requested
// slice disables the membership check.
//
// Annotation happens exactly once per raw result. The wrapper type makes
// re-annotation detectable by identity: annotating an already annotated
// value panics.
func Annotate(value any, sub *subschema.Subschema, errs []graphql.Error, requested []string) any {
	switch v := value.(type) {
	case *Object:
		panic("external: value is already annotated")
	case map[string]any:
		return annotateObject(v, sub, errs, requested)
	case []any:
		return annotateList(v, sub, errs, requested)
	default:
		return value
	}
}

func annotateObject(fields map[string]any, sub *subschema.Subschema, errs []graphql.Error, requested []string) *Object {
	obj := New(fields, sub)
	var requestedSet map[string]struct{}
	if requested != nil {
		requestedSet = make(map[string]struct{}, len(requested))
		for _, name := range requested {
			requestedSet[name] = struct{}{}
		}
	}
	for _, err := range errs {
		if isPathed(err, requestedSet) {
			obj.pathed = append(obj.pathed, err)
		} else {
			err.Path = nil
			obj.unpathed = append(obj.unpathed, err)
		}
	}
	return obj
}

func annotateList(items []any, sub *subschema.Subschema, errs []graphql.Error, requested []string) []any {
	perIndex := make(map[int][]graphql.Error)
	var shared []graphql.Error
	for _, err := range errs {
		if len(err.Path) > 0 {
			if i, ok := err.Path[0].(int); ok {
				err.Path = err.Path[1:]
				perIndex[i] = append(perIndex[i], err)
				continue
			}
		}
		// Attribution across elements is unknown; duplicate rather than drop.
		shared = append(shared, err)
	}

	out := make([]any, len(items))
	for i, item := range items {
		out[i] = Annotate(item, sub, append(perIndex[i], shared...), requested)
	}
	return out
}

func isPathed(err graphql.Error, requested map[string]struct{}) bool {
	if len(err.Path) == 0 {
		return false
	}
	head, ok := err.Path[0].(string)
	if !ok {
		return false
	}
	if requested == nil {
		return true
	}
	_, ok = requested[head]
	return ok
}
