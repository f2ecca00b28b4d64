// Package external wraps delegated results as External Objects: resolved
// values carrying their originating subschema and the errors that could not
// be attached to a field path. The wrapper is an explicit type; subschema
// and error metadata are first-class fields, never hidden markers on plain
// maps.
package external

import (
	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	subschema "github.com/CptLemming/graphql-tools/pkg/subschema"
)

// Object is an annotated resolved value. It is created once per resolved
// object per delegation and appended to, never replaced, when merged with
// another Object describing the same entity.
type Object struct {
	fields map[string]any

	// origin is the subschema the object was first resolved from; sources
	// additionally records every subschema merged in since, so the planner
	// never revisits one for the same entity.
	origin  *subschema.Subschema
	sources []*subschema.Subschema

	pathed   []graphql.Error // paths relative to this object
	unpathed []graphql.Error
}

// New wraps fields resolved from sub. The map is owned by the Object from
// here on.
func New(fields map[string]any, sub *subschema.Subschema) *Object {
	return &Object{
		fields:  fields,
		origin:  sub,
		sources: []*subschema.Subschema{sub},
	}
}

func (o *Object) Subschema() *subschema.Subschema { return o.origin }

// Fields exposes the underlying record. The planner mutates it through Set;
// everyone else treats it as read-only.
func (o *Object) Fields() map[string]any { return o.fields }

func (o *Object) Get(name string) (any, bool) {
	v, ok := o.fields[name]
	return v, ok
}

func (o *Object) Set(name string, value any) {
	if o.fields == nil {
		o.fields = make(map[string]any)
	}
	o.fields[name] = value
}

// FieldNames returns the names of the currently available fields.
func (o *Object) FieldNames() []string {
	names := make([]string, 0, len(o.fields))
	for name := range o.fields {
		names = append(names, name)
	}
	return names
}

// UnpathedErrors returns backend errors that could not be attached to a
// field position.
func (o *Object) UnpathedErrors() []graphql.Error { return o.unpathed }

func (o *Object) AppendUnpathedErrors(errs ...graphql.Error) {
	o.unpathed = append(o.unpathed, errs...)
}

// Errors returns the positioned errors relative to this object.
func (o *Object) Errors() []graphql.Error { return o.pathed }

func (o *Object) AppendErrors(errs ...graphql.Error) {
	o.pathed = append(o.pathed, errs...)
}

// ErrorsAt rebases the object's positioned errors onto the path where the
// object is mounted in the parent response tree.
func (o *Object) ErrorsAt(base graphql.Path) []graphql.Error {
	return graphql.OffsetErrors(o.pathed, base)
}

// CombinedError folds every error carried by the object, pathed and
// unpathed, into one composite error exposing the full list. Nil when the
// object carries no errors.
func (o *Object) CombinedError() error {
	all := make([]graphql.Error, 0, len(o.pathed)+len(o.unpathed))
	all = append(all, o.pathed...)
	all = append(all, o.unpathed...)
	return graphql.CombineErrors(all)
}

// Sources lists every subschema that has contributed fields to this object.
func (o *Object) Sources() []*subschema.Subschema { return o.sources }

func (o *Object) AddSource(sub *subschema.Subschema) {
	if !o.FromSource(sub) {
		o.sources = append(o.sources, sub)
	}
}

func (o *Object) FromSource(sub *subschema.Subschema) bool {
	for _, s := range o.sources {
		if s == sub {
			return true
		}
	}
	return false
}
