// Package merge completes partially populated entities by delegating to
// subschemas whose merge configuration declares a compatible entry point.
// Sibling entities sharing an entry point are fetched through a single
// batched argsFromKeys call; that amortization is the main payoff of the
// whole subsystem.
package merge

import (
	"context"
	"sync"

	delegate "github.com/CptLemming/graphql-tools/pkg/delegate"
	events "github.com/CptLemming/graphql-tools/pkg/events"
	eventbus "github.com/CptLemming/graphql-tools/pkg/eventbus"
	external "github.com/CptLemming/graphql-tools/pkg/external"
	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
	subschema "github.com/CptLemming/graphql-tools/pkg/subschema"
)

// Planner owns the merge decisions for one query execution. It memoizes
// entry-point selection per entity shape and must be discarded with the
// execution it served.
type Planner struct {
	reg        *subschema.Registry
	precedence Precedence

	mu   sync.Mutex
	memo map[uint64][]*step
}

type Option func(*Planner)

// WithPrecedence overrides the conflicting-field policy (default FirstWins).
func WithPrecedence(p Precedence) Option {
	return func(pl *Planner) { pl.precedence = p }
}

func NewPlanner(reg *subschema.Registry, opts ...Option) *Planner {
	p := &Planner{
		reg:        reg,
		precedence: FirstWins,
		memo:       make(map[uint64][]*step),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Complete enriches the sibling entities of one merged type until every
// requested field is present or no entry point can supply the remainder.
// Fields that stay missing resolve to null per normal GraphQL nullability;
// that is not a delegation failure. Delegation errors are attached to the
// affected entities as unpathed errors and never abort siblings.
//
// requested must be spread-free: inline fragments are walked, but named
// fragment spreads are not resolved here. The host flattens its fragments
// into the selection before calling, the same way it hands field nodes to a
// resolver.
func (p *Planner) Complete(ctx context.Context, typeName string, objects []*external.Object, requested language.SelectionSet) {
	for {
		groups := p.groupEntities(typeName, objects, requested)
		if len(groups) == 0 {
			return
		}
		var wg sync.WaitGroup
		for _, g := range groups {
			wg.Add(1)
			go func(g *group) {
				defer wg.Done()
				p.resolveGroup(ctx, typeName, g, requested)
			}(g)
		}
		wg.Wait()
	}
}

type group struct {
	st   *step
	objs []*external.Object
}

func (p *Planner) groupEntities(typeName string, objects []*external.Object, requested language.SelectionSet) []*group {
	var groups []*group
	index := make(map[*subschema.EntryPoint]*group)
	for _, obj := range objects {
		if obj == nil || !hasMissing(obj, requested) {
			continue
		}
		st := p.planFor(typeName, obj)
		if st == nil {
			continue
		}
		g := index[st.entry]
		if g == nil {
			g = &group{st: st}
			index[st.entry] = g
			groups = append(groups, g)
		}
		g.objs = append(g.objs, obj)
	}
	return groups
}

// resolveGroup performs one batched delegation for every entity sharing an
// entry point, then merges the returned objects positionally by key order.
func (p *Planner) resolveGroup(ctx context.Context, typeName string, g *group, requested language.SelectionSet) {
	sub, entry := g.st.sub, g.st.entry
	cfg := sub.Merge[typeName]

	var keys []any
	var keyed []*external.Object
	for _, obj := range g.objs {
		// The subschema counts as visited for every entity in the group; a
		// key that resolved to null will not resolve later.
		obj.AddSource(sub)
		key := entry.Key(obj.Fields())
		if key == nil {
			continue
		}
		keys = append(keys, key)
		keyed = append(keyed, obj)
	}

	eventbus.Publish(ctx, events.EntityResolve{
		TypeName:  typeName,
		Subschema: sub.Name,
		FieldName: entry.FieldName,
		Entities:  len(keyed),
		Skipped:   len(g.objs) - len(keyed),
	})
	if len(keyed) == 0 {
		return
	}

	selection := missingSelections(g.objs, requested)
	info := &delegate.Info{
		FieldName: entry.FieldName,
		FieldNodes: []*language.Field{{
			Name:         entry.FieldName,
			SelectionSet: selection,
		}},
		Operation: language.Query,
	}
	value, err := delegate.Delegate(ctx, &delegate.Context{
		Subschema: sub,
		FieldName: entry.FieldName,
		Args:      entry.ArgsFromKeys(keys),
		Required:  entry.SelectionSet,
		Info:      info,
	})
	if err != nil {
		for _, obj := range keyed {
			obj.AppendUnpathedErrors(graphql.WrapError(err, nil))
		}
		return
	}

	for i, elem := range alignResults(value, len(keyed)) {
		if elem == nil {
			// Backend had nothing for this key; partial data is valid.
			continue
		}
		if src, ok := elem.(*external.Object); ok {
			Merge(keyed[i], src, cfg.ComputedFields, p.precedence)
		}
	}
}

// alignResults normalizes the entry point's return value into one slot per
// key, in key order.
func alignResults(value any, n int) []any {
	switch v := value.(type) {
	case []any:
		if len(v) >= n {
			return v[:n]
		}
		out := make([]any, n)
		copy(out, v)
		return out
	case nil:
		return make([]any, n)
	default:
		out := make([]any, n)
		out[0] = v
		return out
	}
}

// selectionNames flattens a selection set to its top-level response names.
func selectionNames(sel language.SelectionSet) []string {
	var names []string
	seen := make(map[string]bool)
	var visit func(set language.SelectionSet)
	visit = func(set language.SelectionSet) {
		for _, s := range set {
			switch node := s.(type) {
			case *language.Field:
				name := node.Name
				if node.Alias != "" {
					name = node.Alias
				}
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			case *language.InlineFragment:
				visit(node.SelectionSet)
			}
		}
	}
	visit(sel)
	return names
}

func hasMissing(obj *external.Object, requested language.SelectionSet) bool {
	for _, name := range selectionNames(requested) {
		if name == "__typename" {
			continue
		}
		if _, ok := obj.Get(name); !ok {
			return true
		}
	}
	return false
}

// missingSelections returns copies of the requested selections absent from
// at least one entity in the group.
func missingSelections(objs []*external.Object, requested language.SelectionSet) language.SelectionSet {
	var out language.SelectionSet
	seen := make(map[string]bool)
	var visit func(set language.SelectionSet)
	visit = func(set language.SelectionSet) {
		for _, s := range set {
			switch node := s.(type) {
			case *language.Field:
				name := node.Name
				if node.Alias != "" {
					name = node.Alias
				}
				if name == "__typename" || seen[name] {
					continue
				}
				if missingFromAny(objs, name) {
					seen[name] = true
					out = append(out, language.CopyField(node))
				}
			case *language.InlineFragment:
				visit(node.SelectionSet)
			}
		}
	}
	visit(requested)
	return out
}

func missingFromAny(objs []*external.Object, name string) bool {
	for _, obj := range objs {
		if _, ok := obj.Get(name); !ok {
			return true
		}
	}
	return false
}
