package merge

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	external "github.com/CptLemming/graphql-tools/pkg/external"
	subschema "github.com/CptLemming/graphql-tools/pkg/subschema"
)

// step is one viable way to enrich an entity: a subschema plus the entry
// point chosen on it.
type step struct {
	sub   *subschema.Subschema
	entry *subschema.EntryPoint
	// keyFields is the entry point's selection set flattened to response
	// names, used for satisfiability checks.
	keyFields []string
}

// planFor returns the ordered steps for an entity shape, then picks the
// first step whose subschema has not already contributed to this entity.
// Step computation is memoized by (typeName, sorted available field names)
// for the lifetime of the planner, i.e. one query execution.
func (p *Planner) planFor(typeName string, obj *external.Object) *step {
	available := obj.FieldNames()
	sort.Strings(available)

	digest := xxhash.New()
	_, _ = digest.WriteString(typeName)
	for _, name := range available {
		_, _ = digest.WriteString("\x00")
		_, _ = digest.WriteString(name)
	}
	key := digest.Sum64()

	p.mu.Lock()
	steps, ok := p.memo[key]
	if !ok {
		steps = p.computeSteps(typeName, available)
		p.memo[key] = steps
	}
	p.mu.Unlock()

	for _, st := range steps {
		if !obj.FromSource(st.sub) {
			return st
		}
	}
	return nil
}

// computeSteps ranks every satisfiable entry point for the given entity
// shape. Smaller key selections sort first (fewer fields to carry across
// round-trips); ties keep declaration order, so the ranking is
// deterministic across runs.
func (p *Planner) computeSteps(typeName string, available []string) []*step {
	availableSet := make(map[string]struct{}, len(available))
	for _, name := range available {
		availableSet[name] = struct{}{}
	}

	var steps []*step
	for _, sub := range p.reg.MergeCandidates(typeName) {
		cfg := sub.Merge[typeName]
		for i := range cfg.EntryPoints {
			ep := &cfg.EntryPoints[i]
			keyFields := selectionNames(ep.SelectionSet)
			if !satisfiable(keyFields, availableSet) {
				continue
			}
			steps = append(steps, &step{sub: sub, entry: ep, keyFields: keyFields})
		}
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return len(steps[i].keyFields) < len(steps[j].keyFields)
	})
	return steps
}

func satisfiable(keyFields []string, available map[string]struct{}) bool {
	for _, name := range keyFields {
		if _, ok := available[name]; !ok {
			return false
		}
	}
	return true
}
