package subschema

import (
	"fmt"

	batch "github.com/CptLemming/graphql-tools/pkg/batch"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// Registry is the read-only-after-build record of every backend service.
// It is built once at schema-composition time and safe for unsynchronized
// concurrent reads by any number of in-flight delegations.
type Registry struct {
	subschemas []*Subschema
	byName     map[string]*Subschema
	// candidates indexes, per merged type name, the subschemas whose merge
	// configuration declares entry points for it. Declaration order is
	// preserved; entry-point tie-breaking depends on it.
	candidates map[string][]*Subschema
}

// Build validates the configs and constructs the Registry. Validation
// failures are fatal: they surface here, before any query executes.
func Build(configs []Config) (*Registry, error) {
	reg := &Registry{
		byName:     make(map[string]*Subschema, len(configs)),
		candidates: make(map[string][]*Subschema),
	}

	for _, cfg := range configs {
		if cfg.Name == "" {
			return nil, fmt.Errorf("subschema: config with empty name")
		}
		if _, dup := reg.byName[cfg.Name]; dup {
			return nil, fmt.Errorf("subschema %q: duplicate name", cfg.Name)
		}
		if cfg.Executor == nil {
			return nil, fmt.Errorf("subschema %q: executor is required", cfg.Name)
		}

		sch := cfg.Schema
		if sch == nil {
			if cfg.SDL == "" {
				return nil, fmt.Errorf("subschema %q: schema or SDL is required", cfg.Name)
			}
			loaded, err := language.LoadSchema(cfg.Name, cfg.SDL)
			if err != nil {
				return nil, fmt.Errorf("subschema %q: %w", cfg.Name, err)
			}
			sch = loaded
		}

		if err := validateMerge(cfg.Name, sch, cfg.Merge); err != nil {
			return nil, err
		}

		exec := cfg.Executor
		if cfg.Batch {
			opts := []batch.Option{batch.WithName(cfg.Name)}
			if cfg.BatchWindow > 0 {
				opts = append(opts, batch.WithWindow(cfg.BatchWindow))
			}
			if cfg.BatchMaxSize > 0 {
				opts = append(opts, batch.WithMaxSize(cfg.BatchMaxSize))
			}
			exec = batch.New(exec, opts...)
		}

		sub := &Subschema{
			Name:       cfg.Name,
			Schema:     sch,
			Merge:      cfg.Merge,
			executor:   exec,
			subscriber: cfg.Subscriber,
		}
		reg.subschemas = append(reg.subschemas, sub)
		reg.byName[sub.Name] = sub
		for typeName := range sub.Merge {
			reg.candidates[typeName] = append(reg.candidates[typeName], sub)
		}
	}

	// Candidate order follows config order, not map iteration order.
	for typeName, subs := range reg.candidates {
		ordered := make([]*Subschema, 0, len(subs))
		for _, sub := range reg.subschemas {
			if _, ok := sub.Merge[typeName]; ok {
				ordered = append(ordered, sub)
			}
		}
		reg.candidates[typeName] = ordered
	}

	return reg, nil
}

func validateMerge(name string, sch *language.Schema, merge map[string]MergedTypeConfig) error {
	for typeName, cfg := range merge {
		def := sch.Types[typeName]
		if def == nil {
			return fmt.Errorf("subschema %q: merged type %q not found in schema", name, typeName)
		}
		if def.Kind != language.Object {
			return fmt.Errorf("subschema %q: merged type %q is %s, want OBJECT", name, typeName, def.Kind)
		}
		for i, ep := range cfg.EntryPoints {
			if ep.FieldName == "" {
				return fmt.Errorf("subschema %q: merged type %q: entry point %d has no field name", name, typeName, i)
			}
			if len(ep.SelectionSet) == 0 {
				return fmt.Errorf("subschema %q: merged type %q: entry point %q has an empty selection set", name, typeName, ep.FieldName)
			}
			if ep.Key == nil || ep.ArgsFromKeys == nil {
				return fmt.Errorf("subschema %q: merged type %q: entry point %q must define both key and argsFromKeys", name, typeName, ep.FieldName)
			}
			if root := sch.Query; root == nil || root.Fields.ForName(ep.FieldName) == nil {
				return fmt.Errorf("subschema %q: merged type %q: entry point field %q not found on Query", name, typeName, ep.FieldName)
			}
		}
		for field, sel := range cfg.ComputedFields {
			if len(sel) == 0 {
				return fmt.Errorf("subschema %q: merged type %q: computed field %q has an empty selection set", name, typeName, field)
			}
			if def.Fields.ForName(field) == nil {
				return fmt.Errorf("subschema %q: merged type %q: computed field %q not found", name, typeName, field)
			}
		}
	}
	return nil
}

// Subschemas returns the built subschemas in config order.
func (r *Registry) Subschemas() []*Subschema { return r.subschemas }

// ForName returns the subschema with the given name, or nil.
func (r *Registry) ForName(name string) *Subschema { return r.byName[name] }

// MergeCandidates returns, in config order, every subschema declaring merge
// entry points for typeName.
func (r *Registry) MergeCandidates(typeName string) []*Subschema {
	return r.candidates[typeName]
}
