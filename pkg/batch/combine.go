package batch

import (
	"fmt"

	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

func batchPrefix(i int) string { return fmt.Sprintf("_%d_", i) }

// combine merges the pending requests into a single aliased request. Each
// request's root selections, variables and fragments are renamed with a
// positional prefix so nothing collides across callers.
func combine(reqs []*graphql.Request) (*graphql.Request, error) {
	opType := reqs[0].OperationType
	if opType == "" {
		opType = language.Query
	}

	merged := &language.OperationDefinition{Operation: opType}
	doc := &language.QueryDocument{}
	variables := make(map[string]any)

	for i, req := range reqs {
		op := req.Operation()
		if op == nil {
			return nil, fmt.Errorf("batch: request %d has no operation %q", i, req.OperationName)
		}

		prefix := batchPrefix(i)

		varRename := make(map[string]string, len(op.VariableDefinitions))
		for _, vd := range op.VariableDefinitions {
			varRename[vd.Variable] = prefix + vd.Variable
		}
		fragRename := make(map[string]string, len(req.Document.Fragments))
		for _, f := range req.Document.Fragments {
			fragRename[f.Name] = prefix + f.Name
		}

		for _, vd := range language.CopyVariableDefinitions(op.VariableDefinitions) {
			vd.Variable = prefix + vd.Variable
			merged.VariableDefinitions = append(merged.VariableDefinitions, vd)
		}
		for name, val := range req.Variables {
			if renamed, ok := varRename[name]; ok {
				variables[renamed] = val
			}
		}

		rootSel := language.CopySelectionSet(op.SelectionSet)
		renameSelections(rootSel, prefix, varRename, fragRename, true)
		merged.SelectionSet = append(merged.SelectionSet, rootSel...)

		for _, f := range req.Document.Fragments {
			cp := language.CopyFragment(f)
			cp.Name = prefix + cp.Name
			renameSelections(cp.SelectionSet, prefix, varRename, fragRename, false)
			doc.Fragments = append(doc.Fragments, cp)
		}
	}

	doc.Operations = language.OperationList{merged}
	return &graphql.Request{
		Document:      doc,
		OperationType: opType,
		Variables:     variables,
	}, nil
}

// renameSelections rewrites a copied selection tree in place. Root-level
// field aliases get the batch prefix; variable references and fragment
// spread names are rewritten at every level.
func renameSelections(set language.SelectionSet, prefix string, varRename, fragRename map[string]string, atRoot bool) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *language.Field:
			if atRoot {
				alias := s.Alias
				if alias == "" {
					alias = s.Name
				}
				s.Alias = prefix + alias
			}
			renameValues(s.Arguments, varRename)
			renameDirectives(s.Directives, varRename)
			renameSelections(s.SelectionSet, prefix, varRename, fragRename, false)
		case *language.InlineFragment:
			renameDirectives(s.Directives, varRename)
			// Fields directly under a root inline fragment are still root
			// selections and need the alias prefix.
			renameSelections(s.SelectionSet, prefix, varRename, fragRename, atRoot)
		case *language.FragmentSpread:
			if renamed, ok := fragRename[s.Name]; ok {
				s.Name = renamed
			}
			renameDirectives(s.Directives, varRename)
		}
	}
}

func renameDirectives(ds language.DirectiveList, varRename map[string]string) {
	for _, d := range ds {
		renameValues(d.Arguments, varRename)
	}
}

func renameValues(args language.ArgumentList, varRename map[string]string) {
	for _, a := range args {
		renameValue(a.Value, varRename)
	}
}

func renameValue(v *language.Value, varRename map[string]string) {
	if v == nil {
		return
	}
	if v.Kind == language.Variable {
		if renamed, ok := varRename[v.Raw]; ok {
			v.Raw = renamed
		}
	}
	for _, c := range v.Children {
		renameValue(c.Value, varRename)
	}
}
