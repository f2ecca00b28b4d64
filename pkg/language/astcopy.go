package language

// Deep copies of query AST nodes. Delegation rewrites selections (alias
// prefixes, key injection) on documents owned by the host engine, so every
// rewrite works on a copy. Schema-side pointers (Definition,
// ObjectDefinition) are shared; they are read-only type information.

func CopySelectionSet(set SelectionSet) SelectionSet {
	if set == nil {
		return nil
	}
	out := make(SelectionSet, 0, len(set))
	for _, sel := range set {
		switch s := sel.(type) {
		case *Field:
			out = append(out, CopyField(s))
		case *InlineFragment:
			cp := *s
			cp.SelectionSet = CopySelectionSet(s.SelectionSet)
			cp.Directives = copyDirectives(s.Directives)
			out = append(out, &cp)
		case *FragmentSpread:
			cp := *s
			cp.Directives = copyDirectives(s.Directives)
			out = append(out, &cp)
		}
	}
	return out
}

func CopyField(f *Field) *Field {
	cp := *f
	cp.Arguments = copyArguments(f.Arguments)
	cp.Directives = copyDirectives(f.Directives)
	cp.SelectionSet = CopySelectionSet(f.SelectionSet)
	return &cp
}

func CopyFragment(f *FragmentDefinition) *FragmentDefinition {
	cp := *f
	cp.Directives = copyDirectives(f.Directives)
	cp.SelectionSet = CopySelectionSet(f.SelectionSet)
	return &cp
}

func CopyVariableDefinitions(defs VariableDefinitionList) VariableDefinitionList {
	if defs == nil {
		return nil
	}
	out := make(VariableDefinitionList, 0, len(defs))
	for _, d := range defs {
		cp := *d
		cp.DefaultValue = CopyValue(d.DefaultValue)
		out = append(out, &cp)
	}
	return out
}

func CopyValue(v *Value) *Value {
	if v == nil {
		return nil
	}
	cp := *v
	if v.Children != nil {
		cp.Children = make(ChildValueList, 0, len(v.Children))
		for _, c := range v.Children {
			cc := *c
			cc.Value = CopyValue(c.Value)
			cp.Children = append(cp.Children, &cc)
		}
	}
	return &cp
}

func copyArguments(args ArgumentList) ArgumentList {
	if args == nil {
		return nil
	}
	out := make(ArgumentList, 0, len(args))
	for _, a := range args {
		cp := *a
		cp.Value = CopyValue(a.Value)
		out = append(out, &cp)
	}
	return out
}

func copyDirectives(ds DirectiveList) DirectiveList {
	if ds == nil {
		return nil
	}
	out := make(DirectiveList, 0, len(ds))
	for _, d := range ds {
		cp := *d
		cp.Arguments = copyArguments(d.Arguments)
		out = append(out, &cp)
	}
	return out
}
