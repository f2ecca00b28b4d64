package delegate

import (
	"fmt"
	"sort"

	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// BuildRequest produces the minimal, self-contained execution request for a
// delegation: only the fragments and variables transitively reachable from
// the delegated selection are included, key fields required by the planner
// are injected, and abstract-typed branches get a __typename selection so
// the backend result can be disambiguated.
func BuildRequest(dctx *Context) (*graphql.Request, error) {
	built, err := buildRequest(dctx)
	if err != nil {
		return nil, err
	}
	return built.req, nil
}

type builtRequest struct {
	req *graphql.Request
	// fieldKey is the response key of the delegated root field.
	fieldKey string
	// requested holds the response names selected on the delegated value.
	requested []string
}

func buildRequest(dctx *Context) (*builtRequest, error) {
	target := dctx.targetField()
	if target == "" {
		return nil, fmt.Errorf("delegate: no target field")
	}
	opType := dctx.operationType()

	var selection language.SelectionSet
	for _, node := range dctx.Info.FieldNodes {
		selection = append(selection, language.CopySelectionSet(node.SelectionSet)...)
	}
	selection = injectSelections(selection, dctx.Required)

	sch := dctx.Subschema.Schema
	rootDef := rootTypeDef(sch, opType)
	var fieldDef *language.FieldDefinition
	if rootDef != nil {
		fieldDef = rootDef.Fields.ForName(target)
	}

	var returnDef *language.Definition
	if fieldDef != nil {
		returnDef = sch.Types[fieldDef.Type.Name()]
	}
	if len(selection) == 0 && isComposite(returnDef) {
		// Never emit an empty document for a composite-typed field.
		selection = language.SelectionSet{typenameField()}
	}
	if isAbstract(returnDef) && findField(selection, "__typename") == nil {
		// The delegated value itself needs disambiguating, not just its
		// abstract-typed children.
		selection = append(selection, typenameField())
	}
	ensureTypenames(sch, returnDef, selection)

	var arguments language.ArgumentList
	if dctx.Args != nil {
		arguments = argumentsFromValues(dctx.Args)
	} else if len(dctx.Info.FieldNodes) > 0 {
		arguments = language.CopyField(dctx.Info.FieldNodes[0]).Arguments
	}

	rootField := &language.Field{
		Name:         target,
		Arguments:    arguments,
		SelectionSet: selection,
	}

	fragments, err := reachableFragments(selection, dctx.Info.Fragments)
	if err != nil {
		return nil, err
	}
	for _, frag := range fragments {
		ensureTypenames(sch, sch.Types[frag.TypeCondition], frag.SelectionSet)
	}

	usedVars := make(map[string]struct{})
	collectFieldVariables(rootField, usedVars)
	for _, frag := range fragments {
		collectSelectionVariables(frag.SelectionSet, usedVars)
	}

	varDefs, variables, err := declareVariables(dctx.Info, usedVars)
	if err != nil {
		return nil, err
	}

	operation := &language.OperationDefinition{
		Operation:           opType,
		VariableDefinitions: varDefs,
		SelectionSet:        language.SelectionSet{rootField},
	}
	doc := &language.QueryDocument{
		Operations: language.OperationList{operation},
		Fragments:  fragments,
	}

	return &builtRequest{
		req: &graphql.Request{
			Document:      doc,
			OperationType: opType,
			Variables:     variables,
		},
		fieldKey:  target,
		requested: responseNames(selection, fragments),
	}, nil
}

// injectSelections merges required key selections into sel, adding only the
// fields not already present. Nested requirements merge recursively.
func injectSelections(sel language.SelectionSet, required language.SelectionSet) language.SelectionSet {
	for _, req := range required {
		reqField, ok := req.(*language.Field)
		if !ok {
			continue
		}
		existing := findField(sel, responseName(reqField))
		if existing == nil {
			sel = append(sel, language.CopyField(reqField))
			continue
		}
		if len(reqField.SelectionSet) > 0 {
			existing.SelectionSet = injectSelections(existing.SelectionSet, reqField.SelectionSet)
		}
	}
	return sel
}

func findField(sel language.SelectionSet, name string) *language.Field {
	for _, s := range sel {
		if f, ok := s.(*language.Field); ok && responseName(f) == name {
			return f
		}
	}
	return nil
}

func responseName(f *language.Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

func typenameField() *language.Field {
	return &language.Field{Name: "__typename"}
}

func rootTypeDef(sch *language.Schema, op language.Operation) *language.Definition {
	if sch == nil {
		return nil
	}
	switch op {
	case language.Mutation:
		return sch.Mutation
	case language.Subscription:
		return sch.Subscription
	default:
		return sch.Query
	}
}

func isAbstract(def *language.Definition) bool {
	return def != nil && (def.Kind == language.Interface || def.Kind == language.Union)
}

func isComposite(def *language.Definition) bool {
	if def == nil {
		// Without type information assume composite; an empty document is
		// worse than a redundant __typename.
		return true
	}
	switch def.Kind {
	case language.Object, language.Interface, language.Union:
		return true
	default:
		return false
	}
}

// ensureTypenames walks the selection tree and adds a __typename selection
// wherever a field's return type is abstract in the target schema.
func ensureTypenames(sch *language.Schema, parentDef *language.Definition, sel language.SelectionSet) {
	if sch == nil {
		return
	}
	for _, s := range sel {
		switch node := s.(type) {
		case *language.Field:
			if parentDef == nil || len(node.SelectionSet) == 0 {
				continue
			}
			fd := parentDef.Fields.ForName(node.Name)
			if fd == nil {
				continue
			}
			childDef := sch.Types[fd.Type.Name()]
			if isAbstract(childDef) {
				addTypename(node)
			}
			ensureTypenames(sch, childDef, node.SelectionSet)
		case *language.InlineFragment:
			condDef := parentDef
			if node.TypeCondition != "" {
				condDef = sch.Types[node.TypeCondition]
			}
			ensureTypenames(sch, condDef, node.SelectionSet)
		}
	}
}

func addTypename(f *language.Field) {
	if findField(f.SelectionSet, "__typename") == nil {
		f.SelectionSet = append(f.SelectionSet, typenameField())
	}
}

// reachableFragments resolves the fragment spreads transitively reachable
// from sel. An unknown spread is a request-construction error.
func reachableFragments(sel language.SelectionSet, defs language.FragmentDefinitionList) (language.FragmentDefinitionList, error) {
	var out language.FragmentDefinitionList
	seen := make(map[string]bool)

	var visit func(set language.SelectionSet) error
	visit = func(set language.SelectionSet) error {
		for _, s := range set {
			switch node := s.(type) {
			case *language.Field:
				if err := visit(node.SelectionSet); err != nil {
					return err
				}
			case *language.InlineFragment:
				if err := visit(node.SelectionSet); err != nil {
					return err
				}
			case *language.FragmentSpread:
				if seen[node.Name] {
					continue
				}
				seen[node.Name] = true
				def := defs.ForName(node.Name)
				if def == nil {
					return fmt.Errorf("delegate: fragment %q not found", node.Name)
				}
				cp := language.CopyFragment(def)
				out = append(out, cp)
				if err := visit(cp.SelectionSet); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := visit(sel); err != nil {
		return nil, err
	}
	return out, nil
}

func collectFieldVariables(f *language.Field, used map[string]struct{}) {
	for _, arg := range f.Arguments {
		collectValueVariables(arg.Value, used)
	}
	for _, d := range f.Directives {
		for _, arg := range d.Arguments {
			collectValueVariables(arg.Value, used)
		}
	}
	collectSelectionVariables(f.SelectionSet, used)
}

func collectSelectionVariables(sel language.SelectionSet, used map[string]struct{}) {
	for _, s := range sel {
		switch node := s.(type) {
		case *language.Field:
			collectFieldVariables(node, used)
		case *language.InlineFragment:
			for _, d := range node.Directives {
				for _, arg := range d.Arguments {
					collectValueVariables(arg.Value, used)
				}
			}
			collectSelectionVariables(node.SelectionSet, used)
		case *language.FragmentSpread:
			for _, d := range node.Directives {
				for _, arg := range d.Arguments {
					collectValueVariables(arg.Value, used)
				}
			}
		}
	}
}

func collectValueVariables(v *language.Value, used map[string]struct{}) {
	if v == nil {
		return
	}
	if v.Kind == language.Variable {
		used[v.Raw] = struct{}{}
	}
	for _, c := range v.Children {
		collectValueVariables(c.Value, used)
	}
}

// declareVariables keeps only the reachable variable definitions. Declaring
// an unreachable variable would fail the backend's own validation.
func declareVariables(info *Info, used map[string]struct{}) (language.VariableDefinitionList, map[string]any, error) {
	if len(used) == 0 {
		return nil, nil, nil
	}
	defs := make(language.VariableDefinitionList, 0, len(used))
	variables := make(map[string]any, len(used))
	for _, vd := range language.CopyVariableDefinitions(info.VariableDefinitions) {
		if _, ok := used[vd.Variable]; !ok {
			continue
		}
		defs = append(defs, vd)
		if val, ok := info.Variables[vd.Variable]; ok {
			variables[vd.Variable] = val
		}
		delete(used, vd.Variable)
	}
	for name := range used {
		return nil, nil, fmt.Errorf("delegate: variable $%s is not declared", name)
	}
	return defs, variables, nil
}

func argumentsFromValues(args map[string]any) language.ArgumentList {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(language.ArgumentList, 0, len(args))
	for _, k := range keys {
		out = append(out, &language.Argument{Name: k, Value: valueToAST(args[k])})
	}
	return out
}

// responseNames lists the response keys selected on the delegated value,
// including those contributed through fragments.
func responseNames(sel language.SelectionSet, fragments language.FragmentDefinitionList) []string {
	seen := make(map[string]bool)
	var names []string
	var visit func(set language.SelectionSet)
	visit = func(set language.SelectionSet) {
		for _, s := range set {
			switch node := s.(type) {
			case *language.Field:
				name := responseName(node)
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			case *language.InlineFragment:
				visit(node.SelectionSet)
			case *language.FragmentSpread:
				if def := fragments.ForName(node.Name); def != nil {
					visit(def.SelectionSet)
				}
			}
		}
	}
	visit(sel)
	return names
}
