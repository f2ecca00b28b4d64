package language

import (
	"strings"
	"testing"
)

func TestCopySelectionSetIsDeep(t *testing.T) {
	doc, err := ParseQuery(`
		query Q($id: ID!) {
			user(id: $id) @include(if: true) {
				name
				... on Admin { role }
				...Extra
			}
		}
		fragment Extra on User { email }
	`)
	if err != nil {
		t.Fatal(err)
	}
	op := doc.Operations[0]

	cp := CopySelectionSet(op.SelectionSet)

	root := cp[0].(*Field)
	root.Alias = "_0_user"
	root.Arguments[0].Value.Raw = "renamedVar"
	root.SelectionSet = append(root.SelectionSet, &Field{Name: "id"})
	root.Directives[0].Arguments[0].Name = "unless"

	orig := op.SelectionSet[0].(*Field)
	if orig.Alias != "user" {
		t.Fatalf("original alias mutated: %q", orig.Alias)
	}
	if orig.Arguments[0].Value.Raw != "id" {
		t.Fatalf("original argument mutated: %q", orig.Arguments[0].Value.Raw)
	}
	if len(orig.SelectionSet) != 3 {
		t.Fatalf("original selection set grew: %d", len(orig.SelectionSet))
	}
	if orig.Directives[0].Arguments[0].Name != "if" {
		t.Fatalf("original directive mutated: %q", orig.Directives[0].Arguments[0].Name)
	}
}

func TestCopyVariableDefinitions(t *testing.T) {
	doc, err := ParseQuery(`query Q($first: Int = 10) { items(first: $first) }`)
	if err != nil {
		t.Fatal(err)
	}
	defs := doc.Operations[0].VariableDefinitions

	cp := CopyVariableDefinitions(defs)
	cp[0].Variable = "limit"
	cp[0].DefaultValue.Raw = "20"

	if defs[0].Variable != "first" {
		t.Fatalf("original variable name mutated: %q", defs[0].Variable)
	}
	if defs[0].DefaultValue.Raw != "10" {
		t.Fatalf("original default mutated: %q", defs[0].DefaultValue.Raw)
	}
}

func TestFormatDocumentRoundTrip(t *testing.T) {
	doc, err := ParseQuery(`query Q { user(id: "1") { name } }`)
	if err != nil {
		t.Fatal(err)
	}
	text := FormatDocument(doc)
	if !strings.Contains(text, "user(id:") {
		t.Fatalf("formatted document missing field call:\n%s", text)
	}
	if _, err := ParseQuery(text); err != nil {
		t.Fatalf("formatted document does not reparse: %v", err)
	}
}
