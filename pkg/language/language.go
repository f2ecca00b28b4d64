package language

import (
	"errors"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

var errSelectionSetShape = errors.New("language: expected a single anonymous selection set")

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL into a usable schema with type
// information resolved.
func LoadSchema(name, source string) (*Schema, error) {
	sch, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return sch, nil
}

// ParseSelectionSet parses a braced selection set such as "{ id sku }".
func ParseSelectionSet(source string) (SelectionSet, error) {
	doc, err := ParseQuery(source)
	if err != nil {
		return nil, err
	}
	if len(doc.Operations) != 1 {
		return nil, errSelectionSetShape
	}
	return doc.Operations[0].SelectionSet, nil
}

// MustSelectionSet is ParseSelectionSet for static configuration literals.
// It panics on malformed input.
func MustSelectionSet(source string) SelectionSet {
	set, err := ParseSelectionSet(source)
	if err != nil {
		panic(err)
	}
	return set
}

// FormatDocument renders a query document back to GraphQL source, suitable
// for sending over the wire.
func FormatDocument(doc *QueryDocument) string {
	var sb strings.Builder
	formatter.NewFormatter(&sb).FormatQueryDocument(doc)
	return sb.String()
}
