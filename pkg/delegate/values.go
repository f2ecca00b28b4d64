package delegate

import (
	"fmt"
	"sort"
	"strconv"

	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// valueToAST encodes a coerced Go value as a literal AST value for use as a
// delegated field argument. Map keys are emitted in sorted order so built
// documents are deterministic.
func valueToAST(v any) *language.Value {
	switch val := v.(type) {
	case nil:
		return &language.Value{Kind: language.NullValue, Raw: "null"}
	case bool:
		return &language.Value{Kind: language.BooleanValue, Raw: strconv.FormatBool(val)}
	case string:
		return &language.Value{Kind: language.StringValue, Raw: val}
	case int:
		return &language.Value{Kind: language.IntValue, Raw: strconv.Itoa(val)}
	case int32:
		return &language.Value{Kind: language.IntValue, Raw: strconv.FormatInt(int64(val), 10)}
	case int64:
		return &language.Value{Kind: language.IntValue, Raw: strconv.FormatInt(val, 10)}
	case float64:
		return &language.Value{Kind: language.FloatValue, Raw: strconv.FormatFloat(val, 'g', -1, 64)}
	case float32:
		return &language.Value{Kind: language.FloatValue, Raw: strconv.FormatFloat(float64(val), 'g', -1, 32)}
	case []any:
		out := &language.Value{Kind: language.ListValue}
		for _, item := range val {
			out.Children = append(out.Children, &language.ChildValue{Value: valueToAST(item)})
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := &language.Value{Kind: language.ObjectValue}
		for _, k := range keys {
			out.Children = append(out.Children, &language.ChildValue{Name: k, Value: valueToAST(val[k])})
		}
		return out
	default:
		return &language.Value{Kind: language.StringValue, Raw: fmt.Sprintf("%v", val)}
	}
}
