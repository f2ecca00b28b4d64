package batch

import (
	"strings"

	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
)

// demultiplex splits a combined result into one sub-result per caller. Data
// keys and error paths are routed by alias prefix, with the prefix stripped.
// Errors with no path cannot be attributed, so they are duplicated into
// every sub-result: over-reporting beats silent loss.
func demultiplex(res *graphql.Result, n int) []*graphql.Result {
	out := make([]*graphql.Result, n)
	for i := range out {
		out[i] = &graphql.Result{Extensions: res.Extensions}
	}

	if data, ok := res.Data.(map[string]any); ok {
		for i := range out {
			prefix := batchPrefix(i)
			sub := make(map[string]any)
			for k, v := range data {
				if strings.HasPrefix(k, prefix) {
					sub[strings.TrimPrefix(k, prefix)] = v
				}
			}
			out[i].Data = sub
		}
	}

	for _, err := range res.Errors {
		rewritten, i, routed := routeError(err, n)
		if !routed {
			for j := range out {
				out[j].Errors = append(out[j].Errors, err)
			}
			continue
		}
		out[i].Errors = append(out[i].Errors, rewritten)
	}

	return out
}

// routeError strips the alias prefix from the head of the error path and
// returns the owning request index. Errors without a recognizable prefixed
// head are unroutable.
func routeError(err graphql.Error, n int) (graphql.Error, int, bool) {
	if len(err.Path) == 0 {
		return err, 0, false
	}
	head, ok := err.Path[0].(string)
	if !ok {
		return err, 0, false
	}
	for i := 0; i < n; i++ {
		prefix := batchPrefix(i)
		if strings.HasPrefix(head, prefix) {
			rewritten := make(graphql.Path, len(err.Path))
			copy(rewritten, err.Path)
			rewritten[0] = strings.TrimPrefix(head, prefix)
			err.Path = rewritten
			return err, i, true
		}
	}
	return err, 0, false
}
