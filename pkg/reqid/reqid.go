package reqid

import (
	"context"
	"math/rand"
)

// key is the context key for the execution ID.
type key struct{}

// NewContext returns a copy of parent with a new random execution ID stored.
// It also returns the generated ID. One ID spans all delegations issued for
// a single host query execution.
func NewContext(parent context.Context) (context.Context, int64) {
	id := rand.Int63()
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the execution ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(key{})
	id, ok := v.(int64)
	return id, ok
}
