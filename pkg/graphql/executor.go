package graphql

import "context"

// Executor runs a Request against one subschema.
//
// Contract:
//   - The request must not be mutated.
//   - Backend and field errors are reported inside the Result.
//   - A non-nil error return is reserved for transport-level failures
//     (connection refused, timeout). Callers convert it with ErrorResult so
//     upstream code has one error surface to branch on.
//   - Implementations enforce their own timeouts; a timeout fails only the
//     calling delegation, never its siblings.
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Result, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req *Request) (*Result, error)

func (f ExecutorFunc) Execute(ctx context.Context, req *Request) (*Result, error) {
	return f(ctx, req)
}

// Subscriber runs a subscription Request and yields a sequence of results.
// The channel closes when the subscription completes or ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, req *Request) (<-chan *Result, error)
}
