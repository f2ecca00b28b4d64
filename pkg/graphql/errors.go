package graphql

import (
	"github.com/hashicorp/go-multierror"
)

// Error is a positioned GraphQL error. A nil Path marks an error that could
// not be attached to a response position (transport failures, batch-level
// errors).
type Error struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`

	original error
}

func (e Error) Error() string { return e.Message }

// Unwrap exposes the original error, if any, for errors.Is / errors.As.
func (e Error) Unwrap() error { return e.original }

// NewError creates a positioned error. Pass a nil path for unpathed errors.
func NewError(message string, path Path) Error {
	return Error{Message: message, Path: path}
}

// WrapError converts err into a positioned error keeping err reachable
// through Unwrap.
func WrapError(err error, path Path) Error {
	return Error{Message: err.Error(), Path: path, original: err}
}

// OffsetErrors rebases relative error paths onto the position of the
// delegated field in the parent selection. Unpathed errors pass through
// unchanged.
func OffsetErrors(errs []Error, base Path) []Error {
	if len(errs) == 0 || len(base) == 0 {
		return errs
	}
	out := make([]Error, len(errs))
	for i, e := range errs {
		if e.Path != nil {
			e.Path = e.Path.Join(base)
		}
		out[i] = e
	}
	return out
}

// CombineErrors folds independent errors applying to one resolved value into
// a single composite that still exposes the full list. Returns nil when errs
// is empty.
func CombineErrors(errs []Error) error {
	if len(errs) == 0 {
		return nil
	}
	var combined *multierror.Error
	for _, e := range errs {
		combined = multierror.Append(combined, e)
	}
	return combined.ErrorOrNil()
}
