package httptp

import "errors"

var (
	// ErrUnexpectedStatus indicates the backend answered with a non-2xx
	// status and no parseable GraphQL body.
	ErrUnexpectedStatus = errors.New("httptp: unexpected response status")
)
