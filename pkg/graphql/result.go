package graphql

// Result is the outcome of executing a Request. Data and Errors may both be
// populated: GraphQL permits partial success.
type Result struct {
	Data       any            `json:"data"`
	Errors     []Error        `json:"errors,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// ErrorResult converts a failure raised outside the result channel (a
// transport error) into the in-band form: no data, one unpathed error. This
// keeps a single error surface for everything downstream.
func ErrorResult(err error) *Result {
	return &Result{Errors: []Error{WrapError(err, nil)}}
}
