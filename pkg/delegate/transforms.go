package delegate

import (
	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// Transform rewrites a delegated request before dispatch and its result
// after. Both methods are pure: they return a new value and leave the input
// untouched. Request transforms run in list order, result transforms in
// reverse, so each transform sees the result shape it produced the request
// for.
type Transform interface {
	TransformRequest(req *graphql.Request) *graphql.Request
	TransformResult(res *graphql.Result) *graphql.Result
}

// RequestTransform adapts a request-only function to Transform.
type RequestTransform func(req *graphql.Request) *graphql.Request

func (f RequestTransform) TransformRequest(req *graphql.Request) *graphql.Request { return f(req) }
func (f RequestTransform) TransformResult(res *graphql.Result) *graphql.Result    { return res }

// ResultTransform adapts a result-only function to Transform.
type ResultTransform func(res *graphql.Result) *graphql.Result

func (f ResultTransform) TransformRequest(req *graphql.Request) *graphql.Request { return req }
func (f ResultTransform) TransformResult(res *graphql.Result) *graphql.Result    { return f(res) }

// RenameRootField delegates to a differently named root field while keeping
// the original response key, by aliasing the renamed field back to it.
func RenameRootField(from, to string) Transform {
	return RequestTransform(func(req *graphql.Request) *graphql.Request {
		op := req.Operation()
		if op == nil {
			return req
		}
		renamed := language.CopySelectionSet(op.SelectionSet)
		for _, sel := range renamed {
			f, ok := sel.(*language.Field)
			if !ok || f.Name != from {
				continue
			}
			if f.Alias == "" {
				f.Alias = from
			}
			f.Name = to
		}
		next := *op
		next.SelectionSet = renamed
		doc := *req.Document
		doc.Operations = language.OperationList{&next}
		out := *req
		out.Document = &doc
		return &out
	})
}

// ForwardExtensions merges ext into the outgoing request's extensions,
// without overwriting keys the request already carries.
func ForwardExtensions(ext map[string]any) Transform {
	return RequestTransform(func(req *graphql.Request) *graphql.Request {
		if len(ext) == 0 {
			return req
		}
		merged := make(map[string]any, len(ext)+len(req.Extensions))
		for k, v := range ext {
			merged[k] = v
		}
		for k, v := range req.Extensions {
			merged[k] = v
		}
		out := *req
		out.Extensions = merged
		return &out
	})
}

func applyRequestTransforms(transforms []Transform, req *graphql.Request) *graphql.Request {
	for _, t := range transforms {
		req = t.TransformRequest(req)
	}
	return req
}

func applyResultTransforms(transforms []Transform, res *graphql.Result) *graphql.Result {
	for i := len(transforms) - 1; i >= 0; i-- {
		res = transforms[i].TransformResult(res)
	}
	return res
}
