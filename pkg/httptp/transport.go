// Package httptp is the HTTP reference implementation of the Executor and
// Subscriber capabilities: GraphQL-over-HTTP POST for queries and mutations,
// server-sent events for subscriptions.
package httptp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	events "github.com/CptLemming/graphql-tools/pkg/events"
	eventbus "github.com/CptLemming/graphql-tools/pkg/eventbus"
	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// Executor sends requests to one GraphQL endpoint.
type Executor struct {
	url  string
	opts *Options
}

var _ graphql.Executor = (*Executor)(nil)

func NewExecutor(url string, opts ...Option) *Executor {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	return &Executor{url: url, opts: o}
}

type wireRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type wireError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path"`
	Extensions map[string]any `json:"extensions"`
}

type wireResult struct {
	Data       any            `json:"data"`
	Errors     []wireError    `json:"errors"`
	Extensions map[string]any `json:"extensions"`
}

// Execute posts the request as JSON and decodes the GraphQL response.
// Transport failures are returned as errors; the caller folds them into the
// in-band error surface. The request is never mutated.
func (e *Executor) Execute(ctx context.Context, req *graphql.Request) (*graphql.Result, error) {
	if _, ok := ctx.Deadline(); !ok && e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	httpReq, err := e.buildHTTPRequest(ctx, req, "application/json")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := e.opts.Client.Do(httpReq)
	if err != nil {
		eventbus.Publish(ctx, events.TransportCall{URL: e.url, Duration: time.Since(start), Err: err})
		return nil, err
	}
	defer resp.Body.Close()
	eventbus.Publish(ctx, events.TransportCall{URL: e.url, Status: resp.StatusCode, Duration: time.Since(start)})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var wire wireResult
	if err := json.Unmarshal(body, &wire); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}
		return nil, err
	}
	return decodeResult(&wire), nil
}

func (e *Executor) buildHTTPRequest(ctx context.Context, req *graphql.Request, accept string) (*http.Request, error) {
	payload, err := json.Marshal(wireRequest{
		Query:         language.FormatDocument(req.Document),
		OperationName: req.OperationName,
		Variables:     req.Variables,
	})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	for key, vals := range e.opts.Headers {
		for _, v := range vals {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)
	return httpReq, nil
}

func decodeResult(wire *wireResult) *graphql.Result {
	res := &graphql.Result{Data: wire.Data, Extensions: wire.Extensions}
	for _, we := range wire.Errors {
		res.Errors = append(res.Errors, graphql.Error{
			Message:    we.Message,
			Path:       decodePath(we.Path),
			Extensions: we.Extensions,
		})
	}
	return res
}

// decodePath normalizes JSON-decoded path elements: list indexes arrive as
// float64 and become int.
func decodePath(raw []any) graphql.Path {
	if raw == nil {
		return nil
	}
	path := make(graphql.Path, len(raw))
	for i, elem := range raw {
		if f, ok := elem.(float64); ok {
			path[i] = int(f)
			continue
		}
		path[i] = elem
	}
	return path
}
