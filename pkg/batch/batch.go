// Package batch decorates an Executor so that concurrently issued requests
// within one scheduling window are coalesced into a single combined call.
//
// A window opens when the first request of an operation type arrives and
// closes after Options.Window (or immediately once MaxSize requests are
// pending). On close the pending requests are merged into one document with
// uniquely prefixed root aliases, variables and fragments, dispatched once,
// and the combined result is demultiplexed back to the callers.
//
// The pending queue is the only mutable shared state; it is mutex guarded.
// Requests of different operation types never share a batch, and
// subscriptions always pass straight through.
package batch

import (
	"context"
	"sync"
	"time"

	events "github.com/CptLemming/graphql-tools/pkg/events"
	eventbus "github.com/CptLemming/graphql-tools/pkg/eventbus"
	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

type Options struct {
	// Window is how long the first pending request keeps the batch open.
	Window time.Duration
	// MaxSize flushes the batch early once this many requests are pending.
	// 0 means unbounded.
	MaxSize int
	// Name labels flush events, normally with the subschema name.
	Name string
}

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{Window: time.Millisecond}
}

func WithWindow(d time.Duration) Option { return func(o *Options) { o.Window = d } }
func WithMaxSize(n int) Option          { return func(o *Options) { o.MaxSize = n } }
func WithName(name string) Option       { return func(o *Options) { o.Name = name } }

// Executor wraps a target Executor with window batching.
type Executor struct {
	target graphql.Executor
	opts   *Options

	mu      sync.Mutex
	windows map[language.Operation]*window
}

var _ graphql.Executor = (*Executor)(nil)

type window struct {
	pending  []*pendingRequest
	timer    *time.Timer
	openedAt time.Time
}

type pendingRequest struct {
	ctx  context.Context
	req  *graphql.Request
	done chan outcome
}

type outcome struct {
	res *graphql.Result
	err error
}

func New(target graphql.Executor, opts ...Option) *Executor {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	return &Executor{
		target:  target,
		opts:    o,
		windows: make(map[language.Operation]*window),
	}
}

// Execute enqueues req into the current window and blocks until the flush
// delivers its sub-result. If ctx is cancelled while waiting, Execute
// returns early but an already-dispatched batch is not retracted.
func (e *Executor) Execute(ctx context.Context, req *graphql.Request) (*graphql.Result, error) {
	op := req.OperationType
	if op == "" {
		op = language.Query
	}
	if op == language.Subscription {
		return e.target.Execute(ctx, req)
	}

	p := &pendingRequest{ctx: ctx, req: req, done: make(chan outcome, 1)}

	e.mu.Lock()
	w := e.windows[op]
	if w == nil {
		w = &window{openedAt: time.Now()}
		e.windows[op] = w
		w.timer = time.AfterFunc(e.opts.Window, func() { e.closeWindow(op, w) })
	}
	w.pending = append(w.pending, p)
	full := e.opts.MaxSize > 0 && len(w.pending) >= e.opts.MaxSize
	if full {
		delete(e.windows, op)
		w.timer.Stop()
	}
	e.mu.Unlock()

	if full {
		e.dispatch(w)
	}

	select {
	case out := <-p.done:
		return out.res, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Executor) closeWindow(op language.Operation, w *window) {
	e.mu.Lock()
	if e.windows[op] != w {
		// Already flushed by MaxSize.
		e.mu.Unlock()
		return
	}
	delete(e.windows, op)
	e.mu.Unlock()
	e.dispatch(w)
}

func (e *Executor) dispatch(w *window) {
	if len(w.pending) == 0 {
		return
	}

	if len(w.pending) == 1 {
		p := w.pending[0]
		res, err := e.target.Execute(p.ctx, p.req)
		p.done <- outcome{res: res, err: err}
		return
	}

	// The combined call outlives any single caller, so it must not be
	// cancelled by one of them. Context values (request IDs, auth) are kept.
	ctx := context.WithoutCancel(w.pending[0].ctx)

	reqs := make([]*graphql.Request, len(w.pending))
	for i, p := range w.pending {
		reqs[i] = p.req
	}

	combined, err := combine(reqs)
	if err != nil {
		for _, p := range w.pending {
			p.done <- outcome{err: err}
		}
		return
	}

	eventbus.Publish(ctx, events.BatchFlush{
		Subschema: e.opts.Name,
		Size:      len(w.pending),
		Wait:      time.Since(w.openedAt),
	})

	res, err := e.target.Execute(ctx, combined)
	if err != nil {
		res = graphql.ErrorResult(err)
	}

	for i, sub := range demultiplex(res, len(w.pending)) {
		w.pending[i].done <- outcome{res: sub}
	}
}
