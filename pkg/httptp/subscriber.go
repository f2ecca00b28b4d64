package httptp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/r3labs/sse/v2"

	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
)

var (
	headerData  = []byte("data:")
	headerEvent = []byte("event:")

	eventTypeComplete = []byte("complete")
	eventTypeNext     = []byte("next")
)

// Subscriber runs subscription operations over the GraphQL-SSE protocol.
type Subscriber struct {
	url  string
	opts *Options
}

var _ graphql.Subscriber = (*Subscriber)(nil)

func NewSubscriber(url string, opts ...Option) *Subscriber {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	return &Subscriber{url: url, opts: o}
}

// Subscribe opens the event stream and yields one decoded result per `next`
// event. The channel closes on `complete`, stream end, or ctx cancellation.
func (s *Subscriber) Subscribe(ctx context.Context, req *graphql.Request) (<-chan *graphql.Result, error) {
	exec := &Executor{url: s.url, opts: s.opts}
	httpReq, err := exec.buildHTTPRequest(ctx, req, "text/event-stream")
	if err != nil {
		return nil, err
	}

	resp, err := s.opts.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	out := make(chan *graphql.Result)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		reader := sse.NewEventStreamReader(resp.Body, math.MaxInt)
		for {
			if ctx.Err() != nil {
				return
			}
			msg, err := reader.ReadEvent()
			if err != nil {
				return
			}
			if len(msg) == 0 {
				continue
			}

			// Normalize crlf to lf and split per the SSE spec.
			lines := bytes.FieldsFunc(msg, func(r rune) bool { return r == '\n' || r == '\r' })
			for _, line := range lines {
				switch {
				case bytes.HasPrefix(line, headerData):
					data := trim(line[len(headerData):])
					if len(data) == 0 {
						continue
					}
					var wire wireResult
					if err := json.Unmarshal(data, &wire); err != nil {
						continue
					}
					select {
					case out <- decodeResult(&wire):
					case <-ctx.Done():
						return
					}
				case bytes.HasPrefix(line, headerEvent):
					event := trim(line[len(headerEvent):])
					if bytes.Equal(event, eventTypeComplete) {
						return
					}
					if bytes.Equal(event, eventTypeNext) {
						continue
					}
				case bytes.HasPrefix(line, []byte(":")):
					// SSE comment line, ignored.
					continue
				}
			}
		}
	}()
	return out, nil
}

func trim(data []byte) []byte {
	data = bytes.TrimLeft(data, " \t")
	return bytes.TrimRight(data, "\n")
}
