package httptp

import (
	"net/http"
	"time"
)

// Options configures the HTTP transport behavior.
//
// Defaults:
// - Timeout: 3s (used only if the incoming context has no deadline)
// - Client:  http.DefaultClient
//
// All options are safe to leave zero-valued to use defaults.
type Options struct {
	Client  *http.Client
	Timeout time.Duration

	// Headers are added to every outgoing request (auth tokens, tracing).
	Headers http.Header
}

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Client:  http.DefaultClient,
		Timeout: 3 * time.Second,
		Headers: make(http.Header),
	}
}

func WithClient(c *http.Client) Option    { return func(o *Options) { o.Client = c } }
func WithTimeout(d time.Duration) Option  { return func(o *Options) { o.Timeout = d } }
func WithHeader(key, value string) Option { return func(o *Options) { o.Headers.Add(key, value) } }
func WithHeaders(h http.Header) Option    { return func(o *Options) { o.Headers = h.Clone() } }
