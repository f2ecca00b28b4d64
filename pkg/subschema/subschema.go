package subschema

import (
	"time"

	graphql "github.com/CptLemming/graphql-tools/pkg/graphql"
	language "github.com/CptLemming/graphql-tools/pkg/language"
)

// Config is the build-time description of one backend service.
type Config struct {
	// Name identifies the subschema in errors, events and traces.
	Name string
	// Schema is the backend's type schema. If nil, SDL is loaded instead.
	Schema *language.Schema
	SDL    string

	Executor   graphql.Executor
	Subscriber graphql.Subscriber

	// Batch coalesces concurrent delegations to this subschema into single
	// combined calls.
	Batch        bool
	BatchWindow  time.Duration
	BatchMaxSize int

	// Merge declares type-merging participation per object type name.
	Merge map[string]MergedTypeConfig
}

// Subschema is the built, immutable record of one backend service. It is
// owned by the Registry and safe for unsynchronized concurrent reads.
type Subschema struct {
	Name   string
	Schema *language.Schema
	Merge  map[string]MergedTypeConfig

	executor   graphql.Executor
	subscriber graphql.Subscriber
}

// Executor returns the executor for this subschema. When the subschema was
// built with Batch set, this is the batching decorator.
func (s *Subschema) Executor() graphql.Executor { return s.executor }

func (s *Subschema) Subscriber() graphql.Subscriber { return s.subscriber }
