package events

import "time"

// BatchFlush is emitted when a batching executor dispatches one combined
// request for a scheduling window.
type BatchFlush struct {
	Subschema string
	Size      int           // requests coalesced into the flush
	Wait      time.Duration // time the window stayed open
}

// TransportCall is emitted by the HTTP transport around each wire request.
type TransportCall struct {
	URL      string
	Status   int
	Duration time.Duration
	Err      error
}
