package services

import (
	"errors"

	"doc-narrator-api/domain"
)

// progressEmitter guards the stream invariants for one stage invocation:
// completed counts never decrease, exactly one terminal event is sent, and
// the channel closes right after it. The channel is buffered so a stage can
// make progress while a slow consumer drains.
type progressEmitter struct {
	events       chan domain.ProgressEvent
	maxCompleted int
	terminated   bool
}

func newProgressEmitter() *progressEmitter {
	return &progressEmitter{
		events: make(chan domain.ProgressEvent, 16),
	}
}

func (p *progressEmitter) Events() <-chan domain.ProgressEvent {
	return p.events
}

// Emit sends a non-terminal event. Terminal statuses and regressing
// completed counts are coerced rather than propagated.
func (p *progressEmitter) Emit(event domain.ProgressEvent) {
	if p.terminated || event.Terminal() {
		return
	}
	if event.Completed < p.maxCompleted {
		event.Completed = p.maxCompleted
	}
	p.maxCompleted = event.Completed
	p.events <- event
}

// Done sends the successful terminal event and closes the stream.
func (p *progressEmitter) Done(event domain.ProgressEvent) {
	if p.terminated {
		return
	}
	p.terminated = true
	event.Status = domain.StatusDone
	p.events <- event
	close(p.events)
}

// Fail sends the error terminal event and closes the stream.
func (p *progressEmitter) Fail(err error, event domain.ProgressEvent) {
	if p.terminated {
		return
	}
	p.terminated = true
	event.Status = domain.StatusError
	if event.Message == "" && err != nil {
		event.Message = err.Error()
	}
	p.events <- event
	close(p.events)
}

// Collect drains a progress stream and returns its terminal event,
// collapsing the stream to a single final result for callers that only want
// success or failure. An error is returned when the terminal event is an
// error event or the stream closed without one.
func Collect(events <-chan domain.ProgressEvent) (domain.ProgressEvent, error) {
	var last domain.ProgressEvent
	sawTerminal := false
	for event := range events {
		last = event
		if event.Terminal() {
			sawTerminal = true
		}
	}
	if !sawTerminal {
		return last, errors.New("progress stream closed without a terminal event")
	}
	if last.Status == domain.StatusError {
		return last, errors.New(last.Message)
	}
	return last, nil
}
