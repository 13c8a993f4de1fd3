package logging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jingkaihe/p4gate/internal/errx"
)

// Emitter stamps events with the run ID and fans them out to sinks.
//
// A nil *Emitter discards everything, so components can hold one without
// checking.
type Emitter struct {
	runID string
	sinks []Sink
	now   func() time.Time
}

// NewEmitter creates an emitter. An empty runID is replaced with a random
// one so events of one process can be correlated.
func NewEmitter(runID string, sinks ...Sink) *Emitter {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Emitter{runID: runID, sinks: sinks, now: time.Now}
}

func (e *Emitter) RunID() string {
	if e == nil {
		return ""
	}
	return e.runID
}

// Emit writes an event to every sink and returns the first error. Callers
// treat emission as best effort and usually discard the error.
func (e *Emitter) Emit(eventType, summary, component string, tags []string, data any) error {
	if e == nil || len(e.sinks) == 0 {
		return nil
	}

	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return errx.Wrap(ErrMarshalData, err)
		}
		raw = b
	}

	event := &Event{
		Timestamp: e.now().UTC(),
		RunID:     e.runID,
		EventType: eventType,
		Summary:   summary,
		Component: component,
		Tags:      tags,
		Data:      raw,
	}

	var firstErr error
	for _, sink := range e.sinks {
		if err := sink.Write(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all sinks and returns the first error.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	var firstErr error
	for _, sink := range e.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
