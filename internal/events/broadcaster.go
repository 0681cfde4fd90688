package events

import "sync"

// Broadcaster fans out committed events. Implementations must not block the
// caller; the coordinator treats Publish as fire-and-forget.
type Broadcaster interface {
	Publish(event Event)
}

// Noop drops every event. Used where no live subscribers exist.
type Noop struct{}

func (Noop) Publish(Event) {}

// Recorder captures published events in order. Test substitute for the hub.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
