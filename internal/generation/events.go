package generation

// Event names, in the order a successful job emits them.
const (
	EventSubmitting = "submitting"
	EventPolling    = "polling"
	EventProgress   = "progress"
	EventCompleted  = "completed"
	EventFailed     = "failed"
	EventCanceled   = "canceled"
	EventReset      = "reset"
	EventRejected   = "rejected"
)

// Event is one state transition with the snapshot taken right after it.
type Event struct {
	Name     string
	Snapshot Snapshot
}

// EventPublisher receives events from the manager. Publish is called with the
// manager lock held, so implementations must not block or call back into it.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
