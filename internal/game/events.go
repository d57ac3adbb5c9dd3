package game

import "time"

// EventKind names a feedback notification for the presentation layer.
type EventKind string

const (
	EventEnteredChase    EventKind = "entered_chase"
	EventLostTarget      EventKind = "lost_target"
	EventCalmedDown      EventKind = "calmed_down"
	EventResumedPatrol   EventKind = "resumed_patrol"
	EventCaught          EventKind = "caught"
	EventWitnessAlerting EventKind = "witness_alerting"
	EventPoliceCalled    EventKind = "police_called"
	EventPrankPerformed  EventKind = "prank_performed"
	EventPrankReset      EventKind = "prank_reset"
	EventMeterDepleted   EventKind = "meter_depleted"
)

// Event is a fire-and-forget state change notification.
type Event struct {
	Kind     EventKind     `json:"kind"`
	ActorID  string        `json:"actor_id"`
	State    string        `json:"state,omitempty"`
	Position Vec3          `json:"position"`
	At       time.Duration `json:"-"`
}

// Notifier receives feedback events. Implementations must not block.
type Notifier interface {
	Notify(e Event)
}

// EventBuffer collects events during a tick so they can be published after it.
type EventBuffer struct {
	events []Event
}

// Notify implements Notifier.
func (b *EventBuffer) Notify(e Event) {
	b.events = append(b.events, e)
}

// Drain returns the buffered events and empties the buffer.
func (b *EventBuffer) Drain() []Event {
	events := b.events
	b.events = nil
	return events
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}
