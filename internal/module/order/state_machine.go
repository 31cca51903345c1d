package order

import "fmt"

// Event represents something that happened to an order's payment or fulfillment.
type Event string

const (
	EventPaymentCaptured Event = "payment_captured"
	EventPaymentFailed   Event = "payment_failed"
	EventPaymentPending  Event = "payment_pending"
	EventAdminComplete   Event = "admin_complete"
)

// StateMachine validates order state transitions. Unlisted (state, event)
// combinations are no-ops, which is what makes webhook replays harmless.
type StateMachine struct {
	transitions map[Status]map[Event]Status
}

// NewStateMachine creates the order state machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[Status]map[Event]Status{
			StatusPending: {
				EventPaymentCaptured: StatusPaid,
				EventPaymentFailed:   StatusPaymentFailed,
				EventPaymentPending:  StatusPending,
			},
			StatusPaid: {
				EventAdminComplete: StatusComplete,
			},
			StatusProcessing: {
				EventAdminComplete: StatusComplete,
			},
			// payment_failed is recoverable only via admin override
			StatusPaymentFailed: {},
			StatusCancelled:     {}, // Terminal state
			StatusComplete:      {}, // Terminal state
		},
	}
}

// NextState returns the state the event leads to from the current state.
// ok is false when the combination is a no-op.
func (sm *StateMachine) NextState(from Status, event Event) (Status, bool) {
	events, found := sm.transitions[from]
	if !found {
		return from, false
	}
	next, found := events[event]
	if !found || next == from {
		return from, false
	}
	return next, true
}

// Transition applies the event to the order, failing when it leads nowhere.
func (sm *StateMachine) Transition(o *Order, event Event) error {
	next, ok := sm.NextState(o.Status, event)
	if !ok {
		return fmt.Errorf("%w: %s does not apply in state %s", ErrInvalidTransition, event, o.Status)
	}
	o.Status = next
	return nil
}

// CanComplete reports whether admin completion is allowed from the state.
func (sm *StateMachine) CanComplete(from Status) bool {
	_, ok := sm.NextState(from, EventAdminComplete)
	return ok
}

// overrideStatuses is the enum the admin status override accepts.
var overrideStatuses = []Status{StatusPending, StatusPaid, StatusProcessing, StatusComplete}

// ValidOverrideStatus reports whether the admin may set this status directly.
func ValidOverrideStatus(s Status) bool {
	for _, allowed := range overrideStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// OverrideStatuses returns the statuses the admin override accepts.
func OverrideStatuses() []Status {
	out := make([]Status, len(overrideStatuses))
	copy(out, overrideStatuses)
	return out
}
