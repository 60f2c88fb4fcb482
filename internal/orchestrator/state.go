package orchestrator

import "fmt"

// State is a step of one booking submission.
type State int

const (
	StateDraft State = iota
	StateValidating
	StateCashSubmitting
	StateOrderCreating
	StateGatewayOpen
	StateVerifying
	StateConfirmed
	StateVerificationFailed
	StateCancelled
	StateFailed
)

var stateNames = map[State]string{
	StateDraft:              "draft",
	StateValidating:         "validating",
	StateCashSubmitting:     "cash_submitting",
	StateOrderCreating:      "order_creating",
	StateGatewayOpen:        "gateway_open",
	StateVerifying:          "verifying",
	StateConfirmed:          "confirmed",
	StateVerificationFailed: "verification_failed",
	StateCancelled:          "cancelled",
	StateFailed:             "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further event except a reset is accepted.
func (s State) Terminal() bool {
	switch s {
	case StateConfirmed, StateVerificationFailed, StateCancelled, StateFailed:
		return true
	}
	return false
}

// Busy reports whether a submission is in flight.
func (s State) Busy() bool {
	switch s {
	case StateValidating, StateCashSubmitting, StateOrderCreating, StateGatewayOpen, StateVerifying:
		return true
	}
	return false
}

// Event drives a transition.
type Event int

const (
	EventSubmit Event = iota
	EventInvalid
	EventChooseCash
	EventChooseOnline
	EventBookingCreated
	EventRequestFailed
	EventOrderCreated
	EventGatewaySuccess
	EventGatewayFailure
	EventGatewayDismiss
	EventVerified
	EventVerificationRejected
	EventReset
)

var eventNames = map[Event]string{
	EventSubmit:               "submit",
	EventInvalid:              "invalid",
	EventChooseCash:           "choose_cash",
	EventChooseOnline:         "choose_online",
	EventBookingCreated:       "booking_created",
	EventRequestFailed:        "request_failed",
	EventOrderCreated:         "order_created",
	EventGatewaySuccess:       "gateway_success",
	EventGatewayFailure:       "gateway_failure",
	EventGatewayDismiss:       "gateway_dismiss",
	EventVerified:             "verified",
	EventVerificationRejected: "verification_rejected",
	EventReset:                "reset",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

var transitions = map[State]map[Event]State{
	StateDraft: {
		EventSubmit: StateValidating,
	},
	StateValidating: {
		EventInvalid:      StateDraft,
		EventChooseCash:   StateCashSubmitting,
		EventChooseOnline: StateOrderCreating,
	},
	StateCashSubmitting: {
		EventBookingCreated: StateConfirmed,
		EventRequestFailed:  StateFailed,
	},
	StateOrderCreating: {
		EventOrderCreated:  StateGatewayOpen,
		EventRequestFailed: StateFailed,
	},
	StateGatewayOpen: {
		EventGatewaySuccess: StateVerifying,
		EventGatewayFailure: StateFailed,
		EventGatewayDismiss: StateCancelled,
	},
	StateVerifying: {
		EventVerified:             StateConfirmed,
		EventVerificationRejected: StateVerificationFailed,
	},
	StateConfirmed:          {EventReset: StateDraft},
	StateVerificationFailed: {EventReset: StateDraft},
	StateCancelled:          {EventReset: StateDraft},
	StateFailed:             {EventReset: StateDraft},
}

// Transition returns the state reached from s on e.
func Transition(s State, e Event) (State, error) {
	next, ok := transitions[s][e]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
	}
	return next, nil
}
