// Package lifecycle holds the reservation state machine.  A reservation is
// created Pending and can move once, to Confirmed or Cancelled.  Update
// keeps it Pending.  Nothing ever re-enters Pending.
package lifecycle

import (
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Event is something that happens to a reservation.
type Event string

const (
	EventConfirm Event = "confirm"
	EventCancel  Event = "cancel"
	EventUpdate  Event = "update"
)

// Messages returned when an event is applied to a non-pending reservation.
const (
	MsgOnlyPendingConfirm = "Solo se pueden confirmar reservas Pendientes."
	MsgOnlyPendingCancel  = "Solo se pueden cancelar reservas Pendientes."
	MsgOnlyPendingUpdate  = "Solo se pueden modificar reservas Pendientes."
)

// transitions maps each (state, event) pair to its target state.
var transitions = map[model.Status]map[Event]model.Status{
	model.StatusPending: {
		EventConfirm: model.StatusConfirmed,
		EventCancel:  model.StatusCancelled,
		EventUpdate:  model.StatusPending,
	},
	model.StatusConfirmed: {},
	model.StatusCancelled: {},
}

// TransitionError is returned for an event the current state does not
// accept.  Message is user facing.
type TransitionError struct {
	From    model.Status
	Event   Event
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s a %s reservation", e.Message, e.Event, e.From)
}

// Apply returns the state reached by applying ev to from, or a
// *TransitionError when the event is not allowed.
func Apply(from model.Status, ev Event) (model.Status, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, &TransitionError{From: from, Event: ev, Message: rejection(ev)}
}

// CanApply reports whether ev is accepted in state from.
func CanApply(from model.Status, ev Event) bool {
	_, ok := transitions[from][ev]
	return ok
}

// IsTerminal reports whether no event is accepted in s.
func IsTerminal(s model.Status) bool {
	return len(transitions[s]) == 0
}

func rejection(ev Event) string {
	switch ev {
	case EventConfirm:
		return MsgOnlyPendingConfirm
	case EventCancel:
		return MsgOnlyPendingCancel
	default:
		return MsgOnlyPendingUpdate
	}
}
