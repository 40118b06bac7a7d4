// Package queue defines the notification messages exchanged over the
// broker and the consumer that delivers them to clients.
package queue

// NotificationEvent is published after a reservation is created or
// confirmed.  It carries the text for the client so the consumer does not
// need the reservation tables.
type NotificationEvent struct {
	EventID       string `json:"event_id"`
	Kind          string `json:"kind"`
	ReservationID uint64 `json:"reservation_id"`
	ClientID      uint64 `json:"client_id"`
	Message       string `json:"message"`
	OccurredAt    string `json:"occurred_at"`
}
