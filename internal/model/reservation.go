package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a reservation.  The values are stored
// verbatim in the reservations.status column.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
)

// Holds reports whether a reservation in this state still occupies its
// room.  Cancelled reservations never block availability.
func (s Status) Holds() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Reservation is a booking of one physical room for the half-open stay
// [EntryDate, DepartureDate).  Money fields are exact decimals.
//
// Fields:
//  ID             – primary key assigned on creation.
//  ClientID       – client who owns the reservation.
//  RoomID         – room resolved by the availability search.
//  CategoryID     – category the room was booked under.
//  EntryDate      – first night (UTC midnight).
//  DepartureDate  – checkout day (UTC midnight), strictly after EntryDate.
//  CreatedAt      – creation timestamp.
//  ConfirmedAt    – set when the reservation is confirmed.
//  InitialPrice   – room nights plus booked services.
//  AdvancePayment – upfront payment recorded at creation.
//  TotalPaid      – advance plus any confirmation payment.
//  RemainingPrice – InitialPrice - TotalPaid + PenaltyCost.
//  PenaltyCost    – accrued reschedule penalties.
//  Observation    – free-form note.
//  Status         – Pending, Confirmed or Cancelled.
//  Active         – false once the reservation is soft deleted.
//  Services       – price snapshot of the add-on services.
type Reservation struct {
	ID             uint64               `json:"id"`
	ClientID       uint64               `json:"client_id"`
	RoomID         uint64               `json:"room_id"`
	CategoryID     uint64               `json:"category_id"`
	EntryDate      time.Time            `json:"entry_date"`
	DepartureDate  time.Time            `json:"departure_date"`
	CreatedAt      time.Time            `json:"created_at"`
	ConfirmedAt    *time.Time           `json:"confirmed_at,omitempty"`
	InitialPrice   decimal.Decimal      `json:"initial_price"`
	AdvancePayment decimal.Decimal      `json:"advance_payment"`
	TotalPaid      decimal.Decimal      `json:"total_paid"`
	RemainingPrice decimal.Decimal      `json:"remaining_price"`
	PenaltyCost    decimal.Decimal      `json:"penalty_cost"`
	Observation    string               `json:"observation"`
	Status         Status               `json:"status"`
	Active         bool                 `json:"active"`
	Services       []ReservationService `json:"services"`
}

// ReservationService is the immutable price snapshot of an add-on service
// taken when the reservation was booked (reservation_services row).
type ReservationService struct {
	ReservationID uint64          `json:"reservation_id"`
	ServiceID     uint64          `json:"service_id"`
	Price         decimal.Decimal `json:"price"`
}

// ClientReservation is the read-only projection returned when listing the
// reservations of a client.  It joins the client name and room number.
type ClientReservation struct {
	Reservation
	ClientName string `json:"client_name"`
	RoomNumber string `json:"room_number"`
}
