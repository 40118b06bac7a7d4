package booking

import (
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-reservation/internal/pricing"
	"github.com/iliyamo/hotel-reservation/internal/validation"
)

// User-facing failure messages.
const (
	MsgClientRequired      = "El identificador del cliente es requerido."
	MsgCategoryRequired    = "El identificador de la categoría es requerido."
	MsgPartySizeRequired   = "La cantidad de personas debe ser mayor a cero."
	MsgEntryInPast         = "La fecha de entrada no puede ser anterior a hoy."
	MsgDepartureNotAfter   = "La fecha de salida debe ser posterior a la fecha de entrada."
	MsgObservationTooLong  = "La observación excede la longitud máxima permitida."
	MsgClientNotFound      = "El cliente no existe."
	MsgServicesUnavailable = "No todos los servicios solicitados están disponibles para esta categoría."
	MsgAdvanceBelowMinimum = "El adelanto debe ser al menos el 30% del total de la reserva."
	MsgAdvanceAboveTotal   = "El adelanto no puede ser mayor al total de la reserva."
	MsgReservationNotFound = "La reserva no existe."
	MsgReservationRequired = "El identificador de la reserva es requerido."
	MsgPaymentMismatch     = "El abono debe ser igual al precio restante de la reserva."
	MsgAmountPrecision     = "Los montos no pueden tener más de dos decimales."
)

// CreateRequest carries the inputs of Create.
type CreateRequest struct {
	ClientID      uint64
	CategoryID    uint64
	PartySize     int
	EntryDate     time.Time
	DepartureDate time.Time
	Advance       decimal.Decimal
	Observation   string
	ServiceIDs    []uint64
}

// UpdateRequest carries the new dates and observation of Update.
type UpdateRequest struct {
	EntryDate     time.Time
	DepartureDate time.Time
	Observation   string
}

// AvailabilityRequest carries the inputs of CheckAvailability.
type AvailabilityRequest struct {
	CategoryID    uint64
	PartySize     int
	EntryDate     time.Time
	DepartureDate time.Time
}

// Quote is the result of CheckAvailability.  Service add-ons are not
// included.
type Quote struct {
	RoomID         uint64          `json:"room_id"`
	Nights         int             `json:"nights"`
	RoomCost       decimal.Decimal `json:"room_cost"`
	MinimumAdvance decimal.Decimal `json:"minimum_advance"`
}

// stayRules checks a date window against today.
func stayRules(entry, departure, today time.Time) validation.Chain {
	return validation.Chain{
		validation.Check(func() bool { return !entry.Before(today) }, MsgEntryInPast),
		validation.Check(func() bool { return departure.After(entry) }, MsgDepartureNotAfter),
	}
}

func observationRule(obs string, max int) validation.Rule {
	return validation.Check(func() bool { return max <= 0 || utf8.RuneCountInString(obs) <= max }, MsgObservationTooLong)
}

func (r CreateRequest) rules(today time.Time, maxObservation int) validation.Chain {
	return validation.Chain{
		validation.Check(func() bool { return r.ClientID != 0 }, MsgClientRequired),
		validation.Check(func() bool { return r.CategoryID != 0 }, MsgCategoryRequired),
		validation.Check(func() bool { return r.PartySize > 0 }, MsgPartySizeRequired),
	}.Add(stayRules(r.EntryDate, r.DepartureDate, today)...).
		Add(observationRule(r.Observation, maxObservation), centsRule(r.Advance))
}

func centsRule(amount decimal.Decimal) validation.Rule {
	return validation.Check(func() bool { return pricing.WholeCents(amount) }, MsgAmountPrecision)
}

func (r AvailabilityRequest) rules(today time.Time) validation.Chain {
	return validation.Chain{
		validation.Check(func() bool { return r.CategoryID != 0 }, MsgCategoryRequired),
		validation.Check(func() bool { return r.PartySize > 0 }, MsgPartySizeRequired),
	}.Add(stayRules(r.EntryDate, r.DepartureDate, today)...)
}

// normalize reduces the dates to calendar days.
func (r *CreateRequest) normalize() {
	r.EntryDate = pricing.DateOnly(r.EntryDate)
	r.DepartureDate = pricing.DateOnly(r.DepartureDate)
}

func (r *UpdateRequest) normalize() {
	r.EntryDate = pricing.DateOnly(r.EntryDate)
	r.DepartureDate = pricing.DateOnly(r.DepartureDate)
}

func (r *AvailabilityRequest) normalize() {
	r.EntryDate = pricing.DateOnly(r.EntryDate)
	r.DepartureDate = pricing.DateOnly(r.DepartureDate)
}

// uniqueIDs drops zero and duplicate ids preserving order.
func uniqueIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
