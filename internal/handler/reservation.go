package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Bookings is the booking service as seen by the HTTP layer.
type Bookings interface {
	Create(ctx context.Context, req booking.CreateRequest) (model.Reservation, error)
	Confirm(ctx context.Context, reservationID uint64, abono decimal.Decimal) (model.Reservation, error)
	Cancel(ctx context.Context, reservationID uint64) (model.Reservation, error)
	Update(ctx context.Context, reservationID uint64, req booking.UpdateRequest) (model.Reservation, error)
	Deactivate(ctx context.Context, reservationID uint64) error
	GetByID(ctx context.Context, reservationID uint64) (model.Reservation, error)
	GetAll(ctx context.Context) ([]model.Reservation, error)
	GetByClientID(ctx context.Context, clientID uint64) ([]model.ClientReservation, error)
	CheckAvailability(ctx context.Context, req booking.AvailabilityRequest) (booking.Quote, error)
}

// ReservationHandler exposes the booking service over HTTP.  Every
// response uses the Envelope shape.
type ReservationHandler struct {
	svc Bookings
}

func NewReservationHandler(svc Bookings) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{svc: svc}
}

type createBody struct {
	ClientID      uint64          `json:"client_id"`
	CategoryID    uint64          `json:"category_id"`
	PartySize     int             `json:"party_size"`
	EntryDate     Date            `json:"entry_date"`
	DepartureDate Date            `json:"departure_date"`
	Advance       decimal.Decimal `json:"advance"`
	Observation   string          `json:"observation"`
	ServiceIDs    []uint64        `json:"service_ids"`
}

type updateBody struct {
	EntryDate     Date   `json:"entry_date"`
	DepartureDate Date   `json:"departure_date"`
	Observation   string `json:"observation"`
}

type confirmBody struct {
	Abono decimal.Decimal `json:"abono"`
}

type availabilityBody struct {
	CategoryID    uint64 `json:"category_id"`
	PartySize     int    `json:"party_size"`
	EntryDate     Date   `json:"entry_date"`
	DepartureDate Date   `json:"departure_date"`
}

// reservationView renders stay dates as calendar days.
type reservationView struct {
	ID             uint64                     `json:"id"`
	ClientID       uint64                     `json:"client_id"`
	RoomID         uint64                     `json:"room_id"`
	CategoryID     uint64                     `json:"category_id"`
	EntryDate      Date                       `json:"entry_date"`
	DepartureDate  Date                       `json:"departure_date"`
	CreatedAt      time.Time                  `json:"created_at"`
	ConfirmedAt    *time.Time                 `json:"confirmed_at,omitempty"`
	InitialPrice   decimal.Decimal            `json:"initial_price"`
	AdvancePayment decimal.Decimal            `json:"advance_payment"`
	TotalPaid      decimal.Decimal            `json:"total_paid"`
	RemainingPrice decimal.Decimal            `json:"remaining_price"`
	PenaltyCost    decimal.Decimal            `json:"penalty_cost"`
	Observation    string                     `json:"observation"`
	Status         model.Status               `json:"status"`
	Active         bool                       `json:"is_active"`
	Services       []model.ReservationService `json:"services"`
	ClientName     string                     `json:"client_name,omitempty"`
	RoomNumber     string                     `json:"room_number,omitempty"`
}

func viewOf(r model.Reservation) reservationView {
	services := r.Services
	if services == nil {
		services = []model.ReservationService{}
	}
	return reservationView{
		ID:             r.ID,
		ClientID:       r.ClientID,
		RoomID:         r.RoomID,
		CategoryID:     r.CategoryID,
		EntryDate:      Date{r.EntryDate},
		DepartureDate:  Date{r.DepartureDate},
		CreatedAt:      r.CreatedAt,
		ConfirmedAt:    r.ConfirmedAt,
		InitialPrice:   r.InitialPrice,
		AdvancePayment: r.AdvancePayment,
		TotalPaid:      r.TotalPaid,
		RemainingPrice: r.RemainingPrice,
		PenaltyCost:    r.PenaltyCost,
		Observation:    r.Observation,
		Status:         r.Status,
		Active:         r.Active,
		Services:       services,
	}
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body createBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, msgBadBody)
	}
	r, err := h.svc.Create(c.Request().Context(), booking.CreateRequest{
		ClientID:      body.ClientID,
		CategoryID:    body.CategoryID,
		PartySize:     body.PartySize,
		EntryDate:     body.EntryDate.Time,
		DepartureDate: body.DepartureDate.Time,
		Advance:       body.Advance,
		Observation:   body.Observation,
		ServiceIDs:    body.ServiceIDs,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, "Reserva registrada correctamente.", viewOf(r))
}

// List handles GET /v1/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	list, err := h.svc.GetAll(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	out := make([]reservationView, 0, len(list))
	for _, r := range list {
		out = append(out, viewOf(r))
	}
	return ok(c, http.StatusOK, "Reservas obtenidas correctamente.", out)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, msgBadID)
	}
	r, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Reserva obtenida correctamente.", viewOf(r))
}

// Update handles PUT /v1/reservations/:id.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, msgBadID)
	}
	var body updateBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, msgBadBody)
	}
	r, err := h.svc.Update(c.Request().Context(), id, booking.UpdateRequest{
		EntryDate:     body.EntryDate.Time,
		DepartureDate: body.DepartureDate.Time,
		Observation:   body.Observation,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Reserva modificada correctamente.", viewOf(r))
}

// Delete handles DELETE /v1/reservations/:id.  The reservation is soft
// deleted.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, msgBadID)
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Reserva eliminada correctamente.", nil)
}

// Confirm handles POST /v1/reservations/:id/confirm.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, msgBadID)
	}
	var body confirmBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, msgBadBody)
	}
	r, err := h.svc.Confirm(c.Request().Context(), id, body.Abono)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Reserva confirmada correctamente.", viewOf(r))
}

// Cancel handles POST /v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, msgBadID)
	}
	r, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Reserva cancelada correctamente.", viewOf(r))
}

// ByClient handles GET /v1/clients/:id/reservations.
func (h *ReservationHandler) ByClient(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, msgBadID)
	}
	list, err := h.svc.GetByClientID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	out := make([]reservationView, 0, len(list))
	for _, cr := range list {
		v := viewOf(cr.Reservation)
		v.ClientName = cr.ClientName
		v.RoomNumber = cr.RoomNumber
		out = append(out, v)
	}
	return ok(c, http.StatusOK, "Reservas del cliente obtenidas correctamente.", out)
}

// Availability handles POST /v1/availability.
func (h *ReservationHandler) Availability(c echo.Context) error {
	var body availabilityBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, msgBadBody)
	}
	q, err := h.svc.CheckAvailability(c.Request().Context(), booking.AvailabilityRequest{
		CategoryID:    body.CategoryID,
		PartySize:     body.PartySize,
		EntryDate:     body.EntryDate.Time,
		DepartureDate: body.DepartureDate.Time,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Hay habitaciones disponibles.", q)
}
