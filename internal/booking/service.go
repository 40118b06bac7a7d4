// Package booking is the reservation orchestrator.  It composes the
// availability resolver, the pricing calculator and the lifecycle state
// machine, checks every rule before writing, and notifies after a
// successful write.
//
// Every operation returns either its value or an *apperror.Failure.  Rules
// are checked in a fixed order and the first broken rule wins.  Collaborator
// errors are sent to the Auditor and surface as StorageFailure with a
// generic message.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-reservation/internal/apperror"
	"github.com/iliyamo/hotel-reservation/internal/availability"
	"github.com/iliyamo/hotel-reservation/internal/lifecycle"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/pricing"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/validation"
)

// Notification kinds.
const (
	NotifyCreated   = "reservation.created"
	NotifyConfirmed = "reservation.confirmed"
)

const notifyTimeout = 5 * time.Second

// Deps are the collaborators of the orchestrator.  Reservations and Rooms
// serve reads outside a transaction; writes go through UnitOfWork.
type Deps struct {
	Categories   availability.CategoryStore
	Rooms        availability.RoomStore
	Catalog      ServiceCatalog
	Clients      ClientDirectory
	Reservations ReservationStore
	UnitOfWork   UnitOfWork
	Notifier     Notifier
	Auditor      Auditor
}

// Options tune the orchestrator.  Zero values select the defaults.
type Options struct {
	ObservationMaxLen int           // maximum observation length in runes (default 500)
	StoreTimeout      time.Duration // deadline for one operation's store I/O (default 5s)
	Now               func() time.Time
}

type Service struct {
	categories   availability.CategoryStore
	rooms        availability.RoomStore
	catalog      ServiceCatalog
	clients      ClientDirectory
	reservations ReservationStore
	uow          UnitOfWork
	notifier     Notifier
	audit        Auditor

	maxObservation int
	timeout        time.Duration
	now            func() time.Time
	locks          categoryLocks
}

// NewService panics if a collaborator is missing.
func NewService(d Deps, opt Options) *Service {
	if d.Categories == nil || d.Rooms == nil || d.Catalog == nil || d.Clients == nil ||
		d.Reservations == nil || d.UnitOfWork == nil || d.Notifier == nil || d.Auditor == nil {
		panic("nil dependency passed to booking.NewService")
	}
	if opt.ObservationMaxLen == 0 {
		opt.ObservationMaxLen = 500
	}
	if opt.StoreTimeout <= 0 {
		opt.StoreTimeout = 5 * time.Second
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Service{
		categories:     d.Categories,
		rooms:          d.Rooms,
		catalog:        d.Catalog,
		clients:        d.Clients,
		reservations:   d.Reservations,
		uow:            d.UnitOfWork,
		notifier:       d.Notifier,
		audit:          d.Auditor,
		maxObservation: opt.ObservationMaxLen,
		timeout:        opt.StoreTimeout,
		now:            opt.Now,
	}
}

func (s *Service) today() time.Time { return pricing.DateOnly(s.now()) }

// Create books a room of the requested category.
func (s *Service) Create(ctx context.Context, req CreateRequest) (model.Reservation, error) {
	const op = "reservation.create"
	req.normalize()
	fields := map[string]any{"client_id": req.ClientID, "category_id": req.CategoryID}

	if err := req.rules(s.today(), s.maxObservation).First(); err != nil {
		return model.Reservation{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// 1. category and capacity
	resolver := availability.NewResolver(s.categories, s.rooms, s.reservations)
	cat, err := resolver.Admit(ctx, req.CategoryID, req.PartySize)
	if err != nil {
		return model.Reservation{}, s.settle(ctx, op, err, fields)
	}

	// 2. client
	exists, err := s.clients.ClientExists(ctx, req.ClientID)
	if err != nil {
		return model.Reservation{}, s.settle(ctx, op, err, fields)
	}
	if !exists {
		return model.Reservation{}, apperror.New(apperror.NotFound, MsgClientNotFound)
	}

	// 3. services, all or nothing
	lines, err := s.priceServices(ctx, cat.ID, req.ServiceIDs)
	if err != nil {
		return model.Reservation{}, s.settle(ctx, op, err, fields)
	}

	var created model.Reservation
	unlock := s.locks.lock(cat.ID)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		// 4. free room
		roomID, err := availability.NewResolver(s.categories, tx.Rooms(), tx.Reservations()).
			FreeRoom(ctx, cat.ID, req.EntryDate, req.DepartureDate, 0, 0)
		if err != nil {
			return err
		}

		// 5. price
		total := pricing.NightlyCost(cat.NightlyRate, req.EntryDate, req.DepartureDate).
			Add(pricing.ServicesCost(lines))

		// 6. advance
		withinTotal, meetsMinimum := pricing.AdvanceValid(total, req.Advance)
		if err := (validation.Chain{
			validation.Require(withinTotal, apperror.ValidationFailure, MsgAdvanceAboveTotal),
			validation.Require(meetsMinimum, apperror.ValidationFailure, MsgAdvanceBelowMinimum),
		}).First(); err != nil {
			return err
		}

		// 7. build
		created = model.Reservation{
			ClientID:       req.ClientID,
			RoomID:         roomID,
			CategoryID:     cat.ID,
			EntryDate:      req.EntryDate,
			DepartureDate:  req.DepartureDate,
			CreatedAt:      s.now().UTC(),
			InitialPrice:   total,
			AdvancePayment: req.Advance,
			TotalPaid:      req.Advance,
			RemainingPrice: total.Sub(req.Advance),
			PenaltyCost:    decimal.Zero,
			Observation:    req.Observation,
			Status:         model.StatusPending,
			Active:         true,
			Services:       lines,
		}

		// 8. persist
		return tx.Reservations().Create(ctx, &created)
	})
	unlock()
	if err != nil {
		return model.Reservation{}, s.settle(ctx, op, err, fields)
	}

	s.notify(ctx, Notification{
		Kind:          NotifyCreated,
		ClientID:      created.ClientID,
		ReservationID: created.ID,
		Message:       fmt.Sprintf("Su reserva #%d fue registrada del %s al %s.", created.ID, created.EntryDate.Format("2006-01-02"), created.DepartureDate.Format("2006-01-02")),
	})
	return created, nil
}

// Confirm settles the remaining balance.  abono must equal the remaining
// price exactly.
func (s *Service) Confirm(ctx context.Context, reservationID uint64, abono decimal.Decimal) (model.Reservation, error) {
	const op = "reservation.confirm"
	fields := map[string]any{"reservation_id": reservationID}
	if reservationID == 0 {
		return model.Reservation{}, apperror.New(apperror.ValidationFailure, MsgReservationRequired)
	}
	if err := (validation.Chain{centsRule(abono)}).First(); err != nil {
		return model.Reservation{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var confirmed model.Reservation
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		r, err := loadActive(ctx, tx.Reservations(), reservationID)
		if err != nil {
			return err
		}
		next, err := transition(r.Status, lifecycle.EventConfirm)
		if err != nil {
			return err
		}
		if !abono.Equal(r.RemainingPrice) {
			return apperror.New(apperror.ValidationFailure, MsgPaymentMismatch)
		}

		now := s.now().UTC()
		r.TotalPaid = r.TotalPaid.Add(abono)
		r.RemainingPrice = r.InitialPrice.Sub(r.TotalPaid).Add(r.PenaltyCost)
		r.Status = next
		r.ConfirmedAt = &now
		if err := tx.Reservations().Update(ctx, &r); err != nil {
			return err
		}
		confirmed = r
		return nil
	})
	if err != nil {
		return model.Reservation{}, s.settle(ctx, op, err, fields)
	}

	s.notify(ctx, Notification{
		Kind:          NotifyConfirmed,
		ClientID:      confirmed.ClientID,
		ReservationID: confirmed.ID,
		Message:       fmt.Sprintf("Su reserva #%d fue confirmada. Total pagado: %s.", confirmed.ID, confirmed.TotalPaid.StringFixed(2)),
	})
	return confirmed, nil
}

// Cancel moves a pending reservation to Cancelled.  Prices are untouched.
func (s *Service) Cancel(ctx context.Context, reservationID uint64) (model.Reservation, error) {
	const op = "reservation.cancel"
	fields := map[string]any{"reservation_id": reservationID}
	if reservationID == 0 {
		return model.Reservation{}, apperror.New(apperror.ValidationFailure, MsgReservationRequired)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var cancelled model.Reservation
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		r, err := loadActive(ctx, tx.Reservations(), reservationID)
		if err != nil {
			return err
		}
		next, err := transition(r.Status, lifecycle.EventCancel)
		if err != nil {
			return err
		}
		r.Status = next
		if err := tx.Reservations().Update(ctx, &r); err != nil {
			return err
		}
		cancelled = r
		return nil
	})
	if err != nil {
		return model.Reservation{}, s.settle(ctx, op, err, fields)
	}
	return cancelled, nil
}

// Update changes the observation and, when the dates differ, moves the
// stay.  A move re-resolves a room of the same category, re-prices the
// nights at the category's current rate, keeps the booked service prices
// and accrues a reschedule penalty.
func (s *Service) Update(ctx context.Context, reservationID uint64, req UpdateRequest) (model.Reservation, error) {
	const op = "reservation.update"
	req.normalize()
	fields := map[string]any{"reservation_id": reservationID}
	if reservationID == 0 {
		return model.Reservation{}, apperror.New(apperror.ValidationFailure, MsgReservationRequired)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	current, err := loadActive(ctx, s.reservations, reservationID)
	if err != nil {
		return model.Reservation{}, s.settle(ctx, op, err, fields)
	}
	if _, err := transition(current.Status, lifecycle.EventUpdate); err != nil {
		return model.Reservation{}, err
	}

	datesChanged := !req.EntryDate.Equal(current.EntryDate) || !req.DepartureDate.Equal(current.DepartureDate)
	rules := validation.Chain{observationRule(req.Observation, s.maxObservation)}
	if datesChanged {
		rules = stayRules(req.EntryDate, req.DepartureDate, s.today()).Add(rules...)
	}
	if err := rules.First(); err != nil {
		return model.Reservation{}, err
	}

	if datesChanged {
		defer s.locks.lock(current.CategoryID)()
	}

	var updated model.Reservation
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		// re-read under the transaction; the state may have moved since
		r, err := loadActive(ctx, tx.Reservations(), reservationID)
		if err != nil {
			return err
		}
		if _, err := transition(r.Status, lifecycle.EventUpdate); err != nil {
			return err
		}
		r.Observation = req.Observation

		if datesChanged {
			roomID, err := availability.NewResolver(s.categories, tx.Rooms(), tx.Reservations()).
				FindFreeRoomExcluding(ctx, r.ID, r.RoomID, r.CategoryID, req.EntryDate, req.DepartureDate)
			if err != nil {
				return err
			}
			cat, err := s.categories.GetByID(ctx, r.CategoryID)
			if err != nil {
				return err
			}

			nights := pricing.NightlyCost(cat.NightlyRate, req.EntryDate, req.DepartureDate)
			services := pricing.ServicesCost(r.Services)
			r.PenaltyCost = r.PenaltyCost.Add(pricing.PenaltyOnReschedule(r.TotalPaid, r.RemainingPrice))
			r.InitialPrice = nights.Add(services)
			r.RemainingPrice = nights.Add(r.PenaltyCost).Add(services).Sub(r.AdvancePayment)
			r.RoomID = roomID
			r.EntryDate = req.EntryDate
			r.DepartureDate = req.DepartureDate
		}

		if err := tx.Reservations().Update(ctx, &r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return model.Reservation{}, s.settle(ctx, op, err, fields)
	}
	return updated, nil
}

// Deactivate soft deletes a reservation.  The row stays for audit and no
// longer blocks its room or appears in GetAll.
func (s *Service) Deactivate(ctx context.Context, reservationID uint64) error {
	const op = "reservation.deactivate"
	fields := map[string]any{"reservation_id": reservationID}
	if reservationID == 0 {
		return apperror.New(apperror.ValidationFailure, MsgReservationRequired)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		r, err := loadActive(ctx, tx.Reservations(), reservationID)
		if err != nil {
			return err
		}
		r.Active = false
		return tx.Reservations().Update(ctx, &r)
	})
	return s.settle(ctx, op, err, fields)
}

// GetByID returns a reservation, soft deleted ones included.
func (s *Service) GetByID(ctx context.Context, reservationID uint64) (model.Reservation, error) {
	if reservationID == 0 {
		return model.Reservation{}, apperror.New(apperror.ValidationFailure, MsgReservationRequired)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r, err := s.reservations.GetByID(ctx, reservationID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Reservation{}, apperror.New(apperror.NotFound, MsgReservationNotFound)
	}
	if err != nil {
		return model.Reservation{}, s.settle(ctx, "reservation.get", err, map[string]any{"reservation_id": reservationID})
	}
	return r, nil
}

// GetAll returns the active reservations.
func (s *Service) GetAll(ctx context.Context) ([]model.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.reservations.GetAll(ctx)
	if err != nil {
		return nil, s.settle(ctx, "reservation.list", err, nil)
	}
	return list, nil
}

// GetByClientID returns the client's reservations joined with the client
// name and room number.
func (s *Service) GetByClientID(ctx context.Context, clientID uint64) ([]model.ClientReservation, error) {
	if clientID == 0 {
		return nil, apperror.New(apperror.ValidationFailure, MsgClientRequired)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.reservations.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, s.settle(ctx, "reservation.list_by_client", err, map[string]any{"client_id": clientID})
	}
	return list, nil
}

// CheckAvailability finds the room Create would assign right now and
// quotes its nights.  Nothing is written or held.
func (s *Service) CheckAvailability(ctx context.Context, req AvailabilityRequest) (Quote, error) {
	const op = "reservation.availability"
	req.normalize()
	fields := map[string]any{"category_id": req.CategoryID}
	if err := req.rules(s.today()).First(); err != nil {
		return Quote{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resolver := availability.NewResolver(s.categories, s.rooms, s.reservations)
	cat, err := resolver.Admit(ctx, req.CategoryID, req.PartySize)
	if err != nil {
		return Quote{}, s.settle(ctx, op, err, fields)
	}
	roomID, err := resolver.FreeRoom(ctx, cat.ID, req.EntryDate, req.DepartureDate, 0, 0)
	if err != nil {
		return Quote{}, s.settle(ctx, op, err, fields)
	}
	cost := pricing.NightlyCost(cat.NightlyRate, req.EntryDate, req.DepartureDate)
	return Quote{
		RoomID:         roomID,
		Nights:         pricing.Nights(req.EntryDate, req.DepartureDate),
		RoomCost:       cost,
		MinimumAdvance: pricing.MinimumAdvance(cost),
	}, nil
}

// priceServices snapshots the category prices of the requested services.
func (s *Service) priceServices(ctx context.Context, categoryID uint64, ids []uint64) ([]model.ReservationService, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	prices, err := s.catalog.GetPrices(ctx, categoryID, ids)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.New(apperror.ValidationFailure, MsgServicesUnavailable)
	}
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.ServicePrice, len(prices))
	for _, p := range prices {
		byID[p.ServiceID] = p
	}
	lines := make([]model.ReservationService, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, apperror.New(apperror.ValidationFailure, MsgServicesUnavailable)
		}
		lines = append(lines, model.ReservationService{ServiceID: id, Price: p.Price})
	}
	return lines, nil
}

// loadActive maps a missing or soft deleted reservation to NotFound.
func loadActive(ctx context.Context, store ReservationStore, id uint64) (model.Reservation, error) {
	r, err := store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Reservation{}, apperror.New(apperror.NotFound, MsgReservationNotFound)
	}
	if err != nil {
		return model.Reservation{}, err
	}
	if !r.Active {
		return model.Reservation{}, apperror.New(apperror.NotFound, MsgReservationNotFound)
	}
	return r, nil
}

func transition(from model.Status, ev lifecycle.Event) (model.Status, error) {
	next, err := lifecycle.Apply(from, ev)
	var te *lifecycle.TransitionError
	if errors.As(err, &te) {
		return from, apperror.New(apperror.InvalidState, te.Message)
	}
	return next, err
}

// settle passes business failures through and turns everything else into
// a StorageFailure after auditing it.
func (s *Service) settle(ctx context.Context, op string, err error, fields map[string]any) error {
	if err == nil {
		return nil
	}
	if f, ok := apperror.As(err); ok && f.Kind != apperror.StorageFailure {
		return f
	}
	s.audit.Failure(ctx, op, err, fields)
	return apperror.Storage(err)
}

// notify is best effort; a failure is logged as a warning and swallowed.
func (s *Service) notify(ctx context.Context, n Notification) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.audit.Warning(ctx, "notify", err, map[string]any{
			"reservation_id": n.ReservationID,
			"client_id":      n.ClientID,
			"kind":           n.Kind,
		})
	}
}
