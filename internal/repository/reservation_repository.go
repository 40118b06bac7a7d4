package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations and their
// service line items.  Line items are stored in reservation_services with
// the price the service had when it was booked; they are written once by
// Create and never updated.  entry_date and departure_date are DATE
// columns holding a half-open stay [entry, departure).
//
// A repo bound to a transaction reads with FOR UPDATE so that the row a
// state transition starts from cannot change before the transaction ends.
type ReservationRepo struct {
	q    querier
	lock bool
}

// NewReservationRepo returns a ReservationRepo reading outside any
// transaction.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{q: db} }

// NewReservationRepoTx returns a ReservationRepo bound to tx.  The caller
// commits or rolls back the transaction.
func NewReservationRepoTx(tx *sql.Tx) *ReservationRepo { return &ReservationRepo{q: tx, lock: true} }

const reservationColumns = `r.id, r.client_id, r.room_id, r.category_id, r.entry_date, r.departure_date,
       r.created_at, r.confirmed_at, r.initial_price, r.advance_payment, r.total_paid,
       r.remaining_price, r.penalty_cost, r.observation, r.status, r.is_active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner, extra ...any) (model.Reservation, error) {
	var (
		res         model.Reservation
		confirmedAt sql.NullTime
		status      string
	)
	dest := []any{
		&res.ID, &res.ClientID, &res.RoomID, &res.CategoryID, &res.EntryDate, &res.DepartureDate,
		&res.CreatedAt, &confirmedAt, &res.InitialPrice, &res.AdvancePayment, &res.TotalPaid,
		&res.RemainingPrice, &res.PenaltyCost, &res.Observation, &status, &res.Active,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return model.Reservation{}, err
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time.UTC()
		res.ConfirmedAt = &t
	}
	res.Status = model.Status(status)
	res.EntryDate = res.EntryDate.UTC()
	res.DepartureDate = res.DepartureDate.UTC()
	return res, nil
}

// FindOverlapping reports whether an active Pending or Confirmed
// reservation other than excludeReservationID holds roomID on any night of
// [entry, departure).
func (r *ReservationRepo) FindOverlapping(ctx context.Context, roomID uint64, entry, departure time.Time, excludeReservationID uint64) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM reservations
	             WHERE room_id = ? AND is_active = 1 AND status IN ('Pending','Confirmed')
	               AND entry_date < ? AND ? < departure_date AND id <> ?)`
	var busy bool
	err := r.q.QueryRowContext(ctx, q, roomID, departure, entry, excludeReservationID).Scan(&busy)
	return busy, err
}

// Create inserts the reservation and its line items.  It sets the
// generated id on res and on every line item.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (client_id, room_id, category_id, entry_date, departure_date,
	             created_at, confirmed_at, initial_price, advance_payment, total_paid, remaining_price,
	             penalty_cost, observation, status, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.q.ExecContext(ctx, q,
		res.ClientID, res.RoomID, res.CategoryID, res.EntryDate, res.DepartureDate,
		res.CreatedAt, nullTime(res.ConfirmedAt), res.InitialPrice, res.AdvancePayment, res.TotalPaid,
		res.RemainingPrice, res.PenaltyCost, res.Observation, string(res.Status), res.Active,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	for i := range res.Services {
		res.Services[i].ReservationID = res.ID
	}
	return r.createServices(ctx, res.Services)
}

// createServices inserts the line items in a single statement.  An empty
// slice is a no-op.
func (r *ReservationRepo) createServices(ctx context.Context, lines []model.ReservationService) error {
	if len(lines) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_services (reservation_id, service_id, price) VALUES `
	args := make([]any, 0, len(lines)*3)
	for i, l := range lines {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, l.ReservationID, l.ServiceID, l.Price)
	}
	_, err := r.q.ExecContext(ctx, query, args...)
	return err
}

// Update writes every mutable column of the reservation.  Client, category,
// creation time and line items are immutable and not touched.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
	           SET room_id = ?, entry_date = ?, departure_date = ?, confirmed_at = ?,
	               initial_price = ?, advance_payment = ?, total_paid = ?, remaining_price = ?,
	               penalty_cost = ?, observation = ?, status = ?, is_active = ?
	           WHERE id = ?`
	_, err := r.q.ExecContext(ctx, q,
		res.RoomID, res.EntryDate, res.DepartureDate, nullTime(res.ConfirmedAt),
		res.InitialPrice, res.AdvancePayment, res.TotalPaid, res.RemainingPrice,
		res.PenaltyCost, res.Observation, string(res.Status), res.Active,
		res.ID,
	)
	return err
}

// GetByID loads a reservation with its line items, soft deleted ones
// included.  It returns ErrNotFound for unknown ids.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = ? LIMIT 1`
	if r.lock {
		q += ` FOR UPDATE`
	}
	res, err := scanReservation(r.q.QueryRowContext(ctx, q, id))
	if err != nil {
		return model.Reservation{}, notFound(err)
	}
	lines, err := r.loadServices(ctx, []uint64{res.ID})
	if err != nil {
		return model.Reservation{}, err
	}
	res.Services = lines[res.ID]
	return res, nil
}

// GetAll returns the active reservations ordered by id.
func (r *ReservationRepo) GetAll(ctx context.Context) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.is_active = 1 ORDER BY r.id`
	rows, err := r.q.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachServices(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByClientID returns every reservation of a client with its line
// items, newest stay first, joined with the client name and the room
// number.
func (r *ReservationRepo) GetByClientID(ctx context.Context, clientID uint64) ([]model.ClientReservation, error) {
	q := `SELECT ` + reservationColumns + `, c.full_name, rm.number
	      FROM reservations r
	      JOIN clients c ON c.id = r.client_id
	      JOIN rooms rm ON rm.id = r.room_id
	      WHERE r.client_id = ?
	      ORDER BY r.entry_date DESC, r.id DESC`
	rows, err := r.q.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.ClientReservation{}
	for rows.Next() {
		var cr model.ClientReservation
		res, err := scanReservation(rows, &cr.ClientName, &cr.RoomNumber)
		if err != nil {
			return nil, err
		}
		cr.Reservation = res
		list = append(list, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]uint64, len(list))
	for i, cr := range list {
		ids[i] = cr.ID
	}
	lines, err := r.loadServices(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Services = lines[list[i].ID]
	}
	return list, nil
}

func (r *ReservationRepo) attachServices(ctx context.Context, list []model.Reservation) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]uint64, len(list))
	for i, res := range list {
		ids[i] = res.ID
	}
	lines, err := r.loadServices(ctx, ids)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].Services = lines[list[i].ID]
	}
	return nil
}

// loadServices returns the line items of the given reservations keyed by
// reservation id.
func (r *ReservationRepo) loadServices(ctx context.Context, reservationIDs []uint64) (map[uint64][]model.ReservationService, error) {
	q := `SELECT reservation_id, service_id, price FROM reservation_services
	      WHERE reservation_id IN (` + placeholders(len(reservationIDs)) + `)
	      ORDER BY reservation_id, service_id`
	args := make([]any, len(reservationIDs))
	for i, id := range reservationIDs {
		args[i] = id
	}
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64][]model.ReservationService, len(reservationIDs))
	for rows.Next() {
		var l model.ReservationService
		if err := rows.Scan(&l.ReservationID, &l.ServiceID, &l.Price); err != nil {
			return nil, err
		}
		out[l.ReservationID] = append(out[l.ReservationID], l)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
