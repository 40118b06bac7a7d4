package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func day(d int) time.Time { return time.Date(2026, 11, d, 0, 0, 0, 0, time.UTC) }

var reservationCols = []string{
	"id", "client_id", "room_id", "category_id", "entry_date", "departure_date",
	"created_at", "confirmed_at", "initial_price", "advance_payment", "total_paid",
	"remaining_price", "penalty_cost", "observation", "status", "is_active",
}

func TestCategoryRepo_GetByID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM room_categories WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity", "nightly_rate", "is_active"}).
			AddRow(1, "Deluxe", 4, "100.00", true))

	c, err := NewCategoryRepo(db).GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Deluxe", c.Name)
	assert.Equal(t, 4, c.Capacity)
	assert.True(t, decimal.NewFromInt(100).Equal(c.NightlyRate))
	assert.True(t, c.IsActive)
}

func TestCategoryRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM room_categories")).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)

	_, err := NewCategoryRepo(db).GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoomRepo_ListActiveByCategory(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rooms WHERE category_id = ? AND is_active = 1 ORDER BY id")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4).AddRow(8))

	ids, err := NewRoomRepo(db).ListActiveByCategory(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 8}, ids)
}

func TestServiceCatalogRepo_GetPrices(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM category_services WHERE category_id = ? AND service_id IN (?,?)")).
		WithArgs(1, 5, 6).
		WillReturnRows(sqlmock.NewRows([]string{"service_id", "price"}).
			AddRow(5, "30.00").AddRow(6, "45.50"))

	prices, err := NewServiceCatalogRepo(db).GetPrices(context.Background(), 1, []uint64{5, 6})
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, uint64(6), prices[1].ServiceID)
	assert.True(t, decimal.RequireFromString("45.5").Equal(prices[1].Price))
}

func TestServiceCatalogRepo_GetPrices_PartialMiss(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM category_services")).
		WithArgs(1, 5, 99).
		WillReturnRows(sqlmock.NewRows([]string{"service_id", "price"}).AddRow(5, "30.00"))

	prices, err := NewServiceCatalogRepo(db).GetPrices(context.Background(), 1, []uint64{5, 99})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, prices)
}

func TestServiceCatalogRepo_GetPrices_NoIDs(t *testing.T) {
	db, _ := newMock(t)
	prices, err := NewServiceCatalogRepo(db).GetPrices(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestClientRepo(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM clients WHERE id = ? AND is_active = 1)")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, email, is_active FROM clients WHERE id = ?")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "is_active"}).
			AddRow(7, "Ana Pérez", "ana@example.com", true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = ?")).
		WithArgs(8).
		WillReturnError(sql.ErrNoRows)

	repo := NewClientRepo(db)
	ok, err := repo.ClientExists(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok)

	c, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", c.Email)

	_, err = repo.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationRepo_FindOverlapping(t *testing.T) {
	db, mock := newMock(t)
	// half-open: existing.entry < new.departure AND new.entry < existing.departure
	mock.ExpectQuery(regexp.QuoteMeta("entry_date < ? AND ? < departure_date AND id <> ?")).
		WithArgs(10, day(8), day(4), 0).
		WillReturnRows(sqlmock.NewRows([]string{"busy"}).AddRow(true))

	busy, err := NewReservationRepo(db).FindOverlapping(context.Background(), 10, day(4), day(8), 0)
	require.NoError(t, err)
	assert.True(t, busy)
}

func TestReservationRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	res := &model.Reservation{
		ClientID: 7, RoomID: 10, CategoryID: 1,
		EntryDate: day(1), DepartureDate: day(11), CreatedAt: created,
		InitialPrice:   decimal.RequireFromString("1030"),
		AdvancePayment: decimal.RequireFromString("400"),
		TotalPaid:      decimal.RequireFromString("400"),
		RemainingPrice: decimal.RequireFromString("630"),
		PenaltyCost:    decimal.Zero,
		Status:         model.StatusPending,
		Active:         true,
		Services:       []model.ReservationService{{ServiceID: 5, Price: decimal.RequireFromString("30")}},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WithArgs(7, 10, 1, day(1), day(11), created, nil, "1030", "400", "400", "630", "0", "", "Pending", true).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservation_services (reservation_id, service_id, price) VALUES (?, ?, ?)")).
		WithArgs(42, 5, "30").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewReservationRepo(db).Create(context.Background(), res))
	assert.Equal(t, uint64(42), res.ID)
	assert.Equal(t, uint64(42), res.Services[0].ReservationID)
}

func TestReservationRepo_Update(t *testing.T) {
	db, mock := newMock(t)
	confirmed := time.Date(2026, 11, 2, 12, 0, 0, 0, time.UTC)
	res := &model.Reservation{
		ID: 42, RoomID: 10, EntryDate: day(1), DepartureDate: day(11), ConfirmedAt: &confirmed,
		InitialPrice: decimal.NewFromInt(1000), AdvancePayment: decimal.NewFromInt(400),
		TotalPaid: decimal.NewFromInt(1000), RemainingPrice: decimal.Zero, PenaltyCost: decimal.Zero,
		Observation: "vista al mar", Status: model.StatusConfirmed, Active: true,
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
		WithArgs(10, day(1), day(11), confirmed, "1000", "400", "1000", "0", "0", "vista al mar", "Confirmed", true, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewReservationRepo(db).Update(context.Background(), res))
}

func TestReservationRepo_GetByID_LocksInTx(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations r WHERE r.id = \? LIMIT 1 FOR UPDATE`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(reservationCols).AddRow(
			42, 7, 10, 1, day(1), day(11), created, nil,
			"1030.00", "400.00", "400.00", "630.00", "0.00", "", "Pending", true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservation_services WHERE reservation_id IN (?)")).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "service_id", "price"}).AddRow(42, 5, "30.00"))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	r, err := NewReservationRepoTx(tx).GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, r.Status)
	assert.Nil(t, r.ConfirmedAt)
	assert.Equal(t, day(11), r.DepartureDate)
	assert.True(t, decimal.NewFromInt(630).Equal(r.RemainingPrice))
	require.Len(t, r.Services, 1)
	assert.True(t, decimal.NewFromInt(30).Equal(r.Services[0].Price))
}

func TestReservationRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations r WHERE r.id = ?")).
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	_, err := NewReservationRepo(db).GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationRepo_GetAll(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations r WHERE r.is_active = 1 ORDER BY r.id")).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(1, 7, 10, 1, day(1), day(3), created, nil, "200", "60", "60", "140", "0", "", "Pending", true).
			AddRow(2, 8, 11, 1, day(2), day(4), created, created, "200", "60", "200", "0", "0", "", "Confirmed", true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservation_services WHERE reservation_id IN (?,?)")).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "service_id", "price"}).AddRow(2, 5, "30"))

	list, err := NewReservationRepo(db).GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Empty(t, list[0].Services)
	assert.Len(t, list[1].Services, 1)
	require.NotNil(t, list[1].ConfirmedAt)
}

func TestReservationRepo_GetAll_Empty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations r WHERE r.is_active = 1")).
		WillReturnRows(sqlmock.NewRows(reservationCols))

	list, err := NewReservationRepo(db).GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestReservationRepo_GetByClientID(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	cols := append(append([]string{}, reservationCols...), "full_name", "number")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN clients c ON c.id = r.client_id")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 7, 10, 1, day(1), day(3), created, nil, "200", "60", "60", "140", "0", "", "Cancelled", true, "Ana Pérez", "101").
			AddRow(4, 7, 11, 1, day(5), day(6), created, nil, "130", "40", "40", "90", "0", "", "Pending", true, "Ana Pérez", "102"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservation_services WHERE reservation_id IN (?,?)")).
		WithArgs(1, 4).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "service_id", "price"}).AddRow(4, 5, "30.00"))

	list, err := NewReservationRepo(db).GetByClientID(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana Pérez", list[0].ClientName)
	assert.Equal(t, "101", list[0].RoomNumber)
	assert.Equal(t, model.StatusCancelled, list[0].Status)
	assert.Empty(t, list[0].Services)
	require.Len(t, list[1].Services, 1)
	assert.Equal(t, uint64(5), list[1].Services[0].ServiceID)
	assert.True(t, decimal.RequireFromString("30").Equal(list[1].Services[0].Price))
}

func TestReservationRepo_GetByClientID_Empty(t *testing.T) {
	db, mock := newMock(t)
	cols := append(append([]string{}, reservationCols...), "full_name", "number")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN clients c ON c.id = r.client_id")).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows(cols))

	list, err := NewReservationRepo(db).GetByClientID(context.Background(), 8)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReservationRepo_StoreErrorPassesThrough(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("bad connection")
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations r WHERE r.id = ?")).WillReturnError(boom)

	_, err := NewReservationRepo(db).GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}
