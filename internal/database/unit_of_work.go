package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/availability"
	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// UnitOfWork runs booking work in serializable MySQL transactions.
type UnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	if db == nil {
		panic("nil db passed to NewUnitOfWork")
	}
	return &UnitOfWork{db: db}
}

type txStores struct {
	rooms        *repository.RoomRepo
	reservations *repository.ReservationRepo
}

func (t txStores) Rooms() availability.RoomStore          { return t.rooms }
func (t txStores) Reservations() booking.ReservationStore { return t.reservations }

// WithinTx commits when fn returns nil and rolls back otherwise.  fn's
// error is returned unchanged so business failures keep their kind.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx booking.Tx) error) error {
	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, txStores{
		rooms:        repository.NewRoomRepoTx(tx),
		reservations: repository.NewReservationRepoTx(tx),
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
