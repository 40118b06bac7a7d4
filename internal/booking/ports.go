package booking

import (
	"context"

	"github.com/iliyamo/hotel-reservation/internal/availability"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationStore persists reservations.  GetByID returns
// repository.ErrNotFound for unknown ids and loads the service line items.
// Create assigns the id and stores the line items.
type ReservationStore interface {
	availability.OverlapStore
	Create(ctx context.Context, r *model.Reservation) error
	Update(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	GetAll(ctx context.Context) ([]model.Reservation, error)
	GetByClientID(ctx context.Context, clientID uint64) ([]model.ClientReservation, error)
}

// ServiceCatalog prices add-on services for a category.  When any of the
// requested ids is not offered it returns repository.ErrNotFound.
type ServiceCatalog interface {
	GetPrices(ctx context.Context, categoryID uint64, serviceIDs []uint64) ([]model.ServicePrice, error)
}

// ClientDirectory answers whether a client may book.
type ClientDirectory interface {
	ClientExists(ctx context.Context, clientID uint64) (bool, error)
}

// Tx exposes the stores bound to one unit of work.
type Tx interface {
	Rooms() availability.RoomStore
	Reservations() ReservationStore
}

// UnitOfWork runs fn inside a single serializable transaction.  The
// transaction commits when fn returns nil and rolls back otherwise; fn's
// error is returned unchanged.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Notification is a best-effort message for a client.
type Notification struct {
	Kind          string
	ClientID      uint64
	ReservationID uint64
	Message       string
}

// Notifier delivers notifications.  Errors are logged by the caller and
// never reach the booking operation's result.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Auditor records operation failures.  Warning is for failures that did
// not change the operation's result.  Neither may block.
type Auditor interface {
	Failure(ctx context.Context, op string, err error, fields map[string]any)
	Warning(ctx context.Context, op string, err error, fields map[string]any)
}
