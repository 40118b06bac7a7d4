// Package availability finds a free room of a category for a stay.  Stays
// are half-open date ranges: [a1,a2) and [b1,b2) overlap iff a1 < b2 and
// b1 < a2, so a stay ending the day another begins does not conflict.
package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/apperror"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// Failure messages reported by the resolver.
const (
	MsgCategoryNotFound = "La categoría de habitación no existe."
	MsgCapacityExceeded = "La cantidad de personas excede la capacidad de la categoría."
	MsgNoRoomAvailable  = "No hay habitaciones disponibles para las fechas seleccionadas."
)

// CategoryStore returns repository.ErrNotFound for unknown categories.
type CategoryStore interface {
	GetByID(ctx context.Context, id uint64) (model.RoomCategory, error)
}

// RoomStore lists the ids of the active rooms of a category.
type RoomStore interface {
	ListActiveByCategory(ctx context.Context, categoryID uint64) ([]uint64, error)
}

// OverlapStore reports whether an active Pending or Confirmed reservation
// other than excludeReservationID (0 excludes nothing) holds roomID over
// any part of [entry, departure).
type OverlapStore interface {
	FindOverlapping(ctx context.Context, roomID uint64, entry, departure time.Time, excludeReservationID uint64) (bool, error)
}

// Resolver answers availability questions against the stores it was built
// with.  Build one per unit of work so room and overlap reads share the
// caller's transaction.
type Resolver struct {
	categories   CategoryStore
	rooms        RoomStore
	reservations OverlapStore
}

// NewResolver panics on nil stores.
func NewResolver(categories CategoryStore, rooms RoomStore, reservations OverlapStore) *Resolver {
	if categories == nil || rooms == nil || reservations == nil {
		panic("nil store passed to NewResolver")
	}
	return &Resolver{categories: categories, rooms: rooms, reservations: reservations}
}

// Overlaps is the half-open interval predicate.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
	return a1.Before(b2) && b1.Before(a2)
}

// Admit loads the category and checks the party fits.  Capacity is checked
// here, before any room search, so it is never reported as "no rooms".
func (r *Resolver) Admit(ctx context.Context, categoryID uint64, partySize int) (model.RoomCategory, error) {
	cat, err := r.categories.GetByID(ctx, categoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.RoomCategory{}, apperror.New(apperror.NotFound, MsgCategoryNotFound)
	}
	if err != nil {
		return model.RoomCategory{}, fmt.Errorf("load category %d: %w", categoryID, err)
	}
	if !cat.IsActive {
		return model.RoomCategory{}, apperror.New(apperror.NotFound, MsgCategoryNotFound)
	}
	if partySize > cat.Capacity {
		return model.RoomCategory{}, apperror.New(apperror.ValidationFailure, MsgCapacityExceeded)
	}
	return cat, nil
}

// FindFreeRoom runs the full search: category, capacity, then the lowest
// room id with no overlapping reservation.
func (r *Resolver) FindFreeRoom(ctx context.Context, categoryID uint64, partySize int, entry, departure time.Time) (uint64, error) {
	if _, err := r.Admit(ctx, categoryID, partySize); err != nil {
		return 0, err
	}
	return r.FreeRoom(ctx, categoryID, entry, departure, 0, 0)
}

// FindFreeRoomExcluding searches the category for the new window while
// ignoring the reservation's own booking.  Capacity is not re-checked but
// an inactive category is reported as absent, as in Admit.  currentRoomID is kept when it
// is still free; otherwise the lowest free room id wins.
func (r *Resolver) FindFreeRoomExcluding(ctx context.Context, reservationID, currentRoomID, categoryID uint64, entry, departure time.Time) (uint64, error) {
	cat, err := r.categories.GetByID(ctx, categoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, apperror.New(apperror.NotFound, MsgCategoryNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("load category %d: %w", categoryID, err)
	}
	if !cat.IsActive {
		return 0, apperror.New(apperror.NotFound, MsgCategoryNotFound)
	}
	return r.FreeRoom(ctx, categoryID, entry, departure, reservationID, currentRoomID)
}

// FreeRoom scans the active rooms of an admitted category.  It does not
// re-check the category.
func (r *Resolver) FreeRoom(ctx context.Context, categoryID uint64, entry, departure time.Time, excludeReservationID, preferredRoomID uint64) (uint64, error) {
	ids, err := r.rooms.ListActiveByCategory(ctx, categoryID)
	if err != nil {
		return 0, fmt.Errorf("list rooms of category %d: %w", categoryID, err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if preferredRoomID != 0 {
		for _, id := range ids {
			if id != preferredRoomID {
				continue
			}
			busy, err := r.reservations.FindOverlapping(ctx, id, entry, departure, excludeReservationID)
			if err != nil {
				return 0, fmt.Errorf("check room %d: %w", id, err)
			}
			if !busy {
				return id, nil
			}
			break
		}
	}

	for _, id := range ids {
		if id == preferredRoomID {
			continue
		}
		busy, err := r.reservations.FindOverlapping(ctx, id, entry, departure, excludeReservationID)
		if err != nil {
			return 0, fmt.Errorf("check room %d: %w", id, err)
		}
		if !busy {
			return id, nil
		}
	}
	return 0, apperror.New(apperror.Conflict, MsgNoRoomAvailable)
}
