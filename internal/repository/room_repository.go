package repository

import (
	"context"
	"database/sql"
)

// RoomRepo lists the rooms of a category.  A repo bound to a transaction
// locks the listed rows so two bookings racing for the same category wait
// on each other instead of both seeing the same free room.
type RoomRepo struct {
	q    querier
	lock bool
}

// NewRoomRepo returns a RoomRepo reading outside any transaction.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{q: db} }

// NewRoomRepoTx returns a RoomRepo bound to tx.
func NewRoomRepoTx(tx *sql.Tx) *RoomRepo { return &RoomRepo{q: tx, lock: true} }

// ListActiveByCategory returns the ids of the active rooms of a category in
// ascending order.
func (r *RoomRepo) ListActiveByCategory(ctx context.Context, categoryID uint64) ([]uint64, error) {
	q := `SELECT id FROM rooms WHERE category_id = ? AND is_active = 1 ORDER BY id`
	if r.lock {
		q += ` FOR UPDATE`
	}
	rows, err := r.q.QueryContext(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
