package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// CategoryRepo reads room_categories.  Inactive categories are returned
// as they are; deciding what an inactive category means is up to the
// caller.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo returns a CategoryRepo bound to db.
func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// GetByID returns ErrNotFound when no category has the id.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.RoomCategory, error) {
	const q = `SELECT id, name, capacity, nightly_rate, is_active FROM room_categories WHERE id = ? LIMIT 1`
	var c model.RoomCategory
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Capacity, &c.NightlyRate, &c.IsActive)
	if err != nil {
		return model.RoomCategory{}, notFound(err)
	}
	return c, nil
}
