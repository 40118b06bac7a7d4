package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ClientRepo reads the clients table.
type ClientRepo struct {
	db *sql.DB
}

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

// ClientExists reports whether an active client has the id.
func (r *ClientRepo) ClientExists(ctx context.Context, clientID uint64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM clients WHERE id = ? AND is_active = 1)", clientID).Scan(&ok)
	return ok, err
}

// GetByID fetches a client by id, inactive ones included.
func (r *ClientRepo) GetByID(ctx context.Context, clientID uint64) (model.Client, error) {
	var c model.Client
	err := r.db.QueryRowContext(ctx,
		"SELECT id, full_name, email, is_active FROM clients WHERE id = ? LIMIT 1",
		clientID).Scan(&c.ID, &c.FullName, &c.Email, &c.IsActive)
	if err != nil {
		return model.Client{}, notFound(err)
	}
	return c, nil
}
