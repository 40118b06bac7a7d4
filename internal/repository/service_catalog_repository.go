package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ServiceCatalogRepo prices the add-on services a category offers.  The
// price of a service depends on the category (category_services).
type ServiceCatalogRepo struct {
	db *sql.DB
}

func NewServiceCatalogRepo(db *sql.DB) *ServiceCatalogRepo { return &ServiceCatalogRepo{db: db} }

// GetPrices returns the prices of serviceIDs for the category.  The ids
// must be distinct.  A request is all or nothing: when a single id is not
// offered by the category, ErrNotFound is returned and no price.
func (r *ServiceCatalogRepo) GetPrices(ctx context.Context, categoryID uint64, serviceIDs []uint64) ([]model.ServicePrice, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	q := `SELECT service_id, price FROM category_services WHERE category_id = ? AND service_id IN (` +
		placeholders(len(serviceIDs)) + `) ORDER BY service_id`
	args := make([]any, 0, len(serviceIDs)+1)
	args = append(args, categoryID)
	for _, id := range serviceIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make([]model.ServicePrice, 0, len(serviceIDs))
	for rows.Next() {
		var p model.ServicePrice
		if err := rows.Scan(&p.ServiceID, &p.Price); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(prices) != len(serviceIDs) {
		return nil, ErrNotFound
	}
	return prices, nil
}
