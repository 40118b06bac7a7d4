package model

import "github.com/shopspring/decimal"

// RoomCategory is a class of rooms sharing capacity and nightly rate
// (room_categories row).
type RoomCategory struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Capacity    int             `json:"capacity"`
	NightlyRate decimal.Decimal `json:"nightly_rate"`
	IsActive    bool            `json:"is_active"`
}

// ServicePrice is the price a category charges for an add-on service
// (category_services row).
type ServicePrice struct {
	ServiceID uint64          `json:"service_id"`
	Price     decimal.Decimal `json:"price"`
}
