package model

// Client is a hotel guest account as stored in the `clients` table.  Only
// the fields read by the booking engine are mapped.
//
// Fields:
//  ID       – primary key identifier.
//  FullName – display name used in reservation listings.
//  Email    – address used for booking notifications (may be empty).
//  IsActive – inactive clients cannot book.
type Client struct {
	ID       uint64 // clients.id
	FullName string // clients.full_name
	Email    string // clients.email
	IsActive bool   // clients.is_active
}
