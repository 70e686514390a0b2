package domain

import "time"

// SavedCart is a session's cart as it is persisted between requests.
type SavedCart struct {
	SessionID string
	Items     []LineItem
	Coupon    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
