package models

import "time"

// Customer is a loyalty account tied to an NFC card. Points is the spendable
// balance; LifetimePoints only ever grows and drives the tier.
type Customer struct {
	ID             uint      `json:"id"`
	CardID         string    `json:"card_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Points         int       `json:"points"`
	LifetimePoints int       `json:"lifetime_points"`
	Tier           string    `json:"tier"`
	RegisteredAt   time.Time `json:"registered_at"`
	LastVisitAt    time.Time `json:"last_visit_at"`
	Active         bool      `json:"active"`
}
