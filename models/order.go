package models

import "time"

// Order lifecycle states. Forward-only, except that staff set the two
// terminal handoff/payment transitions explicitly.
const (
	OrderPending   = "pending"
	OrderPreparing = "preparing"
	OrderPrepared  = "prepared"
	OrderReady     = "ready"
	OrderHanded    = "handed_to_customer"
	OrderPaid      = "paid"
)

// Order tracks one table's order. Dish lines are prepared unit by unit in
// the kitchen; drink lines skip preparation and are delivered by the bar.
type Order struct {
	ID         uint        `json:"id"`
	Table      string      `json:"table"`
	PartySize  int         `json:"party_size"`
	DishLines  []DishLine  `json:"dish_lines"`
	DrinkLines []DrinkLine `json:"drink_lines"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// DishLine is one menu item with a per-unit preparation flag, so a line of
// quantity 3 can be two-thirds done.
type DishLine struct {
	Product   string `json:"product"`
	Quantity  int    `json:"quantity"`
	Prepared  []bool `json:"prepared"`
	Delivered []bool `json:"delivered,omitempty"`
}

// DrinkLine only tracks delivery.
type DrinkLine struct {
	Product   string `json:"product"`
	Quantity  int    `json:"quantity"`
	Delivered []bool `json:"delivered"`
}
