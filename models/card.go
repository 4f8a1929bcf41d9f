package models

// CardEnvelope is the full blob written to a simulated NFC card.
type CardEnvelope struct {
	Version  string   `json:"version"`
	CardType string   `json:"card_type"`
	Data     CardData `json:"data"`
}

// CardData is the customer snapshot stored on the card. UpdatedAt is kept as
// an RFC3339 string so the checksum is stable across marshal round-trips.
type CardData struct {
	CustomerID uint   `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Points     int    `json:"points"`
	Tier       string `json:"tier"`
	UpdatedAt  string `json:"updated_at"`
	Checksum   string `json:"checksum"`
}
