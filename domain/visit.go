package domain

import "time"

// Visit is an immutable, append-only record of a customer showing up.
// The date-ordered visit sequence is the source of truth for interval and
// spending computation; the summary fields on Customer are a cache over it.
type Visit struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	UserID     string    `json:"user_id"`
	Date       time.Time `json:"date"`
	Service    string    `json:"service,omitempty"`
	Staff      string    `json:"staff,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
