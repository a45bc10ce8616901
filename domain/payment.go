package domain

import "time"

// Payment is an append-only monetary record.
type Payment struct {
	ID            string    `json:"id"`
	BusinessID    string    `json:"business_id"`
	UserID        string    `json:"user_id"`
	ServiceID     string    `json:"service_id,omitempty"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}
