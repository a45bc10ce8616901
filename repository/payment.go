package repository

import (
	"context"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
)

type PaymentRepository interface {
	// Append inserts the payment; duplicates by ID are no-ops (inserted=false).
	Append(ctx context.Context, payment *domain.Payment) (inserted bool, err error)
	// ListByCustomer returns payments ordered by date ascending.
	ListByCustomer(ctx context.Context, businessID, userID string) ([]domain.Payment, error)
}
