package repository

import (
	"context"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
)

type RatingRepository interface {
	Append(ctx context.Context, rating *domain.Rating) error
	// ListByCustomer returns the feedback history ordered by date ascending.
	ListByCustomer(ctx context.Context, businessID, userID string) ([]domain.Rating, error)
}
