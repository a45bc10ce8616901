package repository

import (
	"context"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
)

type BusinessRepository interface {
	Get(ctx context.Context, businessID string) (*domain.Business, error)
	// Create fails with domain.ErrBusinessExists for a duplicate businessID.
	Create(ctx context.Context, business *domain.Business) error
	List(ctx context.Context) ([]domain.Business, error)
	Delete(ctx context.Context, businessID string) error
}
