package repository

import (
	"context"
	"time"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
)

type CustomerFilter struct {
	BusinessID  string
	Status      domain.Status
	Search      string
	SortBy      string
	SortDesc    bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

type CustomerRepository interface {
	// GetByKey returns domain.ErrCustomerNotFound when the pair is unknown.
	GetByKey(ctx context.Context, businessID, userID string) (*domain.Customer, error)
	// Create fails with domain.ErrVersionConflict when the (business, user)
	// pair already exists, so create races resolve by re-reading.
	Create(ctx context.Context, customer *domain.Customer) error
	// Update applies a compare-and-swap on Version: it only writes when the
	// stored version still matches customer.Version, increments it, and
	// returns domain.ErrVersionConflict otherwise.
	Update(ctx context.Context, customer *domain.Customer) error
	List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, error)
	Delete(ctx context.Context, businessID, userID string) error
}
