package repository

import (
	"context"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
)

type VisitRepository interface {
	// Append inserts the visit and reports whether a row was actually
	// written. Re-appending an already stored visit ID is a no-op with
	// inserted=false, which keeps event replays idempotent.
	Append(ctx context.Context, visit *domain.Visit) (inserted bool, err error)
	// ListByCustomer returns the full history ordered by date ascending,
	// insertion order for equal dates.
	ListByCustomer(ctx context.Context, businessID, userID string) ([]domain.Visit, error)
}
