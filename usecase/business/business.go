package business

import (
	"context"

	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
)

// UseCase covers the small administrative surface for businesses.
type UseCase struct {
	businesses repository.BusinessRepository
	logger     *zap.Logger
}

func New(businesses repository.BusinessRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{businesses: businesses, logger: logger}
}

func (uc *UseCase) Create(ctx context.Context, b *domain.Business) (*domain.Business, error) {
	if b == nil || b.BusinessID == "" || b.Name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "businessId and name are required")
	}
	if err := uc.businesses.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (uc *UseCase) Get(ctx context.Context, businessID string) (*domain.Business, error) {
	return uc.businesses.Get(ctx, businessID)
}

func (uc *UseCase) List(ctx context.Context) ([]domain.Business, error) {
	return uc.businesses.List(ctx)
}

func (uc *UseCase) Delete(ctx context.Context, businessID string) error {
	return uc.businesses.Delete(ctx, businessID)
}
