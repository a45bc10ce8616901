package repository

import (
	"context"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
)

type ReferralRepository interface {
	GetByCode(ctx context.Context, referralCode string) (*domain.Referral, error)
	// GetByReferrer returns domain.ErrReferralNotFound when the referrer has
	// no code yet for this business.
	GetByReferrer(ctx context.Context, businessID, referrerUserID string) (*domain.Referral, error)
	Create(ctx context.Context, referral *domain.Referral) error
	Update(ctx context.Context, referral *domain.Referral) error
	ListByBusiness(ctx context.Context, businessID string) ([]domain.Referral, error)
	Delete(ctx context.Context, referralCode string) error
}
