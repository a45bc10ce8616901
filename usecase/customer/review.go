package customer

import (
	"context"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/usecase"
)

// RequestReview asks an existing customer to rate their latest visit.
func (uc *UseCase) RequestReview(ctx context.Context, businessID, userID string) error {
	customer, err := uc.customers.GetByKey(ctx, businessID, userID)
	if err != nil {
		return err
	}
	if customer.PhoneNumber == "" {
		return domain.NewError(domain.ErrCodeInvalid, "customer has no phone number")
	}

	name := businessDisplayName(ctx, uc.businesses, businessID)
	if uc.notifier != nil && !uc.notifier.Send(ctx, customer.PhoneNumber, reviewRequestMessage(customer.FullName, name), usecase.CategoryReviewRequest) {
		return domain.NewError(domain.ErrCodeDownstream, "failed to send review request")
	}
	return nil
}
