package usecase

import "context"

// Message categories, used for logging, outbox bookkeeping and repeat
// suppression in the message log.
const (
	CategoryWelcome            = "welcome"
	CategoryReviewRequest      = "review_request"
	CategoryThankYou           = "thank_you"
	CategoryLowRatingAlert     = "low_rating_alert"
	CategoryReEngagement       = "re_engagement"
	CategoryRecovery           = "recovery"
	CategoryReferralConversion = "referral_conversion"
)

// Notifier abstracts the outbound messaging provider. Send never returns an
// error: delivery failures are logged and buffered by the implementation and
// must not fail the operation that triggered the message.
type Notifier interface {
	Send(ctx context.Context, phoneNumber, message, category string) bool
}
