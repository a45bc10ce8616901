package analytics

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
)

const (
	// billingPeriodsPerYear annualizes a customer's average spend: a
	// recovered customer is valued at twelve average payments.
	billingPeriodsPerYear = 12

	// referenceIntervalDays normalizes visit cadence to a monthly baseline
	// for the LTV projection.
	referenceIntervalDays = 30.0
)

// UseCase rolls classifier outputs and spend summaries up into
// dashboard-ready aggregates for one business. All metrics are recomputed on
// demand from the business's customer set; nothing is cached.
type UseCase struct {
	customers repository.CustomerRepository
	logger    *zap.Logger
}

func New(customers repository.CustomerRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{customers: customers, logger: logger}
}

// DateRange optionally restricts the rollup to customers created inside it.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

type Retention struct {
	AtRisk    int `json:"at_risk"`
	Lost      int `json:"lost"`
	Recovered int `json:"recovered"`
}

type Revenue struct {
	Saved         float64 `json:"saved"`
	PotentialLoss float64 `json:"potential_loss"`
}

type StatusCounts struct {
	Active    int `json:"active"`
	AtRisk    int `json:"at_risk"`
	Lost      int `json:"lost"`
	New       int `json:"new"`
	Recovered int `json:"recovered"`
}

type RatingMetrics struct {
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
}

// BusinessMetrics is the dashboard payload.
type BusinessMetrics struct {
	Retention      Retention     `json:"retention"`
	Revenue        Revenue       `json:"revenue"`
	CustomerStatus StatusCounts  `json:"customer_status"`
	LTV            float64       `json:"ltv"`
	Ratings        RatingMetrics `json:"ratings"`
}

// Dashboard computes the retention metrics for one business.
func (uc *UseCase) Dashboard(ctx context.Context, businessID string, rng *DateRange) (*BusinessMetrics, error) {
	if businessID == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "businessId is required")
	}

	filter := repository.CustomerFilter{BusinessID: businessID}
	if rng != nil {
		filter.CreatedFrom = rng.From
		filter.CreatedTo = rng.To
	}
	customers, err := uc.customers.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	metrics := &BusinessMetrics{
		Ratings: RatingMetrics{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}},
	}

	var (
		ltvTotal    float64
		activeCount int
		ratingSum   float64
		ratedCount  int
	)

	for i := range customers {
		c := &customers[i]

		switch c.Status {
		case domain.StatusActive:
			metrics.CustomerStatus.Active++
			activeCount++
			ltvTotal += lifetimeValue(c)
		case domain.StatusAtRisk:
			metrics.CustomerStatus.AtRisk++
			metrics.Retention.AtRisk++
		case domain.StatusLost:
			metrics.CustomerStatus.Lost++
			metrics.Retention.Lost++
			metrics.Revenue.PotentialLoss += annualizedValue(c)
		case domain.StatusNew:
			metrics.CustomerStatus.New++
		case domain.StatusRecovered:
			metrics.CustomerStatus.Recovered++
			metrics.Retention.Recovered++
			metrics.Revenue.Saved += annualizedValue(c)
		}

		// never-rated customers are excluded, not counted as rating 0
		if c.AverageRating > 0 {
			ratingSum += c.AverageRating
			ratedCount++
			metrics.Ratings.Distribution[ratingBucket(c.AverageRating)]++
		}
	}

	if activeCount > 0 {
		metrics.LTV = ltvTotal / float64(activeCount)
	}
	if ratedCount > 0 {
		metrics.Ratings.Average = ratingSum / float64(ratedCount)
	}

	return metrics, nil
}

// annualizedValue projects the current average spend over twelve billing
// periods. Applied to Recovered customers it is "saved" revenue, applied to
// Lost customers it is revenue at risk.
func annualizedValue(c *domain.Customer) float64 {
	return c.Spending.AverageSpend * billingPeriodsPerYear
}

// lifetimeValue normalizes average spend to a monthly cadence and
// annualizes it: a customer visiting every 60 days contributes half the LTV
// of one spending the same per visit every 30 days.
func lifetimeValue(c *domain.Customer) float64 {
	interval := domain.DefaultVisitInterval
	if c.AverageVisitInterval != nil && *c.AverageVisitInterval > 0 {
		interval = *c.AverageVisitInterval
	}
	return c.Spending.AverageSpend * (billingPeriodsPerYear / (interval / referenceIntervalDays))
}

// ratingBucket maps an average rating onto the nearest star, clamped to 1..5.
func ratingBucket(average float64) int {
	bucket := int(math.Round(average))
	if bucket < 1 {
		bucket = 1
	}
	if bucket > 5 {
		bucket = 5
	}
	return bucket
}
