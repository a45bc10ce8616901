package domain

import (
	"sort"
	"time"
)

const (
	// DefaultVisitInterval is the monthly baseline assumed for customers
	// whose own visit cadence cannot be computed yet (fewer than two visits).
	DefaultVisitInterval = 30.0

	atRiskGraceDays = 5.0
	lostGraceDays   = 15.0

	hoursPerDay = 24.0

	maxPreferredServices = 3
)

// MonetaryEvent is a dated amount drawn from either a visit or a payment.
type MonetaryEvent struct {
	Date   time.Time
	Amount float64
}

// AverageVisitInterval returns the mean gap in days between consecutive
// visits, or nil when fewer than two visits exist. The input is never
// mutated; visits are re-sorted by date (stable, so same-day visits keep
// their insertion order) before the gaps are computed.
func AverageVisitInterval(visits []Visit) *float64 {
	if len(visits) < 2 {
		return nil
	}

	sorted := make([]Visit, len(visits))
	copy(sorted, visits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var sum float64
	for i := 1; i < len(sorted); i++ {
		sum += sorted[i].Date.Sub(sorted[i-1].Date).Hours() / hoursPerDay
	}

	avg := sum / float64(len(sorted)-1)
	return &avg
}

// ComputeSpending aggregates a customer's monetary events. The caller is
// expected to pass only events that actually carry an amount (visits without
// one contribute nothing). LastPayment is the amount of the most recent
// event by date.
func ComputeSpending(events []MonetaryEvent) Spending {
	if len(events) == 0 {
		return Spending{}
	}

	sorted := make([]MonetaryEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var total float64
	for _, e := range sorted {
		total += e.Amount
	}

	return Spending{
		TotalSpent:   total,
		AverageSpend: total / float64(len(sorted)),
		LastPayment:  sorted[len(sorted)-1].Amount,
	}
}

// RatingAggregate computes the rating summary over the full feedback history.
// An empty history yields a zero average and a Positive default experience.
func RatingAggregate(ratings []Rating) (average float64, last int, experience Experience) {
	if len(ratings) == 0 {
		return 0, 0, ExperiencePositive
	}

	sorted := make([]Rating, len(ratings))
	copy(sorted, ratings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var sum int
	for _, r := range sorted {
		sum += r.Rating
	}

	last = sorted[len(sorted)-1].Rating
	experience = ExperienceNegative
	if last >= 4 {
		experience = ExperiencePositive
	}
	return float64(sum) / float64(len(sorted)), last, experience
}

// Classify derives the lifecycle status from the last visit and the
// customer's visit cadence. It is pure: "now" is injected so the result is
// fully determined by its inputs. Recovered is never produced here; it is an
// operator-set state that the caller preserves until the next visit event.
func Classify(lastVisit *time.Time, avgInterval *float64, now time.Time) Status {
	if lastVisit == nil || lastVisit.IsZero() {
		return StatusNew
	}

	interval := DefaultVisitInterval
	if avgInterval != nil {
		interval = *avgInterval
	}

	elapsed := now.Sub(*lastVisit).Hours() / hoursPerDay
	switch {
	case elapsed <= interval+atRiskGraceDays:
		return StatusActive
	case elapsed <= interval+lostGraceDays:
		return StatusAtRisk
	default:
		return StatusLost
	}
}

// PreferredServices returns the customer's most frequent service names,
// most frequent first, capped at three. Ties keep first-seen order.
func PreferredServices(visits []Visit) []string {
	counts := make(map[string]int)
	var order []string
	for _, v := range visits {
		if v.Service == "" {
			continue
		}
		if _, seen := counts[v.Service]; !seen {
			order = append(order, v.Service)
		}
		counts[v.Service]++
	}
	if len(order) == 0 {
		return nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxPreferredServices {
		order = order[:maxPreferredServices]
	}
	return order
}
