package domain

import (
	"math"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func visitOn(s string) Visit {
	return Visit{Date: day(s)}
}

func TestAverageVisitIntervalSingleVisit(t *testing.T) {
	if got := AverageVisitInterval([]Visit{visitOn("2024-01-01")}); got != nil {
		t.Fatalf("expected nil interval for a single visit, got %v", *got)
	}
	if got := AverageVisitInterval(nil); got != nil {
		t.Fatal("expected nil interval for empty history")
	}
}

func TestAverageVisitIntervalThirtyDays(t *testing.T) {
	got := AverageVisitInterval([]Visit{visitOn("2024-01-01"), visitOn("2024-01-31")})
	if got == nil || *got != 30.0 {
		t.Fatalf("expected 30.0, got %v", got)
	}
}

func TestAverageVisitIntervalIgnoresInputOrder(t *testing.T) {
	shuffled := []Visit{visitOn("2024-03-01"), visitOn("2024-01-01"), visitOn("2024-02-01")}
	got := AverageVisitInterval(shuffled)
	if got == nil {
		t.Fatal("expected an interval")
	}
	// (31 + 29) / 2
	if *got != 30.0 {
		t.Fatalf("expected 30.0 regardless of input order, got %v", *got)
	}
	if !shuffled[0].Date.Equal(day("2024-03-01")) {
		t.Fatal("input slice must not be reordered")
	}
}

func TestAverageVisitIntervalFractionalDays(t *testing.T) {
	visits := []Visit{
		{Date: day("2024-01-01")},
		{Date: day("2024-01-02").Add(12 * time.Hour)},
	}
	got := AverageVisitInterval(visits)
	if got == nil || math.Abs(*got-1.5) > 1e-9 {
		t.Fatalf("expected exact 1.5 day gap, got %v", got)
	}
}

func TestComputeSpending(t *testing.T) {
	got := ComputeSpending([]MonetaryEvent{
		{Date: day("2024-01-01"), Amount: 500},
		{Date: day("2024-02-01"), Amount: 1500},
		{Date: day("2024-03-01"), Amount: 1000},
	})
	if got.TotalSpent != 3000 {
		t.Fatalf("total: expected 3000, got %v", got.TotalSpent)
	}
	if got.AverageSpend != 1000 {
		t.Fatalf("average: expected 1000, got %v", got.AverageSpend)
	}
	if got.LastPayment != 1000 {
		t.Fatalf("last payment: expected the chronologically last amount, got %v", got.LastPayment)
	}
}

func TestComputeSpendingLastPaymentByDate(t *testing.T) {
	// Latest record by date comes first in the slice.
	got := ComputeSpending([]MonetaryEvent{
		{Date: day("2024-06-01"), Amount: 250},
		{Date: day("2024-01-01"), Amount: 900},
	})
	if got.LastPayment != 250 {
		t.Fatalf("expected 250, got %v", got.LastPayment)
	}
}

func TestComputeSpendingEmpty(t *testing.T) {
	got := ComputeSpending(nil)
	if got.TotalSpent != 0 || got.AverageSpend != 0 || got.LastPayment != 0 {
		t.Fatalf("expected zero spending, got %+v", got)
	}
}

func TestRatingAggregate(t *testing.T) {
	avg, last, exp := RatingAggregate([]Rating{
		{Rating: 5, Date: day("2024-01-01")},
		{Rating: 2, Date: day("2024-02-01")},
	})
	if math.Abs(avg-3.5) > 1e-9 {
		t.Fatalf("expected average 3.5, got %v", avg)
	}
	if last != 2 {
		t.Fatalf("expected last rating 2, got %d", last)
	}
	if exp != ExperienceNegative {
		t.Fatalf("expected negative experience for last rating 2, got %s", exp)
	}
}

func TestRatingAggregateEmpty(t *testing.T) {
	avg, last, exp := RatingAggregate(nil)
	if avg != 0 || last != 0 || exp != ExperiencePositive {
		t.Fatalf("unexpected empty aggregate: %v %d %s", avg, last, exp)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	interval := 30.0
	last := day("2024-01-01")
	cases := []struct {
		elapsedDays int
		want        Status
	}{
		{35, StatusActive},
		{36, StatusAtRisk},
		{45, StatusAtRisk},
		{46, StatusLost},
	}
	for _, tc := range cases {
		now := last.Add(time.Duration(tc.elapsedDays) * 24 * time.Hour)
		if got := Classify(&last, &interval, now); got != tc.want {
			t.Fatalf("elapsed=%d: expected %s, got %s", tc.elapsedDays, tc.want, got)
		}
	}
}

func TestClassifyNoVisits(t *testing.T) {
	if got := Classify(nil, nil, day("2024-01-01")); got != StatusNew {
		t.Fatalf("expected New without a last visit, got %s", got)
	}
	zero := time.Time{}
	if got := Classify(&zero, nil, day("2024-01-01")); got != StatusNew {
		t.Fatalf("expected New for zero last visit, got %s", got)
	}
}

func TestClassifyDefaultsToMonthlyBaseline(t *testing.T) {
	last := day("2024-01-01")
	// 34 days elapsed, no interval: 34 <= 30+5 -> Active.
	if got := Classify(&last, nil, last.Add(34*24*time.Hour)); got != StatusActive {
		t.Fatalf("expected Active under the 30-day baseline, got %s", got)
	}
	// 40 days elapsed: At Risk under the baseline.
	if got := Classify(&last, nil, last.Add(40*24*time.Hour)); got != StatusAtRisk {
		t.Fatalf("expected At Risk under the 30-day baseline, got %s", got)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	last := day("2024-01-01")
	interval := 12.5
	now := day("2024-02-01")

	first := Classify(&last, &interval, now)
	second := Classify(&last, &interval, now)
	if first != second {
		t.Fatalf("classification is not idempotent: %s vs %s", first, second)
	}
	if interval != 12.5 || !last.Equal(day("2024-01-01")) {
		t.Fatal("inputs must not be mutated")
	}
}

func TestPreferredServices(t *testing.T) {
	visits := []Visit{
		{Service: "Haircut"},
		{Service: "Manicure"},
		{Service: "Haircut"},
		{Service: "Facial"},
		{Service: "Beard Trim"},
		{Service: ""},
	}
	got := PreferredServices(visits)
	if len(got) != 3 {
		t.Fatalf("expected top three services, got %v", got)
	}
	if got[0] != "Haircut" {
		t.Fatalf("expected Haircut first, got %v", got)
	}
	if got[1] != "Manicure" || got[2] != "Facial" {
		t.Fatalf("ties must keep first-seen order, got %v", got)
	}
}
