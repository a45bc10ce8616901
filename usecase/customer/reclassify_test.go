package customer

import (
	"context"
	"testing"
	"time"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
)

func seedCustomer(f *fixture, businessID, userID string, status domain.Status, lastVisitDaysAgo int, interval *float64, now time.Time) {
	last := now.AddDate(0, 0, -lastVisitDaysAgo)
	c := &domain.Customer{
		ID:                   userID,
		UserID:               userID,
		BusinessID:           businessID,
		FullName:             "Customer " + userID,
		PhoneNumber:          "+9198000000" + userID,
		Status:               status,
		LastVisitDate:        &last,
		AverageVisitInterval: interval,
	}
	c.Touch()
	if err := f.customers.Create(context.Background(), c); err != nil {
		panic(err)
	}
}

func TestReclassifyAllTransitionsAndNotifies(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture()
	interval := 30.0

	seedCustomer(f, "biz-1", "1", domain.StatusActive, 10, &interval, now) // stays Active
	seedCustomer(f, "biz-1", "2", domain.StatusActive, 40, &interval, now) // -> At Risk
	seedCustomer(f, "biz-1", "3", domain.StatusAtRisk, 50, &interval, now) // -> Lost

	changes, err := f.uc.ReclassifyAll(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 transitions, got %d: %+v", len(changes), changes)
	}

	byUser := map[string]StatusChange{}
	for _, ch := range changes {
		byUser[ch.UserID] = ch
	}
	if ch := byUser["2"]; ch.NewStatus != domain.StatusAtRisk || ch.OldStatus != domain.StatusActive {
		t.Fatalf("customer 2: unexpected change %+v", ch)
	}
	if ch := byUser["3"]; ch.NewStatus != domain.StatusLost {
		t.Fatalf("customer 3: unexpected change %+v", ch)
	}

	if got := len(f.notifier.byCategory("re_engagement")); got != 1 {
		t.Fatalf("expected one re-engagement nudge, got %d", got)
	}
	if got := len(f.notifier.byCategory("recovery")); got != 1 {
		t.Fatalf("expected one recovery nudge, got %d", got)
	}
}

func TestReclassifyAllSkipsRecovered(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture()
	interval := 30.0

	// long silent, would classify as Lost, but Recovered is operator-owned
	seedCustomer(f, "biz-1", "1", domain.StatusRecovered, 90, &interval, now)

	changes, err := f.uc.ReclassifyAll(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Fatalf("Recovered customers must not be reclassified by the sweep: %+v", changes)
	}

	c, _ := f.uc.Get(context.Background(), "biz-1", "1")
	if c.Status != domain.StatusRecovered {
		t.Fatalf("expected Recovered preserved, got %s", c.Status)
	}
}

func TestReclassifyAllUsesPersistedInterval(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture()
	wide := 90.0

	// 50 days silent but a 90-day personal cadence: still Active.
	seedCustomer(f, "biz-1", "1", domain.StatusActive, 50, &wide, now)
	// 50 days silent with no cadence: the 30-day baseline applies -> Lost.
	seedCustomer(f, "biz-1", "2", domain.StatusActive, 50, nil, now)

	changes, err := f.uc.ReclassifyAll(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 1 || changes[0].UserID != "2" || changes[0].NewStatus != domain.StatusLost {
		t.Fatalf("unexpected changes: %+v", changes)
	}
}

func TestReclassifyAllIsolatesBusinessFailures(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture()
	interval := 30.0

	if err := f.businesses.Create(context.Background(), &domain.Business{BusinessID: "biz-2", Name: "Other"}); err != nil {
		t.Fatal(err)
	}
	seedCustomer(f, "biz-1", "1", domain.StatusActive, 40, &interval, now)
	seedCustomer(f, "biz-2", "2", domain.StatusActive, 40, &interval, now)

	// a concurrent writer keeps winning on biz-2's customer: its stored
	// version moves between the sweep's read and write, so the CAS loses
	f.customers.mu.Lock()
	f.customers.staleKeys = map[string]bool{key("biz-2", "2"): true}
	f.customers.mu.Unlock()

	changes, err := f.uc.ReclassifyAll(context.Background(), now)
	if len(changes) != 1 || changes[0].BusinessID != "biz-1" {
		t.Fatalf("the healthy business must still be processed: %+v", changes)
	}
	// version drift is treated as a concurrent-writer win, not an error
	if err != nil {
		t.Fatalf("conflicts are skipped silently, got %v", err)
	}
}

func TestReclassifyAllSweepContinuesPastCustomerErrors(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture()
	interval := 30.0

	seedCustomer(f, "biz-1", "1", domain.StatusActive, 40, &interval, now)
	seedCustomer(f, "biz-1", "2", domain.StatusActive, 40, &interval, now)

	f.customers.updateErr = domain.NewError(domain.ErrCodeInternal, "write failed")

	changes, err := f.uc.ReclassifyAll(context.Background(), now)
	if err == nil {
		t.Fatal("expected the aggregated error to be reported")
	}
	if len(changes) != 0 {
		t.Fatalf("no change should be recorded when every write fails: %+v", changes)
	}
}
