package customer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
	"github.com/SimalChaudhari/rebook-aI-backend/usecase"
)

// reclassifyConcurrency bounds how many businesses are swept in parallel.
const reclassifyConcurrency = 4

// StatusChange records one transition produced by a reclassification sweep.
type StatusChange struct {
	BusinessID string        `json:"business_id"`
	UserID     string        `json:"user_id"`
	OldStatus  domain.Status `json:"old_status"`
	NewStatus  domain.Status `json:"new_status"`
}

// ReclassifyAll re-runs the lifecycle classifier over every customer of
// every business using the persisted lastVisitDate and averageVisitInterval
// (it reclassifies only, it does not recompute intervals). Customers whose
// status changed to At Risk or Lost get a retention nudge. Failures are
// isolated per business and per customer: the sweep always runs to
// completion and reports the collected errors alongside the changes.
func (uc *UseCase) ReclassifyAll(ctx context.Context, now time.Time) ([]StatusChange, error) {
	businesses, err := uc.businesses.List(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		changes []StatusChange
		errs    *multierror.Error
	)

	g := &errgroup.Group{}
	g.SetLimit(reclassifyConcurrency)
	for _, b := range businesses {
		businessID := b.BusinessID
		g.Go(func() error {
			businessChanges, err := uc.reclassifyBusiness(ctx, businessID, now)
			mu.Lock()
			changes = append(changes, businessChanges...)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("business %s: %w", businessID, err))
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return changes, errs.ErrorOrNil()
}

func (uc *UseCase) reclassifyBusiness(ctx context.Context, businessID string, now time.Time) ([]StatusChange, error) {
	customers, err := uc.customers.List(ctx, repository.CustomerFilter{BusinessID: businessID})
	if err != nil {
		return nil, err
	}

	var (
		changes []StatusChange
		errs    *multierror.Error
	)
	for i := range customers {
		c := customers[i]

		// Recovered is operator-set and only a new visit may move it.
		if c.Status == domain.StatusRecovered {
			continue
		}

		next := domain.Classify(c.LastVisitDate, c.AverageVisitInterval, now)
		if next == c.Status {
			continue
		}

		old := c.Status
		c.Status = next
		c.Touch()
		if err := uc.customers.Update(ctx, &c); err != nil {
			if domain.IsDomainError(err, domain.ErrCodeConflict) {
				// a concurrent visit-triggered update wins
				continue
			}
			errs = multierror.Append(errs, fmt.Errorf("customer %s: %w", c.UserID, err))
			continue
		}

		changes = append(changes, StatusChange{
			BusinessID: businessID,
			UserID:     c.UserID,
			OldStatus:  old,
			NewStatus:  next,
		})
		uc.logger.Info("customer reclassified",
			zap.String("business_id", businessID),
			zap.String("user_id", c.UserID),
			zap.String("old_status", string(old)),
			zap.String("new_status", string(next)))

		switch next {
		case domain.StatusAtRisk:
			uc.notify(ctx, c.PhoneNumber, atRiskMessage(c.FullName), usecase.CategoryReEngagement)
		case domain.StatusLost:
			uc.notify(ctx, c.PhoneNumber, lostMessage(c.FullName), usecase.CategoryRecovery)
		}
	}
	return changes, errs.ErrorOrNil()
}
