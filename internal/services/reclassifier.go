package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/usecase/customer"
)

// Reclassifier runs the lifecycle sweep on a cron schedule so customers who
// silently drift past their grace windows are moved without waiting for a
// webhook event.
type Reclassifier struct {
	customers *customer.UseCase
	cron      *cron.Cron
	logger    *zap.Logger
	timeout   time.Duration
}

func NewReclassifier(customers *customer.UseCase, schedule string, logger *zap.Logger) (*Reclassifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = "0 0 10 * * *"
	}

	r := &Reclassifier{
		customers: customers,
		logger:    logger,
		timeout:   10 * time.Minute,
		cron:      cron.New(cron.WithSeconds()),
	}
	if _, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.Run(ctx)
	}); err != nil {
		return nil, err
	}
	return r, nil
}

// Run executes one sweep synchronously.
func (r *Reclassifier) Run(ctx context.Context) {
	started := time.Now()
	changes, err := r.customers.ReclassifyAll(ctx, started)
	if err != nil {
		// partial failures still report the transitions that did land
		r.logger.Error("lifecycle sweep finished with errors", zap.Error(err))
	}
	r.logger.Info("lifecycle sweep finished",
		zap.Int("transitions", len(changes)),
		zap.Duration("took", time.Since(started)))
}

// Start launches the cron scheduler.
func (r *Reclassifier) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("reclassifier started")
}

// Stop gracefully stops the scheduler.
func (r *Reclassifier) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("reclassifier stopped")
}
