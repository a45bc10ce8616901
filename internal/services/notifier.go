package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/internal/infrastructure/outbox"
	"github.com/SimalChaudhari/rebook-aI-backend/pkg/phone"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
	"github.com/SimalChaudhari/rebook-aI-backend/usecase"
)

// MessageSender abstracts the WhatsApp client.
type MessageSender interface {
	SendText(ctx context.Context, to, body string) error
}

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// NotifierConfig controls outbox draining and retry behavior.
type NotifierConfig struct {
	DrainInterval time.Duration
	BatchSize     int
	MaxRetries    int
}

// Notifier implements usecase.Notifier on top of the WhatsApp client. Repeat
// sends inside a category window are suppressed via the message log, and
// messages the provider rejects are parked in the outbox and retried on a
// cron schedule.
type Notifier struct {
	sender  MessageSender
	log     repository.MessageLog
	outbox  *outbox.Store
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     NotifierConfig
}

func NewNotifier(
	sender MessageSender,
	log repository.MessageLog,
	store *outbox.Store,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg NotifierConfig,
) *Notifier {
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Notifier{
		sender:  sender,
		log:     log,
		outbox:  store,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.DrainInterval.Seconds()))
	_, _ = n.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DrainInterval)
		defer cancel()
		if err := n.Drain(ctx); err != nil {
			n.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return n
}

// Start launches the outbox drain scheduler.
func (n *Notifier) Start() {
	if n == nil || n.cron == nil {
		return
	}
	n.cron.Start()
	n.logger.Info("notifier started")
}

// Stop gracefully stops the scheduler.
func (n *Notifier) Stop(ctx context.Context) {
	if n == nil || n.cron == nil {
		return
	}
	stopCtx := n.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	n.logger.Info("notifier stopped")
}

// Send delivers one message. It never fails the calling operation: provider
// errors park the message in the outbox and report false.
func (n *Notifier) Send(ctx context.Context, phoneNumber, message, category string) bool {
	to := phone.NormalizeE164(phoneNumber)
	if to == "" {
		n.logger.Warn("message dropped, no recipient", zap.String("category", category))
		return false
	}

	if window := suppressionWindow(category); window > 0 && n.log != nil {
		seen, err := n.log.Seen(ctx, to, category)
		if err != nil {
			n.logger.Warn("message log unavailable, sending anyway", zap.Error(err))
		} else if seen {
			n.logger.Debug("suppressed repeat message",
				zap.String("category", category), zap.String("to", to))
			return true
		}
	}

	if err := n.sender.SendText(ctx, to, message); err != nil {
		n.logger.Warn("send failed, parking message in outbox",
			zap.String("category", category), zap.String("to", to), zap.Error(err))
		n.park(to, message, category)
		return false
	}

	n.markSent(ctx, to, category)
	return true
}

// Drain retries parked messages synchronously.
func (n *Notifier) Drain(ctx context.Context) error {
	if n == nil || n.outbox == nil {
		return nil
	}
	if n.monitor != nil && !n.monitor.IsOnline() {
		n.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	items, err := n.outbox.GetBatch(n.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := n.sender.SendText(ctx, item.PhoneNumber, item.Message); err != nil {
			n.logger.Error("failed to deliver parked message",
				zap.String("item_id", item.ID),
				zap.String("category", item.Category),
				zap.Error(err))

			item.Retries++
			if item.Retries >= n.cfg.MaxRetries {
				n.logger.Warn("dropping parked message (max retries reached)", zap.String("item_id", item.ID))
				_ = n.outbox.Remove(item)
				continue
			}

			if err := n.outbox.Remove(item); err != nil {
				n.logger.Warn("failed to remove parked message", zap.Error(err))
			}
			if err := n.outbox.Requeue(item); err != nil {
				n.logger.Error("failed to requeue parked message", zap.Error(err))
			}
			continue
		}

		n.markSent(ctx, item.PhoneNumber, item.Category)
		if err := n.outbox.Remove(item); err != nil {
			n.logger.Warn("failed to purge delivered message", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of parked messages.
func (n *Notifier) Size() int {
	if n == nil || n.outbox == nil {
		return 0
	}
	size, err := n.outbox.Size()
	if err != nil {
		return 0
	}
	return size
}

func (n *Notifier) park(to, message, category string) {
	if n.outbox == nil {
		return
	}
	item := outbox.Item{
		PhoneNumber: to,
		Message:     message,
		Category:    category,
		Priority:    categoryPriority(category),
	}
	if err := n.outbox.Enqueue(item); err != nil {
		n.logger.Error("failed to park message", zap.Error(err))
	}
}

func (n *Notifier) markSent(ctx context.Context, to, category string) {
	window := suppressionWindow(category)
	if window <= 0 || n.log == nil {
		return
	}
	if err := n.log.Mark(ctx, to, category, window); err != nil {
		n.logger.Warn("failed to record sent message", zap.Error(err))
	}
}

// suppressionWindow bounds how often one category may reach the same number.
// Zero means every event sends.
func suppressionWindow(category string) time.Duration {
	switch category {
	case usecase.CategoryWelcome:
		return 30 * 24 * time.Hour
	case usecase.CategoryReviewRequest:
		return 24 * time.Hour
	case usecase.CategoryReEngagement, usecase.CategoryRecovery:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

func categoryPriority(category string) int {
	switch category {
	case usecase.CategoryLowRatingAlert:
		return 5
	case usecase.CategoryWelcome:
		return 4
	default:
		return 3
	}
}

var _ usecase.Notifier = (*Notifier)(nil)
