package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
	"github.com/SimalChaudhari/rebook-aI-backend/usecase"
)

// maxConflictRetries bounds how often a read-recompute-write cycle is
// retried after a version conflict before CONFLICT is surfaced.
const maxConflictRetries = 3

// UseCase is the customer profile aggregator. It owns the invariant that the
// denormalized summary fields on a Customer stay consistent with the
// visit/payment/rating histories: every mutation path recomputes them from
// the full history, never patches individual fields.
type UseCase struct {
	customers  repository.CustomerRepository
	visits     repository.VisitRepository
	payments   repository.PaymentRepository
	ratings    repository.RatingRepository
	businesses repository.BusinessRepository
	notifier   usecase.Notifier
	logger     *zap.Logger
	now        func() time.Time
}

func New(
	customers repository.CustomerRepository,
	visits repository.VisitRepository,
	payments repository.PaymentRepository,
	ratings repository.RatingRepository,
	businesses repository.BusinessRepository,
	notifier usecase.Notifier,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		customers:  customers,
		visits:     visits,
		payments:   payments,
		ratings:    ratings,
		businesses: businesses,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// ProfileFields carries identity attributes used when a profile has to be
// created on the first inbound event.
type ProfileFields struct {
	FullName    string
	PhoneNumber string
	Email       string
}

// VisitInput describes one visit event. ID is optional; webhooks that replay
// the same event must reuse the same ID so the append stays idempotent.
type VisitInput struct {
	ID      string
	Date    time.Time
	Service string
	Staff   string
	Amount  float64

	Profile ProfileFields
}

// VisitResult reports the updated profile and whether this event was the
// customer's first-ever visit (which triggers the welcome message).
type VisitResult struct {
	Customer         *domain.Customer `json:"customer"`
	TriggeredWelcome bool             `json:"triggered_welcome"`
}

// PaymentInput describes one payment event.
type PaymentInput struct {
	ID            string
	ServiceID     string
	Amount        float64
	PaymentMethod string
	TransactionID string
	Date          time.Time
}

// RatingInput describes one rating event.
type RatingInput struct {
	Rating     int
	Feedback   string
	ReviewLink string
}

// RatingNotification names the side effect a rating triggered.
type RatingNotification string

const (
	NotifyThankYou   RatingNotification = "thankYou"
	NotifyAlertOwner RatingNotification = "alertOwner"
	NotifyNone       RatingNotification = ""
)

// RatingResult reports the updated profile and the triggered notification.
type RatingResult struct {
	Customer     *domain.Customer   `json:"customer"`
	Notification RatingNotification `json:"notification,omitempty"`
}

// CreateIfAbsent returns the existing profile for (businessID, userID) or
// creates one with status New. It never fails on an existing pair.
func (uc *UseCase) CreateIfAbsent(ctx context.Context, businessID, userID string, fields ProfileFields) (*domain.Customer, error) {
	if businessID == "" || userID == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "businessId and userId are required")
	}
	return uc.ensureCustomer(ctx, businessID, userID, fields)
}

// RecordVisit appends a visit, recomputes the full engagement and spending
// summary from history, reclassifies the customer (a visit event always
// re-runs the classifier, also out of Recovered) and persists the profile
// under optimistic concurrency. The welcome message fires exactly once, on
// the append that created the customer's first visit.
func (uc *UseCase) RecordVisit(ctx context.Context, businessID, userID string, in VisitInput) (*VisitResult, error) {
	if businessID == "" || userID == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "businessId and userId are required")
	}
	if in.Amount < 0 {
		return nil, domain.ErrInvalidAmount
	}

	customer, err := uc.ensureCustomer(ctx, businessID, userID, in.Profile)
	if err != nil {
		return nil, err
	}

	visit := &domain.Visit{
		ID:         in.ID,
		BusinessID: businessID,
		UserID:     userID,
		Date:       in.Date,
		Service:    in.Service,
		Staff:      in.Staff,
		Amount:     in.Amount,
	}
	if visit.ID == "" {
		visit.ID = uuid.NewString()
	}
	if visit.Date.IsZero() {
		visit.Date = uc.now()
	}

	prior, err := uc.visits.ListByCustomer(ctx, businessID, userID)
	if err != nil {
		return nil, err
	}
	inserted, err := uc.visits.Append(ctx, visit)
	if err != nil {
		return nil, err
	}
	firstVisit := inserted && len(prior) == 0

	customer, err = uc.refresh(ctx, customer, func(c *domain.Customer, visits []domain.Visit, payments []domain.Payment, ratings []domain.Rating) {
		applyEngagement(c, visits)
		applySpending(c, visits, payments)
		c.Status = domain.Classify(c.LastVisitDate, c.AverageVisitInterval, uc.now())
	})
	if err != nil {
		return nil, err
	}

	if firstVisit {
		uc.sendWelcome(ctx, customer)
	}

	return &VisitResult{Customer: customer, TriggeredWelcome: firstVisit}, nil
}

// RecordPayment appends a payment for an existing customer and recomputes
// the spending summary. The lifecycle status is left untouched, so an
// operator-set Recovered survives payment events.
func (uc *UseCase) RecordPayment(ctx context.Context, businessID, userID string, in PaymentInput) (*domain.Customer, error) {
	if businessID == "" || userID == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "businessId and userId are required")
	}
	if in.Amount < 0 {
		return nil, domain.ErrInvalidAmount
	}

	customer, err := uc.customers.GetByKey(ctx, businessID, userID)
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:            in.ID,
		BusinessID:    businessID,
		UserID:        userID,
		ServiceID:     in.ServiceID,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		TransactionID: in.TransactionID,
		Date:          in.Date,
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.Date.IsZero() {
		payment.Date = uc.now()
	}

	if _, err := uc.payments.Append(ctx, payment); err != nil {
		return nil, err
	}

	return uc.refresh(ctx, customer, func(c *domain.Customer, visits []domain.Visit, payments []domain.Payment, ratings []domain.Rating) {
		applySpending(c, visits, payments)
	})
}

// RecordRating appends a rating for an existing customer, recomputes the
// rating summary and triggers the threshold-based side effect: ratings of 4
// and 5 thank the customer with a review link, ratings of 1 and 2 alert the
// business owner, a 3 triggers neither.
func (uc *UseCase) RecordRating(ctx context.Context, businessID, userID string, in RatingInput) (*RatingResult, error) {
	if businessID == "" || userID == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "businessId and userId are required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	customer, err := uc.customers.GetByKey(ctx, businessID, userID)
	if err != nil {
		return nil, err
	}

	rating := &domain.Rating{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		UserID:     userID,
		Rating:     in.Rating,
		Feedback:   in.Feedback,
		Date:       uc.now(),
	}
	if err := uc.ratings.Append(ctx, rating); err != nil {
		return nil, err
	}

	customer, err = uc.refresh(ctx, customer, func(c *domain.Customer, visits []domain.Visit, payments []domain.Payment, ratings []domain.Rating) {
		c.AverageRating, c.LastRating, c.LastExperience = domain.RatingAggregate(ratings)
	})
	if err != nil {
		return nil, err
	}

	notification := NotifyNone
	switch {
	case in.Rating >= 4:
		notification = NotifyThankYou
		uc.notify(ctx, customer.PhoneNumber, thankYouMessage(in.ReviewLink), usecase.CategoryThankYou)
	case in.Rating <= 2:
		notification = NotifyAlertOwner
		uc.alertOwner(ctx, customer, in.Rating, in.Feedback)
	}

	return &RatingResult{Customer: customer, Notification: notification}, nil
}

// SetStatus is the operator/automation override, and the only way a customer
// becomes Recovered. The next visit event re-runs the classifier and may
// move the customer out of it again.
func (uc *UseCase) SetStatus(ctx context.Context, businessID, userID string, status domain.Status) (*domain.Customer, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unknown status %q", status))
	}

	customer, err := uc.customers.GetByKey(ctx, businessID, userID)
	if err != nil {
		return nil, err
	}
	return uc.refresh(ctx, customer, func(c *domain.Customer, visits []domain.Visit, payments []domain.Payment, ratings []domain.Rating) {
		c.Status = status
	})
}

// Get returns one profile.
func (uc *UseCase) Get(ctx context.Context, businessID, userID string) (*domain.Customer, error) {
	return uc.customers.GetByKey(ctx, businessID, userID)
}

// List returns the customers of a business with optional filtering.
func (uc *UseCase) List(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, error) {
	if filter.BusinessID == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "businessId is required")
	}
	return uc.customers.List(ctx, filter)
}

// Delete removes a profile (administrative removal; histories are dropped
// with it via the schema's cascade rules).
func (uc *UseCase) Delete(ctx context.Context, businessID, userID string) error {
	return uc.customers.Delete(ctx, businessID, userID)
}

// Analytics is the per-customer view backing the profile drill-down.
type Analytics struct {
	VisitFrequency    *float64        `json:"visit_frequency,omitempty"`
	TotalVisits       int             `json:"total_visits"`
	TotalSpent        float64         `json:"total_spent"`
	AverageSpend      float64         `json:"average_spend"`
	PreferredServices []string        `json:"preferred_services,omitempty"`
	RatingHistory     []domain.Rating `json:"rating_history,omitempty"`
	AverageRating     float64         `json:"average_rating"`
	Status            domain.Status   `json:"status"`
}

// GetAnalytics assembles per-customer analytics from the stored profile and
// the rating history.
func (uc *UseCase) GetAnalytics(ctx context.Context, businessID, userID string) (*Analytics, error) {
	customer, err := uc.customers.GetByKey(ctx, businessID, userID)
	if err != nil {
		return nil, err
	}
	visits, err := uc.visits.ListByCustomer(ctx, businessID, userID)
	if err != nil {
		return nil, err
	}
	history, err := uc.ratings.ListByCustomer(ctx, businessID, userID)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		VisitFrequency:    customer.AverageVisitInterval,
		TotalVisits:       len(visits),
		TotalSpent:        customer.Spending.TotalSpent,
		AverageSpend:      customer.Spending.AverageSpend,
		PreferredServices: customer.PreferredServices,
		RatingHistory:     history,
		AverageRating:     customer.AverageRating,
		Status:            customer.Status,
	}, nil
}

// ensureCustomer implements the create-on-first-event path, resolving create
// races by re-reading.
func (uc *UseCase) ensureCustomer(ctx context.Context, businessID, userID string, fields ProfileFields) (*domain.Customer, error) {
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		customer, err := uc.customers.GetByKey(ctx, businessID, userID)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, domain.ErrCustomerNotFound) {
			return nil, err
		}

		customer = &domain.Customer{
			ID:          uuid.NewString(),
			UserID:      userID,
			BusinessID:  businessID,
			FullName:    fields.FullName,
			PhoneNumber: fields.PhoneNumber,
			Email:       fields.Email,
			Status:      domain.StatusNew,
		}
		customer.Touch()

		err = uc.customers.Create(ctx, customer)
		if err == nil {
			return customer, nil
		}
		if !domain.IsDomainError(err, domain.ErrCodeConflict) {
			return nil, err
		}
		// lost the create race: another event inserted the pair, re-read
	}
	return nil, domain.ErrVersionConflict
}

// refresh runs the read-recompute-write cycle under optimistic concurrency.
// The mutate callback receives the freshly listed histories and adjusts the
// summary fields on the customer before the CAS update.
func (uc *UseCase) refresh(
	ctx context.Context,
	customer *domain.Customer,
	mutate func(c *domain.Customer, visits []domain.Visit, payments []domain.Payment, ratings []domain.Rating),
) (*domain.Customer, error) {
	businessID, userID := customer.BusinessID, customer.UserID

	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		if attempt > 0 {
			fresh, err := uc.customers.GetByKey(ctx, businessID, userID)
			if err != nil {
				return nil, err
			}
			customer = fresh
		}

		visits, err := uc.visits.ListByCustomer(ctx, businessID, userID)
		if err != nil {
			return nil, err
		}
		payments, err := uc.payments.ListByCustomer(ctx, businessID, userID)
		if err != nil {
			return nil, err
		}
		ratings, err := uc.ratings.ListByCustomer(ctx, businessID, userID)
		if err != nil {
			return nil, err
		}

		mutate(customer, visits, payments, ratings)
		customer.Touch()

		err = uc.customers.Update(ctx, customer)
		if err == nil {
			return customer, nil
		}
		if !domain.IsDomainError(err, domain.ErrCodeConflict) {
			return nil, err
		}
		uc.logger.Debug("customer update conflict, retrying",
			zap.String("business_id", businessID),
			zap.String("user_id", userID),
			zap.Int("attempt", attempt+1))
	}
	return nil, domain.ErrVersionConflict
}

// applyEngagement recomputes the visit-derived summary fields from the full,
// date-ordered history.
func applyEngagement(c *domain.Customer, visits []domain.Visit) {
	c.AverageVisitInterval = domain.AverageVisitInterval(visits)
	c.PreferredServices = domain.PreferredServices(visits)

	if len(visits) == 0 {
		c.LastVisitDate = nil
		c.LastService = ""
		c.AssignedStaff = ""
		return
	}

	latest := visits[0]
	for _, v := range visits[1:] {
		if !v.Date.Before(latest.Date) {
			latest = v
		}
	}
	date := latest.Date
	c.LastVisitDate = &date
	c.LastService = latest.Service
	c.AssignedStaff = latest.Staff
}

// applySpending recomputes the monetary summary over the merged stream of
// visits that carry an amount and all payments.
func applySpending(c *domain.Customer, visits []domain.Visit, payments []domain.Payment) {
	events := make([]domain.MonetaryEvent, 0, len(visits)+len(payments))
	for _, v := range visits {
		if v.Amount > 0 {
			events = append(events, domain.MonetaryEvent{Date: v.Date, Amount: v.Amount})
		}
	}
	for _, p := range payments {
		events = append(events, domain.MonetaryEvent{Date: p.Date, Amount: p.Amount})
	}
	c.Spending = domain.ComputeSpending(events)
}

func (uc *UseCase) sendWelcome(ctx context.Context, customer *domain.Customer) {
	name := businessDisplayName(ctx, uc.businesses, customer.BusinessID)
	uc.notify(ctx, customer.PhoneNumber, welcomeMessage(customer.FullName, name), usecase.CategoryWelcome)
}

func (uc *UseCase) alertOwner(ctx context.Context, customer *domain.Customer, rating int, feedback string) {
	business, err := uc.businesses.Get(ctx, customer.BusinessID)
	if err != nil {
		uc.logger.Warn("owner alert skipped, business lookup failed",
			zap.String("business_id", customer.BusinessID), zap.Error(err))
		return
	}
	contact := business.OwnerContact()
	if contact == "" {
		uc.logger.Warn("owner alert skipped, business has no contact number",
			zap.String("business_id", customer.BusinessID))
		return
	}
	uc.notify(ctx, contact, lowRatingAlertMessage(customer.FullName, rating, feedback), usecase.CategoryLowRatingAlert)
}

// notify is the single choke point between the aggregator and the messaging
// collaborator: delivery failures are logged here and never escalate.
func (uc *UseCase) notify(ctx context.Context, phone, message, category string) {
	if uc.notifier == nil || phone == "" {
		return
	}
	if !uc.notifier.Send(ctx, phone, message, category) {
		uc.logger.Warn("notification not delivered",
			zap.String("category", category),
			zap.String("phone", phone))
	}
}

func businessDisplayName(ctx context.Context, businesses repository.BusinessRepository, businessID string) string {
	if businesses == nil {
		return ""
	}
	business, err := businesses.Get(ctx, businessID)
	if err != nil || business == nil {
		return ""
	}
	return business.Name
}
