package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
)

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository returns a Postgres-backed implementation of PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) repository.PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) Append(ctx context.Context, payment *domain.Payment) (bool, error) {
	if payment == nil {
		return false, domain.ErrInvalidPayload
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO payments (id, business_id, user_id, service_id, amount, payment_method, transaction_id, date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.BusinessID,
		payment.UserID,
		payment.ServiceID,
		payment.Amount,
		payment.PaymentMethod,
		payment.TransactionID,
		payment.Date,
	)
	if err != nil {
		return false, err
	}
	inserted := tag.RowsAffected() > 0
	if inserted && payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	return inserted, nil
}

func (r *paymentRepository) ListByCustomer(ctx context.Context, businessID, userID string) ([]domain.Payment, error) {
	const query = `
	SELECT id, business_id, user_id, service_id, amount, payment_method, transaction_id, date, created_at
	FROM payments
	WHERE business_id = $1 AND user_id = $2
	ORDER BY date ASC, created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, businessID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID,
			&p.BusinessID,
			&p.UserID,
			&p.ServiceID,
			&p.Amount,
			&p.PaymentMethod,
			&p.TransactionID,
			&p.Date,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
