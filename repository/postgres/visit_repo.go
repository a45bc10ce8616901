package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
)

type visitRepository struct {
	pool *pgxpool.Pool
}

// NewVisitRepository returns a Postgres-backed implementation of VisitRepository.
func NewVisitRepository(pool *pgxpool.Pool) repository.VisitRepository {
	return &visitRepository{pool: pool}
}

// Append inserts the visit once. Replays of the same visit ID are absorbed
// and reported as not inserted.
func (r *visitRepository) Append(ctx context.Context, visit *domain.Visit) (bool, error) {
	if visit == nil {
		return false, domain.ErrInvalidPayload
	}
	if visit.ID == "" {
		visit.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO visits (id, business_id, user_id, date, service, staff, amount)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query,
		visit.ID,
		visit.BusinessID,
		visit.UserID,
		visit.Date,
		visit.Service,
		visit.Staff,
		visit.Amount,
	)
	if err != nil {
		return false, err
	}
	inserted := tag.RowsAffected() > 0
	if inserted && visit.CreatedAt.IsZero() {
		visit.CreatedAt = time.Now()
	}
	return inserted, nil
}

func (r *visitRepository) ListByCustomer(ctx context.Context, businessID, userID string) ([]domain.Visit, error) {
	const query = `
	SELECT id, business_id, user_id, date, service, staff, amount, created_at
	FROM visits
	WHERE business_id = $1 AND user_id = $2
	ORDER BY date ASC, created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, businessID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []domain.Visit
	for rows.Next() {
		var v domain.Visit
		if err := rows.Scan(
			&v.ID,
			&v.BusinessID,
			&v.UserID,
			&v.Date,
			&v.Service,
			&v.Staff,
			&v.Amount,
			&v.CreatedAt,
		); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
