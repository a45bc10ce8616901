package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
)

type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository returns a Postgres-backed implementation of RatingRepository.
func NewRatingRepository(pool *pgxpool.Pool) repository.RatingRepository {
	return &ratingRepository{pool: pool}
}

func (r *ratingRepository) Append(ctx context.Context, rating *domain.Rating) error {
	if rating == nil {
		return domain.ErrInvalidPayload
	}
	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO ratings (id, business_id, user_id, rating, feedback, date)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.pool.Exec(ctx, query,
		rating.ID,
		rating.BusinessID,
		rating.UserID,
		rating.Rating,
		rating.Feedback,
		rating.Date,
	); err != nil {
		return err
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now()
	}
	return nil
}

func (r *ratingRepository) ListByCustomer(ctx context.Context, businessID, userID string) ([]domain.Rating, error) {
	const query = `
	SELECT id, business_id, user_id, rating, feedback, date, created_at
	FROM ratings
	WHERE business_id = $1 AND user_id = $2
	ORDER BY date ASC, created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, businessID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(
			&rt.ID,
			&rt.BusinessID,
			&rt.UserID,
			&rt.Rating,
			&rt.Feedback,
			&rt.Date,
			&rt.CreatedAt,
		); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}
