package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
)

type businessRepository struct {
	pool *pgxpool.Pool
}

// NewBusinessRepository returns a Postgres-backed implementation of BusinessRepository.
func NewBusinessRepository(pool *pgxpool.Pool) repository.BusinessRepository {
	return &businessRepository{pool: pool}
}

func (r *businessRepository) Get(ctx context.Context, businessID string) (*domain.Business, error) {
	const query = `
	SELECT business_id, name, owner_name, phone_number, email, address, whatsapp_number, created_at
	FROM businesses
	WHERE business_id = $1
	`
	var b domain.Business
	if err := r.pool.QueryRow(ctx, query, businessID).Scan(
		&b.BusinessID,
		&b.Name,
		&b.OwnerName,
		&b.PhoneNumber,
		&b.Email,
		&b.Address,
		&b.WhatsAppNumber,
		&b.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBusinessNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *businessRepository) Create(ctx context.Context, business *domain.Business) error {
	if business == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO businesses (business_id, name, owner_name, phone_number, email, address, whatsapp_number)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		business.BusinessID,
		business.Name,
		business.OwnerName,
		business.PhoneNumber,
		business.Email,
		business.Address,
		business.WhatsAppNumber,
	).Scan(&business.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrBusinessExists
		}
		return err
	}
	return nil
}

func (r *businessRepository) List(ctx context.Context) ([]domain.Business, error) {
	const query = `
	SELECT business_id, name, owner_name, phone_number, email, address, whatsapp_number, created_at
	FROM businesses
	ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []domain.Business
	for rows.Next() {
		var b domain.Business
		if err := rows.Scan(
			&b.BusinessID,
			&b.Name,
			&b.OwnerName,
			&b.PhoneNumber,
			&b.Email,
			&b.Address,
			&b.WhatsAppNumber,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}

func (r *businessRepository) Delete(ctx context.Context, businessID string) error {
	const query = `DELETE FROM businesses WHERE business_id = $1`
	tag, err := r.pool.Exec(ctx, query, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBusinessNotFound
	}
	return nil
}
