package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
)

const referralColumns = `
	referral_code, business_id, referrer_user_id, clicks, conversions,
	converted_user_ids, last_clicked_at, last_converted_at, created_at`

type referralRepository struct {
	pool *pgxpool.Pool
}

// NewReferralRepository returns a Postgres-backed implementation of ReferralRepository.
func NewReferralRepository(pool *pgxpool.Pool) repository.ReferralRepository {
	return &referralRepository{pool: pool}
}

func (r *referralRepository) GetByCode(ctx context.Context, referralCode string) (*domain.Referral, error) {
	query := `SELECT` + referralColumns + `
	FROM referrals
	WHERE referral_code = $1
	`
	return scanReferral(r.pool.QueryRow(ctx, query, referralCode))
}

func (r *referralRepository) GetByReferrer(ctx context.Context, businessID, referrerUserID string) (*domain.Referral, error) {
	query := `SELECT` + referralColumns + `
	FROM referrals
	WHERE business_id = $1 AND referrer_user_id = $2
	`
	return scanReferral(r.pool.QueryRow(ctx, query, businessID, referrerUserID))
}

func (r *referralRepository) Create(ctx context.Context, referral *domain.Referral) error {
	if referral == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO referrals (referral_code, business_id, referrer_user_id, clicks, conversions, converted_user_ids)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at
	`
	return r.pool.QueryRow(ctx, query,
		referral.ReferralCode,
		referral.BusinessID,
		referral.ReferrerUserID,
		referral.Clicks,
		referral.Conversions,
		referral.ConvertedUserIDs,
	).Scan(&referral.CreatedAt)
}

func (r *referralRepository) Update(ctx context.Context, referral *domain.Referral) error {
	if referral == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE referrals
	SET clicks = $2,
		conversions = $3,
		converted_user_ids = $4,
		last_clicked_at = $5,
		last_converted_at = $6
	WHERE referral_code = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		referral.ReferralCode,
		referral.Clicks,
		referral.Conversions,
		referral.ConvertedUserIDs,
		referral.LastClickedAt,
		referral.LastConvertedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReferralNotFound
	}
	return nil
}

func (r *referralRepository) ListByBusiness(ctx context.Context, businessID string) ([]domain.Referral, error) {
	query := `SELECT` + referralColumns + `
	FROM referrals
	WHERE business_id = $1
	ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var referrals []domain.Referral
	for rows.Next() {
		referral, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		referrals = append(referrals, *referral)
	}
	return referrals, rows.Err()
}

func (r *referralRepository) Delete(ctx context.Context, referralCode string) error {
	const query = `DELETE FROM referrals WHERE referral_code = $1`
	tag, err := r.pool.Exec(ctx, query, referralCode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReferralNotFound
	}
	return nil
}

func scanReferral(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Referral, error) {
	var ref domain.Referral
	if err := row.Scan(
		&ref.ReferralCode,
		&ref.BusinessID,
		&ref.ReferrerUserID,
		&ref.Clicks,
		&ref.Conversions,
		&ref.ConvertedUserIDs,
		&ref.LastClickedAt,
		&ref.LastConvertedAt,
		&ref.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReferralNotFound
		}
		return nil, err
	}
	return &ref, nil
}
