package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SimalChaudhari/rebook-aI-backend/domain"
	"github.com/SimalChaudhari/rebook-aI-backend/repository"
)

const customerColumns = `
	id, user_id, business_id, full_name, phone_number, email,
	last_visit_date, last_service, assigned_staff, avg_visit_interval,
	status, preferred_services,
	total_spent, average_spend, last_payment,
	average_rating, last_rating, last_experience,
	version, created_at, updated_at`

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a Postgres-backed implementation of CustomerRepository.
func NewCustomerRepository(pool *pgxpool.Pool) repository.CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) GetByKey(ctx context.Context, businessID, userID string) (*domain.Customer, error) {
	query := `SELECT` + customerColumns + `
	FROM customers
	WHERE business_id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, businessID, userID)
	return scanCustomer(row)
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if customer == nil {
		return domain.ErrInvalidPayload
	}
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO customers (
		id, user_id, business_id, full_name, phone_number, email,
		last_visit_date, last_service, assigned_staff, avg_visit_interval,
		status, preferred_services,
		total_spent, average_spend, last_payment,
		average_rating, last_rating, last_experience,
		version
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 1)
	RETURNING version, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		customer.ID,
		customer.UserID,
		customer.BusinessID,
		customer.FullName,
		customer.PhoneNumber,
		customer.Email,
		customer.LastVisitDate,
		customer.LastService,
		customer.AssignedStaff,
		customer.AverageVisitInterval,
		customer.Status,
		customer.PreferredServices,
		customer.Spending.TotalSpent,
		customer.Spending.AverageSpend,
		customer.Spending.LastPayment,
		customer.AverageRating,
		customer.LastRating,
		customer.LastExperience,
	).Scan(&customer.Version, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// the pair already exists, callers resolve by re-reading
			return domain.ErrVersionConflict
		}
		return err
	}
	return nil
}

// Update applies a compare-and-swap on version. A mismatch means another
// writer recomputed the summary first.
func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	if customer == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE customers
	SET full_name = $4,
		phone_number = $5,
		email = $6,
		last_visit_date = $7,
		last_service = $8,
		assigned_staff = $9,
		avg_visit_interval = $10,
		status = $11,
		preferred_services = $12,
		total_spent = $13,
		average_spend = $14,
		last_payment = $15,
		average_rating = $16,
		last_rating = $17,
		last_experience = $18,
		version = version + 1,
		updated_at = NOW()
	WHERE business_id = $1 AND user_id = $2 AND version = $3
	RETURNING version, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		customer.BusinessID,
		customer.UserID,
		customer.Version,
		customer.FullName,
		customer.PhoneNumber,
		customer.Email,
		customer.LastVisitDate,
		customer.LastService,
		customer.AssignedStaff,
		customer.AverageVisitInterval,
		customer.Status,
		customer.PreferredServices,
		customer.Spending.TotalSpent,
		customer.Spending.AverageSpend,
		customer.Spending.LastPayment,
		customer.AverageRating,
		customer.LastRating,
		customer.LastExperience,
	).Scan(&customer.Version, &customer.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	// no row matched: distinguish a stale version from a missing customer
	var exists bool
	if probeErr := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE business_id = $1 AND user_id = $2)`,
		customer.BusinessID, customer.UserID,
	).Scan(&exists); probeErr != nil {
		return probeErr
	}
	if exists {
		return domain.ErrVersionConflict
	}
	return domain.ErrCustomerNotFound
}

var customerSortColumns = map[string]string{
	"created_at":      "created_at",
	"last_visit_date": "last_visit_date",
	"full_name":       "full_name",
	"total_spent":     "total_spent",
	"average_rating":  "average_rating",
}

func (r *customerRepository) List(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, error) {
	orderBy, ok := customerSortColumns[filter.SortBy]
	if !ok {
		orderBy = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc || filter.SortBy == "" {
		direction = "DESC"
	}

	query := fmt.Sprintf(`SELECT`+customerColumns+`
	FROM customers
	WHERE business_id = $1
	  AND ($2 = '' OR status = $2)
	  AND ($3 = '' OR full_name ILIKE '%%' || $3 || '%%' OR phone_number ILIKE '%%' || $3 || '%%')
	  AND ($4::timestamptz IS NULL OR created_at >= $4)
	  AND ($5::timestamptz IS NULL OR created_at <= $5)
	ORDER BY %s %s NULLS LAST
	LIMIT $6 OFFSET $7
	`, orderBy, direction)

	rows, err := r.pool.Query(ctx, query,
		filter.BusinessID,
		string(filter.Status),
		filter.Search,
		filter.CreatedFrom,
		filter.CreatedTo,
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *customer)
	}
	return customers, rows.Err()
}

func (r *customerRepository) Delete(ctx context.Context, businessID, userID string) error {
	const query = `DELETE FROM customers WHERE business_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, businessID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func scanCustomer(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Customer, error) {
	var c domain.Customer
	var (
		lastVisit  *time.Time
		interval   *float64
		experience *string
	)

	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.BusinessID,
		&c.FullName,
		&c.PhoneNumber,
		&c.Email,
		&lastVisit,
		&c.LastService,
		&c.AssignedStaff,
		&interval,
		&c.Status,
		&c.PreferredServices,
		&c.Spending.TotalSpent,
		&c.Spending.AverageSpend,
		&c.Spending.LastPayment,
		&c.AverageRating,
		&c.LastRating,
		&experience,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}

	c.LastVisitDate = lastVisit
	c.AverageVisitInterval = interval
	if experience != nil {
		c.LastExperience = domain.Experience(*experience)
	}
	return &c, nil
}
