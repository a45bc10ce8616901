package domain

import "time"

// Status classifies where a customer sits in the retention lifecycle.
type Status string

const (
	StatusNew       Status = "New"
	StatusActive    Status = "Active"
	StatusAtRisk    Status = "At Risk"
	StatusLost      Status = "Lost"
	StatusRecovered Status = "Recovered"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusActive, StatusAtRisk, StatusLost, StatusRecovered:
		return true
	}
	return false
}

// Experience is the coarse sentiment derived from the most recent rating.
type Experience string

const (
	ExperiencePositive Experience = "Positive"
	ExperienceNegative Experience = "Negative"
)

// Spending holds the derived monetary summary of a customer.
type Spending struct {
	TotalSpent   float64 `json:"total_spent"`
	AverageSpend float64 `json:"average_spend"`
	LastPayment  float64 `json:"last_payment"`
}

// Customer is one profile per (business, external user) pair. The engagement,
// spending and rating fields are derived from the visit/payment/rating
// histories and must only be written by recomputing them from those records.
type Customer struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	BusinessID  string `json:"business_id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email,omitempty"`

	LastVisitDate        *time.Time `json:"last_visit_date,omitempty"`
	LastService          string     `json:"last_service,omitempty"`
	AssignedStaff        string     `json:"assigned_staff,omitempty"`
	AverageVisitInterval *float64   `json:"average_visit_interval,omitempty"`
	Status               Status     `json:"status"`
	PreferredServices    []string   `json:"preferred_services,omitempty"`

	Spending Spending `json:"spending"`

	AverageRating  float64    `json:"average_rating"`
	LastRating     int        `json:"last_rating,omitempty"`
	LastExperience Experience `json:"last_experience,omitempty"`

	// Version guards concurrent read-recompute-write cycles on the summary fields.
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) Touch() {
	if c == nil {
		return
	}
	c.UpdatedAt = time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}
}
