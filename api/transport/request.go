package transport

// WebhookCustomerRequest is the inbound booking-system event. VisitID is
// optional; replayed events must carry the same VisitID so the append stays
// idempotent.
type WebhookCustomerRequest struct {
	UserID           string  `json:"userId" validate:"required"`
	BusinessID       string  `json:"businessId" validate:"required"`
	FullName         string  `json:"fullName" validate:"required"`
	PhoneNumber      string  `json:"phoneNumber" validate:"required"`
	Email            string  `json:"email,omitempty" validate:"omitempty,email"`
	VisitID          string  `json:"visitId,omitempty"`
	LastVisitDate    string  `json:"lastVisitDate,omitempty"`
	LastService      string  `json:"lastService,omitempty"`
	AssignedStaff    string  `json:"assignedStaff,omitempty"`
	TransactionValue float64 `json:"transactionValue,omitempty" validate:"gte=0"`
}

type VisitRequest struct {
	VisitID string  `json:"visitId,omitempty"`
	Date    string  `json:"date,omitempty"`
	Service string  `json:"service,omitempty"`
	Staff   string  `json:"staff,omitempty"`
	Amount  float64 `json:"amount,omitempty" validate:"gte=0"`
}

type PaymentRequest struct {
	PaymentID     string  `json:"paymentId,omitempty"`
	ServiceID     string  `json:"serviceId,omitempty"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	TransactionID string  `json:"transactionId,omitempty"`
	Date          string  `json:"date,omitempty"`
}

type RatingRequest struct {
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback   string `json:"feedback,omitempty"`
	ReviewLink string `json:"reviewLink,omitempty"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

type ReviewRequest struct {
	BusinessID string `json:"businessId" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
}

type ReviewSubmitRequest struct {
	BusinessID string `json:"businessId" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback   string `json:"feedback,omitempty"`
	ReviewLink string `json:"reviewLink,omitempty"`
}

type BusinessCreateRequest struct {
	BusinessID     string `json:"businessId" validate:"required"`
	Name           string `json:"name" validate:"required"`
	OwnerName      string `json:"ownerName,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	Address        string `json:"address,omitempty"`
	WhatsAppNumber string `json:"whatsappNumber,omitempty"`
}

type ConversionRequest struct {
	NewUserID string `json:"newUserId,omitempty"`
}
