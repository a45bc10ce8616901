package domain

import "time"

// Business represents a tenant (salon, barber shop, spa) whose customers are tracked.
type Business struct {
	BusinessID     string    `json:"business_id"`
	Name           string    `json:"name"`
	OwnerName      string    `json:"owner_name,omitempty"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
	Email          string    `json:"email,omitempty"`
	Address        string    `json:"address,omitempty"`
	WhatsAppNumber string    `json:"whatsapp_number,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// OwnerContact returns the number low-rating alerts should go to.
func (b *Business) OwnerContact() string {
	if b == nil {
		return ""
	}
	if b.WhatsAppNumber != "" {
		return b.WhatsAppNumber
	}
	return b.PhoneNumber
}
