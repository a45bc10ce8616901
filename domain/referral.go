package domain

import "time"

// Referral tracks one referral code per (business, referrer) pair.
type Referral struct {
	ReferralCode     string     `json:"referral_code"`
	BusinessID       string     `json:"business_id"`
	ReferrerUserID   string     `json:"referrer_user_id"`
	Clicks           int        `json:"clicks"`
	Conversions      int        `json:"conversions"`
	ConvertedUserIDs []string   `json:"converted_user_ids,omitempty"`
	LastClickedAt    *time.Time `json:"last_clicked_at,omitempty"`
	LastConvertedAt  *time.Time `json:"last_converted_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// HasConverted reports whether userID already counted as a conversion.
func (r *Referral) HasConverted(userID string) bool {
	if r == nil {
		return false
	}
	for _, id := range r.ConvertedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
