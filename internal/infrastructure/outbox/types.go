package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Item is an outbound message persisted until the provider accepts it.
type Item struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Message     string    `json:"message"`
	Category    string    `json:"category"`
	Priority    int       `json:"priority"`
	Retries     int       `json:"retries"`
	Timestamp   time.Time `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
