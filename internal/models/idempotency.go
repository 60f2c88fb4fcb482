package models

import "time"

// StoredResponse is a replayable response recorded under an idempotency key.
type StoredResponse struct {
	Key         string    `json:"key"`
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}
