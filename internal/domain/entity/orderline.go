package entity

import "time"

// OrderLine is one procurement line attached to a material request.
type OrderLine struct {
	ID          int64     `json:"id"`
	RequestID   int64     `json:"request_id"`
	Designation string    `json:"designation"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
