package entity

import "time"

// RecurrenceRun is one append-only audit record of an automatic request
// generation attempt, one row per sweep per due template.
type RecurrenceRun struct {
	ID                int64     `json:"id"`
	ProcessTemplateID int64     `json:"process_template_id"`
	RequestID         *int64    `json:"request_id,omitempty"`
	ScheduledAt       time.Time `json:"scheduled_at"`
	Status            string    `json:"status"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
