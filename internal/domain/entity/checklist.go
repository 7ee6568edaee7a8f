package entity

import "time"

// ChecklistItem is a per-task checklist entry, cloned from the task template
// at generation time and toggled independently thereafter.
type ChecklistItem struct {
	ID          int64      `json:"id"`
	TaskID      int64      `json:"task_id"`
	Title       string     `json:"title"`
	OrderIndex  int        `json:"order_index"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy *int64     `json:"completed_by,omitempty"`
}
