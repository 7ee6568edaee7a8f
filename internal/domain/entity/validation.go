package entity

import "time"

// TaskValidationLevel is one sign-off step (level 1 or 2) on a task.
// Created pending when the task is generated; decided exactly once.
type TaskValidationLevel struct {
	ID                    int64      `json:"id"`
	TaskID                int64      `json:"task_id"`
	Level                 int        `json:"level"`
	ValidatorID           *int64     `json:"validator_id,omitempty"`
	ValidatorDepartmentID *int64     `json:"validator_department_id,omitempty"`
	Status                string     `json:"status"`
	Comment               string     `json:"comment,omitempty"`
	ValidatedAt           *time.Time `json:"validated_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// IsDecided reports whether the level has already been validated or refused.
func (l *TaskValidationLevel) IsDecided() bool {
	return l.Status != LevelStatusPending
}
