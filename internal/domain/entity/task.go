package entity

import "time"

// Task is the single polymorphic work item: Type discriminates between a
// top-level request submitted against a process template and a task generated
// from (or attached to) such a request.
type Task struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	Type      string `json:"type"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`

	// Category/Subcategory default from the source process template.
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`

	// Relationships
	ParentRequestID             *int64 `json:"parent_request_id,omitempty"`
	SourceProcessTemplateID     *int64 `json:"source_process_template_id,omitempty"`
	SourceSubProcessTemplateID  *int64 `json:"source_sub_process_template_id,omitempty"`
	AssigneeID                  *int64 `json:"assignee_id,omitempty"`
	RequesterID                 *int64 `json:"requester_id,omitempty"`
	TargetDepartmentID          *int64 `json:"target_department_id,omitempty"`

	// Validation
	RequiresValidation      bool    `json:"requires_validation"`
	CurrentValidationLevel  int     `json:"current_validation_level"`
	ValidatorLevel1ID       *int64  `json:"validator_level_1_id,omitempty"`
	ValidatorLevel2ID       *int64  `json:"validator_level_2_id,omitempty"`
	RequestValidationStatus *string `json:"request_validation_status,omitempty"`

	// Temporal
	DueDate               *time.Time `json:"due_date,omitempty"`
	ValidationRequestedAt *time.Time `json:"validation_requested_at,omitempty"`
	ValidatedAt           *time.Time `json:"validated_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// IsRequest reports whether the task is a top-level request.
func (t *Task) IsRequest() bool {
	return t.Type == TypeRequest
}
