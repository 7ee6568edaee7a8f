package entity

import "time"

// ProcessTemplate is the top of the template hierarchy
// (process → sub-process → task).
type ProcessTemplate struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	Category           string `json:"category,omitempty"`
	Subcategory        string `json:"subcategory,omitempty"`
	TargetDepartmentID *int64 `json:"target_department_id,omitempty"`
	CreatedBy          *int64 `json:"created_by,omitempty"`

	// TitlePattern builds recurring request titles; {process} and {date}
	// placeholders are substituted at generation time.
	TitlePattern string `json:"title_pattern,omitempty"`

	RecurrenceEnabled   bool       `json:"recurrence_enabled"`
	RecurrenceInterval  int        `json:"recurrence_interval"`
	RecurrenceUnit      string     `json:"recurrence_unit"`
	RecurrenceDelayDays int        `json:"recurrence_delay_days"`
	RecurrenceNextRunAt *time.Time `json:"recurrence_next_run_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubProcessTemplate groups task templates inside a process template.
type SubProcessTemplate struct {
	ID                int64     `json:"id"`
	ProcessTemplateID int64     `json:"process_template_id"`
	Name              string    `json:"name"`
	OrderIndex        int       `json:"order_index"`
	CreatedAt         time.Time `json:"created_at"`
}

// TaskTemplate seeds concrete tasks when a request is submitted.
type TaskTemplate struct {
	ID                   int64  `json:"id"`
	ProcessTemplateID    int64  `json:"process_template_id"`
	SubProcessTemplateID *int64 `json:"sub_process_template_id,omitempty"`
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	OrderIndex           int    `json:"order_index"`

	// DefaultDurationDays computes the generated task's due date as
	// generation day + N; nil means no due date.
	DefaultDurationDays *int `json:"default_duration_days,omitempty"`

	RequiresValidation bool      `json:"requires_validation"`
	CreatedAt          time.Time `json:"created_at"`
}

// TemplateChecklistItem is a checklist entry on a task template, cloned onto
// generated tasks preserving order.
type TemplateChecklistItem struct {
	ID             int64  `json:"id"`
	TaskTemplateID int64  `json:"task_template_id"`
	Title          string `json:"title"`
	OrderIndex     int    `json:"order_index"`
}

// TemplateValidationLevel is a sign-off definition on a task template,
// cloned into task validation levels at generation time.
type TemplateValidationLevel struct {
	ID                    int64  `json:"id"`
	TaskTemplateID        int64  `json:"task_template_id"`
	Level                 int    `json:"level"`
	ValidatorID           *int64 `json:"validator_id,omitempty"`
	ValidatorDepartmentID *int64 `json:"validator_department_id,omitempty"`
}
