package port

import (
	"context"
	"time"

	"github.com/keonhq/taskflow/internal/domain/entity"
)

// TaskFilter narrows task listings.
type TaskFilter struct {
	Type            string
	Status          string
	AssigneeID      *int64
	DepartmentID    *int64
	ParentRequestID *int64
}

// TaskRepository defines persistence operations for Task (tasks and requests)
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	GetByID(ctx context.Context, id int64) (*entity.Task, error)
	GetByReference(ctx context.Context, reference string) (*entity.Task, error)
	List(ctx context.Context, filter TaskFilter, limit, offset int) ([]*entity.Task, error)
	ListOpen(ctx context.Context) ([]*entity.Task, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	SetValidationRequested(ctx context.Context, id int64, at time.Time) error
	SetValidated(ctx context.Context, id int64, at time.Time) error
	SetCurrentValidationLevel(ctx context.Context, id int64, level int) error
}

// TemplateRepository defines persistence operations for the template hierarchy
type TemplateRepository interface {
	GetProcessTemplate(ctx context.Context, id int64) (*entity.ProcessTemplate, error)
	ListTaskTemplatesByProcess(ctx context.Context, processTemplateID int64) ([]*entity.TaskTemplate, error)
	ListTaskTemplatesBySubProcess(ctx context.Context, subProcessTemplateID int64) ([]*entity.TaskTemplate, error)
	ListTemplateChecklist(ctx context.Context, taskTemplateID int64) ([]*entity.TemplateChecklistItem, error)
	ListTemplateValidationLevels(ctx context.Context, taskTemplateID int64) ([]*entity.TemplateValidationLevel, error)
	ListDueRecurring(ctx context.Context, now time.Time) ([]*entity.ProcessTemplate, error)
	UpdateNextRunAt(ctx context.Context, id int64, next time.Time) error
}

// ValidationRepository defines persistence operations for TaskValidationLevel
type ValidationRepository interface {
	Create(ctx context.Context, level *entity.TaskValidationLevel) error
	GetByID(ctx context.Context, id int64) (*entity.TaskValidationLevel, error)
	ListByTaskID(ctx context.Context, taskID int64) ([]*entity.TaskValidationLevel, error)

	// Decide flips a pending level to validated or refused. The update is
	// guarded on status='pending'; it returns false when a concurrent
	// decision already landed.
	Decide(ctx context.Context, id int64, status, comment string, at time.Time) (bool, error)

	CountPending(ctx context.Context, taskID int64) (int, error)
}

// ChecklistRepository defines persistence operations for ChecklistItem
type ChecklistRepository interface {
	Create(ctx context.Context, item *entity.ChecklistItem) error
	ListByTaskID(ctx context.Context, taskID int64) ([]*entity.ChecklistItem, error)
	SetCompleted(ctx context.Context, id int64, completed bool, by *int64, at *time.Time) error
}

// RecurrenceRunRepository defines persistence operations for RecurrenceRun
type RecurrenceRunRepository interface {
	Create(ctx context.Context, run *entity.RecurrenceRun) error
	ListByTemplateID(ctx context.Context, processTemplateID int64) ([]*entity.RecurrenceRun, error)
}

// OrderLineRepository defines persistence operations for OrderLine
type OrderLineRepository interface {
	Create(ctx context.Context, line *entity.OrderLine) error
	ListByRequestID(ctx context.Context, requestID int64) ([]*entity.OrderLine, error)

	// UpdateStatusWhere moves every line of the request currently in
	// fromStatus to toStatus and returns the number of lines moved.
	UpdateStatusWhere(ctx context.Context, requestID int64, fromStatus, toStatus string) (int, error)
}

// AuditRepository defines persistence operations for AuditEvent
type AuditRepository interface {
	Create(ctx context.Context, event *entity.AuditEvent) error
	ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.AuditEvent, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListPending(ctx context.Context, limit int) ([]*entity.Notification, error)
	MarkSent(ctx context.Context, id int64) error
}

// ProfileRepository defines read operations for Profile and Department
type ProfileRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Profile, error)
	GetDepartment(ctx context.Context, id int64) (*entity.Department, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
