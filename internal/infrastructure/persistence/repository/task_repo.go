package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/domain/entity"
	"github.com/keonhq/taskflow/internal/infrastructure/persistence/sqlite"
)

const taskColumns = `id, reference, type, title, description, status, priority,
	category, subcategory,
	parent_request_id, source_process_template_id, source_sub_process_template_id,
	assignee_id, requester_id, target_department_id,
	requires_validation, current_validation_level,
	validator_level_1_id, validator_level_2_id, request_validation_status,
	due_date, validation_requested_at, validated_at, created_at, updated_at`

// TaskRepository implements port.TaskRepository
type TaskRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB, logger *zap.Logger) port.TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a task or request row
func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	query := `
		INSERT INTO tasks (
			reference, type, title, description, status, priority,
			category, subcategory,
			parent_request_id, source_process_template_id, source_sub_process_template_id,
			assignee_id, requester_id, target_department_id,
			requires_validation, current_validation_level,
			validator_level_1_id, validator_level_2_id, request_validation_status,
			due_date, validation_requested_at, validated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		task.Reference,
		task.Type,
		task.Title,
		nullString(task.Description),
		task.Status,
		task.Priority,
		nullString(task.Category),
		nullString(task.Subcategory),
		nullInt64(task.ParentRequestID),
		nullInt64(task.SourceProcessTemplateID),
		nullInt64(task.SourceSubProcessTemplateID),
		nullInt64(task.AssigneeID),
		nullInt64(task.RequesterID),
		nullInt64(task.TargetDepartmentID),
		task.RequiresValidation,
		task.CurrentValidationLevel,
		nullInt64(task.ValidatorLevel1ID),
		nullInt64(task.ValidatorLevel2ID),
		nullStringPtr(task.RequestValidationStatus),
		nullTime(task.DueDate),
		nullTime(task.ValidationRequestedAt),
		nullTime(task.ValidatedAt),
	)
	if err != nil {
		r.logger.Error("Failed to create task",
			zap.String("type", task.Type),
			zap.String("title", task.Title),
			zap.Error(err))
		return fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	task.ID = id
	return nil
}

// GetByID retrieves a task by ID; returns nil when not found
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = ?", taskColumns)

	task, err := r.scanTask(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get task by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// GetByReference retrieves a task by its external reference; returns nil when not found
func (r *TaskRepository) GetByReference(ctx context.Context, reference string) (*entity.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE reference = ?", taskColumns)

	task, err := r.scanTask(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, reference))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get task by reference", zap.String("reference", reference), zap.Error(err))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// List retrieves tasks matching the filter, newest first
func (r *TaskRepository) List(ctx context.Context, filter port.TaskFilter, limit, offset int) ([]*entity.Task, error) {
	var conditions []string
	var args []interface{}

	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.AssigneeID != nil {
		conditions = append(conditions, "assignee_id = ?")
		args = append(args, *filter.AssigneeID)
	}
	if filter.DepartmentID != nil {
		conditions = append(conditions, "target_department_id = ?")
		args = append(args, *filter.DepartmentID)
	}
	if filter.ParentRequestID != nil {
		conditions = append(conditions, "parent_request_id = ?")
		args = append(args, *filter.ParentRequestID)
	}

	query := fmt.Sprintf("SELECT %s FROM tasks", taskColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list tasks", zap.Error(err))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	return r.collectTasks(rows)
}

// ListOpen retrieves every task not yet in a terminal status, for the
// workload report
func (r *TaskRepository) ListOpen(ctx context.Context) ([]*entity.Task, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM tasks WHERE status NOT IN ('done', 'cancelled') ORDER BY target_department_id, assignee_id, due_date",
		taskColumns)

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list open tasks", zap.Error(err))
		return nil, fmt.Errorf("failed to list open tasks: %w", err)
	}
	defer rows.Close()

	return r.collectTasks(rows)
}

// UpdateStatus updates a task's status
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	if _, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, status, id); err != nil {
		r.logger.Error("Failed to update task status",
			zap.Int64("id", id),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}

// SetValidationRequested stamps the validation request time
func (r *TaskRepository) SetValidationRequested(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE tasks SET validation_requested_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	if _, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, at, id); err != nil {
		r.logger.Error("Failed to set validation requested", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set validation requested: %w", err)
	}
	return nil
}

// SetValidated stamps the validation completion time
func (r *TaskRepository) SetValidated(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE tasks SET validated_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	if _, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, at, id); err != nil {
		r.logger.Error("Failed to set validated", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set validated: %w", err)
	}
	return nil
}

// SetCurrentValidationLevel records the level the task is waiting on
func (r *TaskRepository) SetCurrentValidationLevel(ctx context.Context, id int64, level int) error {
	query := `UPDATE tasks SET current_validation_level = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	if _, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, level, id); err != nil {
		r.logger.Error("Failed to set current validation level", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set current validation level: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *TaskRepository) scanTask(row rowScanner) (*entity.Task, error) {
	var task entity.Task
	var description, category, subcategory, requestValidationStatus sql.NullString
	var parentRequestID, sourceProcessTemplateID, sourceSubProcessTemplateID sql.NullInt64
	var assigneeID, requesterID, targetDepartmentID sql.NullInt64
	var validatorLevel1ID, validatorLevel2ID sql.NullInt64
	var dueDate, validationRequestedAt, validatedAt sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.Reference,
		&task.Type,
		&task.Title,
		&description,
		&task.Status,
		&task.Priority,
		&category,
		&subcategory,
		&parentRequestID,
		&sourceProcessTemplateID,
		&sourceSubProcessTemplateID,
		&assigneeID,
		&requesterID,
		&targetDepartmentID,
		&task.RequiresValidation,
		&task.CurrentValidationLevel,
		&validatorLevel1ID,
		&validatorLevel2ID,
		&requestValidationStatus,
		&dueDate,
		&validationRequestedAt,
		&validatedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = description.String
	}
	if category.Valid {
		task.Category = category.String
	}
	if subcategory.Valid {
		task.Subcategory = subcategory.String
	}
	task.ParentRequestID = int64Ptr(parentRequestID)
	task.SourceProcessTemplateID = int64Ptr(sourceProcessTemplateID)
	task.SourceSubProcessTemplateID = int64Ptr(sourceSubProcessTemplateID)
	task.AssigneeID = int64Ptr(assigneeID)
	task.RequesterID = int64Ptr(requesterID)
	task.TargetDepartmentID = int64Ptr(targetDepartmentID)
	task.ValidatorLevel1ID = int64Ptr(validatorLevel1ID)
	task.ValidatorLevel2ID = int64Ptr(validatorLevel2ID)
	task.RequestValidationStatus = stringPtr(requestValidationStatus)
	task.DueDate = timePtr(dueDate)
	task.ValidationRequestedAt = timePtr(validationRequestedAt)
	task.ValidatedAt = timePtr(validatedAt)

	return &task, nil
}

func (r *TaskRepository) collectTasks(rows *sql.Rows) ([]*entity.Task, error) {
	var tasks []*entity.Task
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
