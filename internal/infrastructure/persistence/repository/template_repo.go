package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/domain/entity"
	"github.com/keonhq/taskflow/internal/infrastructure/persistence/sqlite"
)

const processTemplateColumns = `id, name, description, category, subcategory,
	target_department_id, created_by, title_pattern,
	recurrence_enabled, recurrence_interval, recurrence_unit, recurrence_delay_days,
	recurrence_next_run_at, created_at, updated_at`

const taskTemplateColumns = `id, process_template_id, sub_process_template_id,
	name, description, order_index, default_duration_days, requires_validation, created_at`

// TemplateRepository implements port.TemplateRepository
type TemplateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *sql.DB, logger *zap.Logger) port.TemplateRepository {
	return &TemplateRepository{
		db:     db,
		logger: logger,
	}
}

// GetProcessTemplate retrieves a process template by ID; returns nil when not found
func (r *TemplateRepository) GetProcessTemplate(ctx context.Context, id int64) (*entity.ProcessTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM process_templates WHERE id = ?", processTemplateColumns)

	tpl, err := r.scanProcessTemplate(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get process template", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get process template: %w", err)
	}
	return tpl, nil
}

// ListTaskTemplatesByProcess retrieves task templates attached directly to a
// process template (no sub-process), ordered by order_index
func (r *TemplateRepository) ListTaskTemplatesByProcess(ctx context.Context, processTemplateID int64) ([]*entity.TaskTemplate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM task_templates
		WHERE process_template_id = ? AND sub_process_template_id IS NULL
		ORDER BY order_index ASC, id ASC
	`, taskTemplateColumns)

	return r.queryTaskTemplates(ctx, query, processTemplateID)
}

// ListTaskTemplatesBySubProcess retrieves a sub-process's task templates
// ordered by order_index
func (r *TemplateRepository) ListTaskTemplatesBySubProcess(ctx context.Context, subProcessTemplateID int64) ([]*entity.TaskTemplate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM task_templates
		WHERE sub_process_template_id = ?
		ORDER BY order_index ASC, id ASC
	`, taskTemplateColumns)

	return r.queryTaskTemplates(ctx, query, subProcessTemplateID)
}

// ListTemplateChecklist retrieves a task template's checklist in order
func (r *TemplateRepository) ListTemplateChecklist(ctx context.Context, taskTemplateID int64) ([]*entity.TemplateChecklistItem, error) {
	query := `
		SELECT id, task_template_id, title, order_index
		FROM task_template_checklists
		WHERE task_template_id = ?
		ORDER BY order_index ASC, id ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, taskTemplateID)
	if err != nil {
		r.logger.Error("Failed to list template checklist", zap.Int64("task_template_id", taskTemplateID), zap.Error(err))
		return nil, fmt.Errorf("failed to list template checklist: %w", err)
	}
	defer rows.Close()

	var items []*entity.TemplateChecklistItem
	for rows.Next() {
		var item entity.TemplateChecklistItem
		if err := rows.Scan(&item.ID, &item.TaskTemplateID, &item.Title, &item.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan template checklist item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// ListTemplateValidationLevels retrieves a task template's validation levels
// ordered by level
func (r *TemplateRepository) ListTemplateValidationLevels(ctx context.Context, taskTemplateID int64) ([]*entity.TemplateValidationLevel, error) {
	query := `
		SELECT id, task_template_id, level, validator_id, validator_department_id
		FROM template_validation_levels
		WHERE task_template_id = ?
		ORDER BY level ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, taskTemplateID)
	if err != nil {
		r.logger.Error("Failed to list template validation levels", zap.Int64("task_template_id", taskTemplateID), zap.Error(err))
		return nil, fmt.Errorf("failed to list template validation levels: %w", err)
	}
	defer rows.Close()

	var levels []*entity.TemplateValidationLevel
	for rows.Next() {
		var level entity.TemplateValidationLevel
		var validatorID, validatorDeptID sql.NullInt64
		if err := rows.Scan(&level.ID, &level.TaskTemplateID, &level.Level, &validatorID, &validatorDeptID); err != nil {
			return nil, fmt.Errorf("failed to scan template validation level: %w", err)
		}
		level.ValidatorID = int64Ptr(validatorID)
		level.ValidatorDepartmentID = int64Ptr(validatorDeptID)
		levels = append(levels, &level)
	}
	return levels, rows.Err()
}

// ListDueRecurring retrieves recurrence-enabled templates whose next run is due
func (r *TemplateRepository) ListDueRecurring(ctx context.Context, now time.Time) ([]*entity.ProcessTemplate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM process_templates
		WHERE recurrence_enabled = 1
		  AND recurrence_next_run_at IS NOT NULL
		  AND recurrence_next_run_at <= ?
		ORDER BY recurrence_next_run_at ASC
	`, processTemplateColumns)

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, now)
	if err != nil {
		r.logger.Error("Failed to list due recurring templates", zap.Error(err))
		return nil, fmt.Errorf("failed to list due recurring templates: %w", err)
	}
	defer rows.Close()

	var templates []*entity.ProcessTemplate
	for rows.Next() {
		tpl, err := r.scanProcessTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan process template: %w", err)
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

// UpdateNextRunAt advances a template's next recurrence timestamp
func (r *TemplateRepository) UpdateNextRunAt(ctx context.Context, id int64, next time.Time) error {
	query := `UPDATE process_templates SET recurrence_next_run_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	if _, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, next, id); err != nil {
		r.logger.Error("Failed to update next run", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update next run: %w", err)
	}
	return nil
}

func (r *TemplateRepository) queryTaskTemplates(ctx context.Context, query string, args ...interface{}) ([]*entity.TaskTemplate, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list task templates", zap.Error(err))
		return nil, fmt.Errorf("failed to list task templates: %w", err)
	}
	defer rows.Close()

	var templates []*entity.TaskTemplate
	for rows.Next() {
		var tpl entity.TaskTemplate
		var subProcessID, durationDays sql.NullInt64
		var description sql.NullString

		err := rows.Scan(
			&tpl.ID,
			&tpl.ProcessTemplateID,
			&subProcessID,
			&tpl.Name,
			&description,
			&tpl.OrderIndex,
			&durationDays,
			&tpl.RequiresValidation,
			&tpl.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task template: %w", err)
		}

		tpl.SubProcessTemplateID = int64Ptr(subProcessID)
		tpl.DefaultDurationDays = intPtr(durationDays)
		if description.Valid {
			tpl.Description = description.String
		}
		templates = append(templates, &tpl)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) scanProcessTemplate(row rowScanner) (*entity.ProcessTemplate, error) {
	var tpl entity.ProcessTemplate
	var description, category, subcategory, titlePattern sql.NullString
	var targetDeptID, createdBy sql.NullInt64
	var nextRunAt sql.NullTime

	err := row.Scan(
		&tpl.ID,
		&tpl.Name,
		&description,
		&category,
		&subcategory,
		&targetDeptID,
		&createdBy,
		&titlePattern,
		&tpl.RecurrenceEnabled,
		&tpl.RecurrenceInterval,
		&tpl.RecurrenceUnit,
		&tpl.RecurrenceDelayDays,
		&nextRunAt,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		tpl.Description = description.String
	}
	if category.Valid {
		tpl.Category = category.String
	}
	if subcategory.Valid {
		tpl.Subcategory = subcategory.String
	}
	if titlePattern.Valid {
		tpl.TitlePattern = titlePattern.String
	}
	tpl.TargetDepartmentID = int64Ptr(targetDeptID)
	tpl.CreatedBy = int64Ptr(createdBy)
	tpl.RecurrenceNextRunAt = timePtr(nextRunAt)

	return &tpl, nil
}
