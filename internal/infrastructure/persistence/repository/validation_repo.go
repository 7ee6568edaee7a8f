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

const validationLevelColumns = `id, task_id, level, validator_id, validator_department_id,
	status, comment, validated_at, created_at`

// ValidationRepository implements port.ValidationRepository
type ValidationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewValidationRepository creates a new validation level repository
func NewValidationRepository(db *sql.DB, logger *zap.Logger) port.ValidationRepository {
	return &ValidationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a validation level row
func (r *ValidationRepository) Create(ctx context.Context, level *entity.TaskValidationLevel) error {
	query := `
		INSERT INTO task_validation_levels (
			task_id, level, validator_id, validator_department_id, status, comment
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		level.TaskID,
		level.Level,
		nullInt64(level.ValidatorID),
		nullInt64(level.ValidatorDepartmentID),
		level.Status,
		nullString(level.Comment),
	)
	if err != nil {
		r.logger.Error("Failed to create validation level",
			zap.Int64("task_id", level.TaskID),
			zap.Int("level", level.Level),
			zap.Error(err))
		return fmt.Errorf("failed to create validation level: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	level.ID = id
	return nil
}

// GetByID retrieves a validation level by ID; returns nil when not found
func (r *ValidationRepository) GetByID(ctx context.Context, id int64) (*entity.TaskValidationLevel, error) {
	query := fmt.Sprintf("SELECT %s FROM task_validation_levels WHERE id = ?", validationLevelColumns)

	level, err := r.scanLevel(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get validation level", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get validation level: %w", err)
	}
	return level, nil
}

// ListByTaskID retrieves a task's validation levels ordered by level
func (r *ValidationRepository) ListByTaskID(ctx context.Context, taskID int64) ([]*entity.TaskValidationLevel, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM task_validation_levels WHERE task_id = ? ORDER BY level ASC",
		validationLevelColumns)

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to list validation levels", zap.Int64("task_id", taskID), zap.Error(err))
		return nil, fmt.Errorf("failed to list validation levels: %w", err)
	}
	defer rows.Close()

	var levels []*entity.TaskValidationLevel
	for rows.Next() {
		level, err := r.scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan validation level: %w", err)
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}

// Decide flips a pending level to its final status. The WHERE clause guards
// against a concurrent decision: zero affected rows means another validator
// got there first.
func (r *ValidationRepository) Decide(ctx context.Context, id int64, status, comment string, at time.Time) (bool, error) {
	query := `
		UPDATE task_validation_levels
		SET status = ?, comment = ?, validated_at = ?
		WHERE id = ? AND status = 'pending'
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, status, nullString(comment), at, id)
	if err != nil {
		r.logger.Error("Failed to decide validation level",
			zap.Int64("id", id),
			zap.String("status", status),
			zap.Error(err))
		return false, fmt.Errorf("failed to decide validation level: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// CountPending returns the number of still-pending levels on a task
func (r *ValidationRepository) CountPending(ctx context.Context, taskID int64) (int, error) {
	query := `SELECT COUNT(*) FROM task_validation_levels WHERE task_id = ? AND status = 'pending'`

	var count int
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, taskID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count pending levels", zap.Int64("task_id", taskID), zap.Error(err))
		return 0, fmt.Errorf("failed to count pending levels: %w", err)
	}
	return count, nil
}

func (r *ValidationRepository) scanLevel(row rowScanner) (*entity.TaskValidationLevel, error) {
	var level entity.TaskValidationLevel
	var validatorID, validatorDeptID sql.NullInt64
	var comment sql.NullString
	var validatedAt sql.NullTime

	err := row.Scan(
		&level.ID,
		&level.TaskID,
		&level.Level,
		&validatorID,
		&validatorDeptID,
		&level.Status,
		&comment,
		&validatedAt,
		&level.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	level.ValidatorID = int64Ptr(validatorID)
	level.ValidatorDepartmentID = int64Ptr(validatorDeptID)
	if comment.Valid {
		level.Comment = comment.String
	}
	level.ValidatedAt = timePtr(validatedAt)

	return &level, nil
}
