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

// ChecklistRepository implements port.ChecklistRepository
type ChecklistRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewChecklistRepository creates a new checklist repository
func NewChecklistRepository(db *sql.DB, logger *zap.Logger) port.ChecklistRepository {
	return &ChecklistRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a checklist item
func (r *ChecklistRepository) Create(ctx context.Context, item *entity.ChecklistItem) error {
	query := `
		INSERT INTO checklist_items (task_id, title, order_index, is_completed, completed_at, completed_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		item.TaskID,
		item.Title,
		item.OrderIndex,
		item.IsCompleted,
		nullTime(item.CompletedAt),
		nullInt64(item.CompletedBy),
	)
	if err != nil {
		r.logger.Error("Failed to create checklist item",
			zap.Int64("task_id", item.TaskID),
			zap.Error(err))
		return fmt.Errorf("failed to create checklist item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = id
	return nil
}

// ListByTaskID retrieves a task's checklist in order
func (r *ChecklistRepository) ListByTaskID(ctx context.Context, taskID int64) ([]*entity.ChecklistItem, error) {
	query := `
		SELECT id, task_id, title, order_index, is_completed, completed_at, completed_by
		FROM checklist_items
		WHERE task_id = ?
		ORDER BY order_index ASC, id ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to list checklist items", zap.Int64("task_id", taskID), zap.Error(err))
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer rows.Close()

	var items []*entity.ChecklistItem
	for rows.Next() {
		var item entity.ChecklistItem
		var completedAt sql.NullTime
		var completedBy sql.NullInt64

		err := rows.Scan(
			&item.ID,
			&item.TaskID,
			&item.Title,
			&item.OrderIndex,
			&item.IsCompleted,
			&completedAt,
			&completedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}

		item.CompletedAt = timePtr(completedAt)
		item.CompletedBy = int64Ptr(completedBy)
		items = append(items, &item)
	}
	return items, rows.Err()
}

// SetCompleted toggles a checklist item's completion
func (r *ChecklistRepository) SetCompleted(ctx context.Context, id int64, completed bool, by *int64, at *time.Time) error {
	query := `UPDATE checklist_items SET is_completed = ?, completed_by = ?, completed_at = ? WHERE id = ?`

	if _, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, completed, nullInt64(by), nullTime(at), id); err != nil {
		r.logger.Error("Failed to set checklist completion", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set checklist completion: %w", err)
	}
	return nil
}
