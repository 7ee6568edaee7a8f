package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/domain/entity"
	"github.com/keonhq/taskflow/internal/infrastructure/persistence/sqlite"
)

// RecurrenceRunRepository implements port.RecurrenceRunRepository
type RecurrenceRunRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRecurrenceRunRepository creates a new recurrence run repository
func NewRecurrenceRunRepository(db *sql.DB, logger *zap.Logger) port.RecurrenceRunRepository {
	return &RecurrenceRunRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a recurrence run audit row
func (r *RecurrenceRunRepository) Create(ctx context.Context, run *entity.RecurrenceRun) error {
	query := `
		INSERT INTO recurrence_runs (process_template_id, request_id, scheduled_at, status, error_message)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		run.ProcessTemplateID,
		nullInt64(run.RequestID),
		run.ScheduledAt,
		run.Status,
		nullString(run.ErrorMessage),
	)
	if err != nil {
		r.logger.Error("Failed to create recurrence run",
			zap.Int64("process_template_id", run.ProcessTemplateID),
			zap.Error(err))
		return fmt.Errorf("failed to create recurrence run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	run.ID = id
	return nil
}

// ListByTemplateID retrieves a template's run history, newest first
func (r *RecurrenceRunRepository) ListByTemplateID(ctx context.Context, processTemplateID int64) ([]*entity.RecurrenceRun, error) {
	query := `
		SELECT id, process_template_id, request_id, scheduled_at, status, error_message, created_at
		FROM recurrence_runs
		WHERE process_template_id = ?
		ORDER BY scheduled_at DESC, id DESC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, processTemplateID)
	if err != nil {
		r.logger.Error("Failed to list recurrence runs", zap.Int64("process_template_id", processTemplateID), zap.Error(err))
		return nil, fmt.Errorf("failed to list recurrence runs: %w", err)
	}
	defer rows.Close()

	var runs []*entity.RecurrenceRun
	for rows.Next() {
		var run entity.RecurrenceRun
		var requestID sql.NullInt64
		var errorMessage sql.NullString

		err := rows.Scan(
			&run.ID,
			&run.ProcessTemplateID,
			&requestID,
			&run.ScheduledAt,
			&run.Status,
			&errorMessage,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurrence run: %w", err)
		}

		run.RequestID = int64Ptr(requestID)
		if errorMessage.Valid {
			run.ErrorMessage = errorMessage.String
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
