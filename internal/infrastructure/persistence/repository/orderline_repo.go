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

// OrderLineRepository implements port.OrderLineRepository
type OrderLineRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderLineRepository creates a new order line repository
func NewOrderLineRepository(db *sql.DB, logger *zap.Logger) port.OrderLineRepository {
	return &OrderLineRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an order line
func (r *OrderLineRepository) Create(ctx context.Context, line *entity.OrderLine) error {
	query := `
		INSERT INTO order_lines (request_id, designation, quantity, status)
		VALUES (?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		line.RequestID,
		line.Designation,
		line.Quantity,
		line.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create order line",
			zap.Int64("request_id", line.RequestID),
			zap.Error(err))
		return fmt.Errorf("failed to create order line: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	line.ID = id
	return nil
}

// ListByRequestID retrieves a request's order lines
func (r *OrderLineRepository) ListByRequestID(ctx context.Context, requestID int64) ([]*entity.OrderLine, error) {
	query := `
		SELECT id, request_id, designation, quantity, status, created_at, updated_at
		FROM order_lines
		WHERE request_id = ?
		ORDER BY id ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to list order lines", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.OrderLine
	for rows.Next() {
		var line entity.OrderLine
		err := rows.Scan(
			&line.ID,
			&line.RequestID,
			&line.Designation,
			&line.Quantity,
			&line.Status,
			&line.CreatedAt,
			&line.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, &line)
	}
	return lines, rows.Err()
}

// UpdateStatusWhere moves a request's lines from one status to another and
// returns how many lines moved
func (r *OrderLineRepository) UpdateStatusWhere(ctx context.Context, requestID int64, fromStatus, toStatus string) (int, error) {
	query := `
		UPDATE order_lines
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE request_id = ? AND status = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, toStatus, requestID, fromStatus)
	if err != nil {
		r.logger.Error("Failed to update order line status",
			zap.Int64("request_id", requestID),
			zap.String("from", fromStatus),
			zap.String("to", toStatus),
			zap.Error(err))
		return 0, fmt.Errorf("failed to update order line status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(affected), nil
}
