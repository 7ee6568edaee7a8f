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

// AuditRepository implements port.AuditRepository
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) port.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an audit event
func (r *AuditRepository) Create(ctx context.Context, event *entity.AuditEvent) error {
	query := `
		INSERT INTO audit_events (entity_type, entity_id, actor_id, action, details)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		event.EntityType,
		event.EntityID,
		nullInt64(event.ActorID),
		event.Action,
		nullString(event.Details),
	)
	if err != nil {
		r.logger.Error("Failed to create audit event",
			zap.String("entity_type", event.EntityType),
			zap.Int64("entity_id", event.EntityID),
			zap.Error(err))
		return fmt.Errorf("failed to create audit event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = id
	return nil
}

// ListByEntity retrieves an entity's audit trail, oldest first
func (r *AuditRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.AuditEvent, error) {
	query := `
		SELECT id, entity_type, entity_id, actor_id, action, details, created_at
		FROM audit_events
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		r.logger.Error("Failed to list audit events",
			zap.String("entity_type", entityType),
			zap.Int64("entity_id", entityID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*entity.AuditEvent
	for rows.Next() {
		var event entity.AuditEvent
		var actorID sql.NullInt64
		var details sql.NullString

		err := rows.Scan(
			&event.ID,
			&event.EntityType,
			&event.EntityID,
			&actorID,
			&event.Action,
			&details,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}

		event.ActorID = int64Ptr(actorID)
		if details.Valid {
			event.Details = details.String
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
