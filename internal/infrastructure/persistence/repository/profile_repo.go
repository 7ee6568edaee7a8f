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

// ProfileRepository implements port.ProfileRepository
type ProfileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB, logger *zap.Logger) port.ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a profile by ID; returns nil when not found
func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*entity.Profile, error) {
	query := `SELECT id, full_name, email, department_id, created_at FROM profiles WHERE id = ?`

	var profile entity.Profile
	var departmentID sql.NullInt64

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.Email,
		&departmentID,
		&profile.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get profile", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.DepartmentID = int64Ptr(departmentID)
	return &profile, nil
}

// GetDepartment retrieves a department by ID; returns nil when not found
func (r *ProfileRepository) GetDepartment(ctx context.Context, id int64) (*entity.Department, error) {
	query := `SELECT id, name, manager_id, created_at FROM departments WHERE id = ?`

	var dept entity.Department
	var managerID sql.NullInt64

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&dept.ID,
		&dept.Name,
		&managerID,
		&dept.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get department", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	dept.ManagerID = int64Ptr(managerID)
	return &dept, nil
}
