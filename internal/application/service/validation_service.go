package service

import (
	"context"
	"fmt"
	"time"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/domain/entity"
	"github.com/keonhq/taskflow/internal/domain/workflow"
	"github.com/keonhq/taskflow/internal/policy"
)

// ValidationService drives per-level validation decisions on tasks. Each
// level is decided exactly once; the decision update is guarded on the
// pending status so a lost concurrent decision is detected, not overwritten.
type ValidationService struct {
	tasks         port.TaskRepository
	validations   port.ValidationRepository
	audits        port.AuditRepository
	notifications port.NotificationRepository
	txManager     port.TransactionManager
	logger        Logger

	now func() time.Time
}

// NewValidationService creates a new validation service
func NewValidationService(
	tasks port.TaskRepository,
	validations port.ValidationRepository,
	audits port.AuditRepository,
	notifications port.NotificationRepository,
	txManager port.TransactionManager,
	logger Logger,
) *ValidationService {
	return &ValidationService{
		tasks:         tasks,
		validations:   validations,
		audits:        audits,
		notifications: notifications,
		txManager:     txManager,
		logger:        logger,
		now:           time.Now,
	}
}

// ValidateLevel decides a pending level as validated. It does not advance
// the parent task's status; callers decide separately whether to request the
// next level or close out.
func (s *ValidationService) ValidateLevel(ctx context.Context, levelID int64, actor policy.Actor, comment string) error {
	level, err := s.loadLevel(ctx, levelID, actor)
	if err != nil {
		return err
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		decided, err := s.validations.Decide(txCtx, levelID, entity.LevelStatusValidated, comment, s.now())
		if err != nil {
			return err
		}
		if !decided {
			return ErrLevelAlreadyDecided
		}

		s.logger.Info("Validation level validated",
			"level_id", levelID,
			"task_id", level.TaskID,
			"level", level.Level,
			"actor_id", actor.ProfileID)

		return s.recordDecision(txCtx, level, actor, entity.AuditActionLevelValidated, "Validation approved", comment)
	})
}

// RefuseLevel decides a pending level as refused and unconditionally forces
// the parent task to refused. Refusal always halts the task, whatever other
// levels have decided.
func (s *ValidationService) RefuseLevel(ctx context.Context, levelID int64, actor policy.Actor, comment string) error {
	level, err := s.loadLevel(ctx, levelID, actor)
	if err != nil {
		return err
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		decided, err := s.validations.Decide(txCtx, levelID, entity.LevelStatusRefused, comment, s.now())
		if err != nil {
			return err
		}
		if !decided {
			return ErrLevelAlreadyDecided
		}

		if err := s.tasks.UpdateStatus(txCtx, level.TaskID, workflow.StateRefused.String()); err != nil {
			return fmt.Errorf("failed to refuse task: %w", err)
		}

		s.logger.Info("Validation level refused",
			"level_id", levelID,
			"task_id", level.TaskID,
			"level", level.Level,
			"actor_id", actor.ProfileID)

		return s.recordDecision(txCtx, level, actor, entity.AuditActionLevelRefused, "Validation refused", comment)
	})
}

// RequestValidation moves a task into the first validation stage and stamps
// validation_requested_at. The task must carry at least one pending
// validation level; a task with none would be stuck with no validator.
func (s *ValidationService) RequestValidation(ctx context.Context, taskID int64, actor policy.Actor) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrNotFound
	}

	pending, err := s.validations.CountPending(ctx, taskID)
	if err != nil {
		return err
	}
	if pending == 0 {
		return ErrNoValidationLevels
	}

	machine := workflow.NewTaskMachine(workflow.State(task.Status))
	if err := machine.Fire(ctx, workflow.TriggerRequestValidation); err != nil {
		return err
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.tasks.UpdateStatus(txCtx, taskID, machine.State().String()); err != nil {
			return err
		}
		if err := s.tasks.SetValidationRequested(txCtx, taskID, s.now()); err != nil {
			return err
		}
		if err := s.tasks.SetCurrentValidationLevel(txCtx, taskID, 1); err != nil {
			return err
		}

		return s.audits.Create(txCtx, &entity.AuditEvent{
			EntityType: entity.AuditEntityTask,
			EntityID:   taskID,
			ActorID:    &actor.ProfileID,
			Action:     entity.AuditActionValidationRequested,
		})
	})
}

// CanValidate reports whether the actor may decide the given level
func (s *ValidationService) CanValidate(actor policy.Actor, level *entity.TaskValidationLevel) bool {
	return policy.CanValidate(actor, level.ValidatorID, level.ValidatorDepartmentID)
}

// CurrentPendingLevel returns the lowest-ordered level still pending on the
// task, or nil when none remain.
func (s *ValidationService) CurrentPendingLevel(ctx context.Context, taskID int64) (*entity.TaskValidationLevel, error) {
	levels, err := s.validations.ListByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var lowest *entity.TaskValidationLevel
	for _, level := range levels {
		if level.Status != entity.LevelStatusPending {
			continue
		}
		if lowest == nil || level.Level < lowest.Level {
			lowest = level
		}
	}
	return lowest, nil
}

// ListLevels returns all validation levels for a task
func (s *ValidationService) ListLevels(ctx context.Context, taskID int64) ([]*entity.TaskValidationLevel, error) {
	return s.validations.ListByTaskID(ctx, taskID)
}

// loadLevel fetches a level and checks the actor's authorization to decide it
func (s *ValidationService) loadLevel(ctx context.Context, levelID int64, actor policy.Actor) (*entity.TaskValidationLevel, error) {
	level, err := s.validations.GetByID(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, ErrNotFound
	}
	if !policy.CanValidate(actor, level.ValidatorID, level.ValidatorDepartmentID) {
		return nil, ErrUnauthorized
	}
	return level, nil
}

// recordDecision appends the audit trail and queues the requester
// notification for a level decision.
func (s *ValidationService) recordDecision(ctx context.Context, level *entity.TaskValidationLevel, actor policy.Actor, action, title, comment string) error {
	if err := s.audits.Create(ctx, &entity.AuditEvent{
		EntityType: entity.AuditEntityValidationLevel,
		EntityID:   level.ID,
		ActorID:    &actor.ProfileID,
		Action:     action,
		Details:    comment,
	}); err != nil {
		return fmt.Errorf("failed to record validation audit event: %w", err)
	}

	task, err := s.tasks.GetByID(ctx, level.TaskID)
	if err != nil {
		return err
	}
	if task == nil || task.RequesterID == nil {
		return nil
	}

	if err := s.notifications.Create(ctx, &entity.Notification{
		RecipientID: *task.RequesterID,
		Title:       title,
		Body:        fmt.Sprintf("Level %d decision on %q", level.Level, task.Title),
		Status:      entity.NotificationStatusPending,
	}); err != nil {
		s.logger.Error("Failed to create validation notification", "task_id", task.ID, "error", err)
	}
	return nil
}
