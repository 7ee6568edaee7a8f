package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/domain/entity"
	"github.com/keonhq/taskflow/internal/domain/workflow"
)

// TemplateResolver resolves the ordered task templates for a request
type TemplateResolver interface {
	Resolve(ctx context.Context, processTemplateID int64, subProcessTemplateID *int64) ([]*entity.TaskTemplate, error)
}

// GenerateInput describes one pending-assignment generation run.
type GenerateInput struct {
	ParentRequestID      int64
	ProcessTemplateID    int64
	TargetDepartmentID   *int64
	SubProcessTemplateID *int64
	TargetManagerID      *int64
	RequesterID          *int64
}

// GenerationService materializes concrete task rows from task templates when
// a request is submitted. Generated tasks land on the target department or
// manager for later distribution, never on an individual assignee.
type GenerationService struct {
	resolver      TemplateResolver
	tasks         port.TaskRepository
	templates     port.TemplateRepository
	checklists    port.ChecklistRepository
	validations   port.ValidationRepository
	notifications port.NotificationRepository
	audits        port.AuditRepository
	txManager     port.TransactionManager
	logger        Logger

	now func() time.Time
}

// NewGenerationService creates a new generation service
func NewGenerationService(
	resolver TemplateResolver,
	tasks port.TaskRepository,
	templates port.TemplateRepository,
	checklists port.ChecklistRepository,
	validations port.ValidationRepository,
	notifications port.NotificationRepository,
	audits port.AuditRepository,
	txManager port.TransactionManager,
	logger Logger,
) *GenerationService {
	return &GenerationService{
		resolver:      resolver,
		tasks:         tasks,
		templates:     templates,
		checklists:    checklists,
		validations:   validations,
		notifications: notifications,
		audits:        audits,
		txManager:     txManager,
		logger:        logger,
		now:           time.Now,
	}
}

// Generate creates one task per resolved template, each with its cloned
// checklist and validation levels. Each task is written in its own
// transaction so a crash can never leave a task without its sub-rows, while
// one template's failure only skips that template. Returns the number of
// tasks created; an empty template set is a valid zero-count result.
func (s *GenerationService) Generate(ctx context.Context, in GenerateInput) (int, error) {
	templates, err := s.resolver.Resolve(ctx, in.ProcessTemplateID, in.SubProcessTemplateID)
	if err != nil {
		return 0, err
	}
	if len(templates) == 0 {
		return 0, nil
	}

	created := 0
	for _, template := range templates {
		if err := s.generateOne(ctx, in, template); err != nil {
			s.logger.Error("Failed to generate task from template, skipping",
				"task_template_id", template.ID,
				"parent_request_id", in.ParentRequestID,
				"error", err)
			continue
		}
		created++
	}

	s.logger.Info("Generated tasks for request",
		"parent_request_id", in.ParentRequestID,
		"created", created,
		"templates", len(templates))

	if err := s.audits.Create(ctx, &entity.AuditEvent{
		EntityType: entity.AuditEntityRequest,
		EntityID:   in.ParentRequestID,
		ActorID:    in.RequesterID,
		Action:     entity.AuditActionTasksGenerated,
		Details:    fmt.Sprintf("%d tasks generated", created),
	}); err != nil {
		s.logger.Error("Failed to record generation audit event", "error", err)
	}

	if in.RequesterID != nil {
		if err := s.notifications.Create(ctx, &entity.Notification{
			RecipientID: *in.RequesterID,
			Title:       "Tasks generated",
			Body:        fmt.Sprintf("%d task(s) created for your request", created),
			Status:      entity.NotificationStatusPending,
		}); err != nil {
			s.logger.Error("Failed to create generation notification", "error", err)
		}
	}

	return created, nil
}

// generateOne writes one task with its checklist and validation levels
// atomically.
func (s *GenerationService) generateOne(ctx context.Context, in GenerateInput, template *entity.TaskTemplate) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		task := &entity.Task{
			Reference:                  uuid.NewString(),
			Type:                       entity.TypeTask,
			Title:                      template.Name,
			Description:                template.Description,
			Status:                     workflow.StateToAssign.String(),
			Priority:                   entity.PriorityMedium,
			ParentRequestID:            &in.ParentRequestID,
			SourceProcessTemplateID:    &in.ProcessTemplateID,
			SourceSubProcessTemplateID: template.SubProcessTemplateID,
			AssigneeID:                 in.TargetManagerID,
			RequesterID:                in.RequesterID,
			TargetDepartmentID:         in.TargetDepartmentID,
			RequiresValidation:         template.RequiresValidation,
			DueDate:                    s.dueDate(template.DefaultDurationDays),
		}

		if err := s.tasks.Create(txCtx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		checklist, err := s.templates.ListTemplateChecklist(txCtx, template.ID)
		if err != nil {
			return fmt.Errorf("failed to load template checklist: %w", err)
		}
		for _, item := range checklist {
			if err := s.checklists.Create(txCtx, &entity.ChecklistItem{
				TaskID:     task.ID,
				Title:      item.Title,
				OrderIndex: item.OrderIndex,
			}); err != nil {
				return fmt.Errorf("failed to clone checklist item: %w", err)
			}
		}

		if template.RequiresValidation {
			levels, err := s.templates.ListTemplateValidationLevels(txCtx, template.ID)
			if err != nil {
				return fmt.Errorf("failed to load template validation levels: %w", err)
			}
			for _, level := range levels {
				if err := s.validations.Create(txCtx, &entity.TaskValidationLevel{
					TaskID:                task.ID,
					Level:                 level.Level,
					ValidatorID:           level.ValidatorID,
					ValidatorDepartmentID: level.ValidatorDepartmentID,
					Status:                entity.LevelStatusPending,
				}); err != nil {
					return fmt.Errorf("failed to clone validation level: %w", err)
				}
			}
		}

		return nil
	})
}

// dueDate computes generation day + duration at midnight; nil duration means
// no due date.
func (s *GenerationService) dueDate(durationDays *int) *time.Time {
	if durationDays == nil {
		return nil
	}
	now := s.now()
	due := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, *durationDays)
	return &due
}
