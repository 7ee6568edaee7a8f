package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/domain/entity"
	"github.com/keonhq/taskflow/internal/domain/recurrence"
	"github.com/keonhq/taskflow/internal/domain/workflow"
)

// RunResult is the outcome for one due template in a recurrence sweep.
type RunResult struct {
	TemplateID int64  `json:"template_id"`
	Status     string `json:"status"`
	RequestID  *int64 `json:"request_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RunSummary aggregates one recurrence sweep.
type RunSummary struct {
	Processed int         `json:"processed"`
	Results   []RunResult `json:"results"`
}

// RecurrenceService creates request instances from process templates whose
// recurrence window is due. Templates are processed independently; one
// template's failure never blocks the rest of the sweep.
type RecurrenceService struct {
	tasks     port.TaskRepository
	templates port.TemplateRepository
	runs      port.RecurrenceRunRepository
	audits    port.AuditRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewRecurrenceService creates a new recurrence service
func NewRecurrenceService(
	tasks port.TaskRepository,
	templates port.TemplateRepository,
	runs port.RecurrenceRunRepository,
	audits port.AuditRepository,
	txManager port.TransactionManager,
	logger Logger,
) *RecurrenceService {
	return &RecurrenceService{
		tasks:     tasks,
		templates: templates,
		runs:      runs,
		audits:    audits,
		txManager: txManager,
		logger:    logger,
	}
}

// Run sweeps every template due at now, creating a request, a success run
// row, and the advanced next-run timestamp for each. A failing template gets
// an error run row with the message and the sweep continues.
func (s *RecurrenceService) Run(ctx context.Context, now time.Time) (*RunSummary, error) {
	due, err := s.templates.ListDueRecurring(ctx, now)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{Results: make([]RunResult, 0, len(due))}
	for _, template := range due {
		requestID, err := s.processTemplate(ctx, template, now)

		run := &entity.RecurrenceRun{
			ProcessTemplateID: template.ID,
			RequestID:         requestID,
			ScheduledAt:       now,
			Status:            entity.RunStatusSuccess,
		}
		result := RunResult{TemplateID: template.ID, Status: entity.RunStatusSuccess, RequestID: requestID}

		if err != nil {
			s.logger.Error("Recurrence generation failed for template",
				"process_template_id", template.ID,
				"error", err)
			run.Status = entity.RunStatusError
			run.ErrorMessage = err.Error()
			result.Status = entity.RunStatusError
			result.Error = err.Error()
		}

		if createErr := s.runs.Create(ctx, run); createErr != nil {
			s.logger.Error("Failed to record recurrence run",
				"process_template_id", template.ID,
				"error", createErr)
		}

		summary.Results = append(summary.Results, result)
		summary.Processed++
	}

	s.logger.Info("Recurrence sweep complete", "processed", summary.Processed)
	return summary, nil
}

// processTemplate creates the request and advances the template's next run
// atomically, returning the new request id.
func (s *RecurrenceService) processTemplate(ctx context.Context, template *entity.ProcessTemplate, now time.Time) (*int64, error) {
	next, err := recurrence.NextRun(now, template.RecurrenceInterval, template.RecurrenceUnit)
	if err != nil {
		return nil, err
	}

	var requestID int64
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		due := now.AddDate(0, 0, template.RecurrenceDelayDays)

		request := &entity.Task{
			Reference:               uuid.NewString(),
			Type:                    entity.TypeRequest,
			Title:                   recurrence.BuildTitle(template.TitlePattern, template.Name, now),
			Description:             template.Description,
			Status:                  workflow.StateTodo.String(),
			Priority:                entity.PriorityMedium,
			Category:                template.Category,
			Subcategory:             template.Subcategory,
			SourceProcessTemplateID: &template.ID,
			TargetDepartmentID:      template.TargetDepartmentID,
			DueDate:                 &due,
		}
		if err := s.tasks.Create(txCtx, request); err != nil {
			return err
		}
		requestID = request.ID

		if err := s.audits.Create(txCtx, &entity.AuditEvent{
			EntityType: entity.AuditEntityProcessTemplate,
			EntityID:   template.ID,
			Action:     entity.AuditActionRecurrenceCreated,
			Details:    fmt.Sprintf("created request %d", request.ID),
		}); err != nil {
			return err
		}

		return s.templates.UpdateNextRunAt(txCtx, template.ID, next)
	})
	if err != nil {
		return nil, err
	}
	return &requestID, nil
}
