package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/domain/entity"
	"github.com/keonhq/taskflow/internal/domain/workflow"
	"github.com/keonhq/taskflow/internal/policy"
)

// Generator materializes pending-assignment tasks for a submitted request
type Generator interface {
	Generate(ctx context.Context, in GenerateInput) (int, error)
}

// SubmitRequestInput describes a new request submission.
type SubmitRequestInput struct {
	Title                string
	Description          string
	Priority             string
	ProcessTemplateID    int64
	SubProcessTemplateID *int64
	TargetDepartmentID   *int64
	TargetManagerID      *int64
	RequesterID          int64
	DueDate              *time.Time
	OrderLines           []OrderLineInput
}

// OrderLineInput is one procurement line submitted with a material request.
type OrderLineInput struct {
	Designation string `json:"designation"`
	Quantity    int    `json:"quantity"`
}

// RequestService owns request intake and the shared task read/mutation
// surface.
type RequestService struct {
	tasks      port.TaskRepository
	checklists port.ChecklistRepository
	orderLines port.OrderLineRepository
	audits     port.AuditRepository
	generator  Generator
	txManager  port.TransactionManager
	logger     Logger

	now func() time.Time
}

// NewRequestService creates a new request service
func NewRequestService(
	tasks port.TaskRepository,
	checklists port.ChecklistRepository,
	orderLines port.OrderLineRepository,
	audits port.AuditRepository,
	generator Generator,
	txManager port.TransactionManager,
	logger Logger,
) *RequestService {
	return &RequestService{
		tasks:      tasks,
		checklists: checklists,
		orderLines: orderLines,
		audits:     audits,
		generator:  generator,
		txManager:  txManager,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitRequest creates the request row, its order lines, and generates the
// pending-assignment tasks from the process template. Returns the request and
// the generated task count.
func (s *RequestService) SubmitRequest(ctx context.Context, in SubmitRequestInput) (*entity.Task, int, error) {
	priority := in.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}

	request := &entity.Task{
		Reference:               uuid.NewString(),
		Type:                    entity.TypeRequest,
		Title:                   in.Title,
		Description:             in.Description,
		Status:                  workflow.StateTodo.String(),
		Priority:                priority,
		SourceProcessTemplateID: &in.ProcessTemplateID,
		TargetDepartmentID:      in.TargetDepartmentID,
		RequesterID:             &in.RequesterID,
		DueDate:                 in.DueDate,
	}
	request.SourceSubProcessTemplateID = in.SubProcessTemplateID

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.tasks.Create(txCtx, request); err != nil {
			return err
		}
		for _, line := range in.OrderLines {
			if err := s.orderLines.Create(txCtx, &entity.OrderLine{
				RequestID:   request.ID,
				Designation: line.Designation,
				Quantity:    line.Quantity,
				Status:      entity.OrderLinePendingValidation,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	created, err := s.generator.Generate(ctx, GenerateInput{
		ParentRequestID:      request.ID,
		ProcessTemplateID:    in.ProcessTemplateID,
		SubProcessTemplateID: in.SubProcessTemplateID,
		TargetDepartmentID:   in.TargetDepartmentID,
		TargetManagerID:      in.TargetManagerID,
		RequesterID:          &in.RequesterID,
	})
	if err != nil {
		return nil, 0, err
	}

	s.logger.Info("Request submitted",
		"request_id", request.ID,
		"reference", request.Reference,
		"tasks_created", created)
	return request, created, nil
}

// GetTask retrieves a task or request by id
func (s *RequestService) GetTask(ctx context.Context, id int64) (*entity.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// GetByReference retrieves a task or request by its external reference
func (s *RequestService) GetByReference(ctx context.Context, reference string) (*entity.Task, error) {
	task, err := s.tasks.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// ListTasks returns tasks matching the filter, paginated
func (s *RequestService) ListTasks(ctx context.Context, filter port.TaskFilter, limit, offset int) ([]*entity.Task, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.tasks.List(ctx, filter, limit, offset)
}

// UpdateStatus mutates a task's status. The target is expressed as a trigger
// on the task state machine; changes the machine does not permit are rejected
// before any write. Entering validated stamps validated_at.
func (s *RequestService) UpdateStatus(ctx context.Context, id int64, newStatus string, actor policy.Actor) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrNotFound
	}

	trigger, err := workflow.TriggerFor(workflow.State(task.Status), workflow.State(newStatus))
	if err != nil {
		return err
	}
	machine := workflow.NewTaskMachine(workflow.State(task.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return err
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.tasks.UpdateStatus(txCtx, id, machine.State().String()); err != nil {
			return err
		}
		if machine.State() == workflow.StateValidated {
			if err := s.tasks.SetValidated(txCtx, id, s.now()); err != nil {
				return err
			}
		}
		return s.audits.Create(txCtx, &entity.AuditEvent{
			EntityType: entity.AuditEntityTask,
			EntityID:   id,
			ActorID:    &actor.ProfileID,
			Action:     entity.AuditActionStatusChanged,
			Details:    task.Status + " -> " + machine.State().String(),
		})
	})
}

// ListChecklist returns a task's checklist items
func (s *RequestService) ListChecklist(ctx context.Context, taskID int64) ([]*entity.ChecklistItem, error) {
	return s.checklists.ListByTaskID(ctx, taskID)
}

// ToggleChecklistItem flips a checklist item's completion, stamping who and
// when on completion and clearing both on un-completion.
func (s *RequestService) ToggleChecklistItem(ctx context.Context, itemID int64, completed bool, actor policy.Actor) error {
	if !completed {
		return s.checklists.SetCompleted(ctx, itemID, false, nil, nil)
	}
	at := s.now()
	return s.checklists.SetCompleted(ctx, itemID, true, &actor.ProfileID, &at)
}

// ListOrderLines returns a request's procurement lines
func (s *RequestService) ListOrderLines(ctx context.Context, requestID int64) ([]*entity.OrderLine, error) {
	return s.orderLines.ListByRequestID(ctx, requestID)
}
