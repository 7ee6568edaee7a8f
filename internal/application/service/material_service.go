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

// Material request actions
const (
	MaterialActionValidate = "validate"
	MaterialActionRefuse   = "refuse"
)

// MaterialDecision is the validate-material-request payload.
type MaterialDecision struct {
	RequestID   int64  `json:"request_id"`
	Action      string `json:"action"`
	ValidatorID int64  `json:"validator_id"`
}

// MaterialResult is the validate-material-request response body.
type MaterialResult struct {
	Success bool   `json:"success"`
	TaskID  *int64 `json:"task_id,omitempty"`
	Message string `json:"message"`
}

// MaterialService handles the closed two-outcome validation flow for
// procurement material requests: validate activates the pending order lines
// and spins up one fulfillment task with the fixed checklist; refuse only
// parks the lines. Both outcomes leave an audit trail.
type MaterialService struct {
	tasks      port.TaskRepository
	orderLines port.OrderLineRepository
	checklists port.ChecklistRepository
	audits     port.AuditRepository
	txManager  port.TransactionManager
	logger     Logger

	now func() time.Time
}

// NewMaterialService creates a new material request service
func NewMaterialService(
	tasks port.TaskRepository,
	orderLines port.OrderLineRepository,
	checklists port.ChecklistRepository,
	audits port.AuditRepository,
	txManager port.TransactionManager,
	logger Logger,
) *MaterialService {
	return &MaterialService{
		tasks:      tasks,
		orderLines: orderLines,
		checklists: checklists,
		audits:     audits,
		txManager:  txManager,
		logger:     logger,
		now:        time.Now,
	}
}

// Process applies a validate or refuse decision to a material request
func (s *MaterialService) Process(ctx context.Context, decision MaterialDecision) (*MaterialResult, error) {
	if decision.Action != MaterialActionValidate && decision.Action != MaterialActionRefuse {
		return nil, fmt.Errorf("unknown action %q", decision.Action)
	}

	request, err := s.tasks.GetByID(ctx, decision.RequestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrNotFound
	}

	if decision.Action == MaterialActionValidate {
		return s.validate(ctx, request, decision.ValidatorID)
	}
	return s.refuse(ctx, request, decision.ValidatorID)
}

func (s *MaterialService) validate(ctx context.Context, request *entity.Task, validatorID int64) (*MaterialResult, error) {
	var result MaterialResult

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		moved, err := s.orderLines.UpdateStatusWhere(txCtx, request.ID,
			entity.OrderLinePendingValidation, entity.OrderLineQuoteRequested)
		if err != nil {
			return err
		}

		task := &entity.Task{
			Reference:          uuid.NewString(),
			Type:               entity.TypeTask,
			Title:              fmt.Sprintf("Commande - %s", request.Title),
			Status:             workflow.StateToAssign.String(),
			Priority:           request.Priority,
			ParentRequestID:    &request.ID,
			RequesterID:        request.RequesterID,
			TargetDepartmentID: request.TargetDepartmentID,
		}
		if err := s.tasks.Create(txCtx, task); err != nil {
			return fmt.Errorf("failed to create fulfillment task: %w", err)
		}

		for i, step := range entity.FulfillmentChecklist {
			if err := s.checklists.Create(txCtx, &entity.ChecklistItem{
				TaskID:     task.ID,
				Title:      step,
				OrderIndex: i,
			}); err != nil {
				return fmt.Errorf("failed to create fulfillment checklist item: %w", err)
			}
		}

		if err := s.audits.Create(txCtx, &entity.AuditEvent{
			EntityType: entity.AuditEntityRequest,
			EntityID:   request.ID,
			ActorID:    &validatorID,
			Action:     entity.AuditActionMaterialValidated,
			Details:    fmt.Sprintf("%d order lines activated", moved),
		}); err != nil {
			return err
		}

		result = MaterialResult{
			Success: true,
			TaskID:  &task.ID,
			Message: fmt.Sprintf("Request validated, %d order line(s) activated", moved),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Material request validated",
		"request_id", request.ID,
		"task_id", *result.TaskID,
		"validator_id", validatorID)
	return &result, nil
}

func (s *MaterialService) refuse(ctx context.Context, request *entity.Task, validatorID int64) (*MaterialResult, error) {
	var moved int

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		moved, err = s.orderLines.UpdateStatusWhere(txCtx, request.ID,
			entity.OrderLinePendingValidation, entity.OrderLineRefused)
		if err != nil {
			return err
		}

		return s.audits.Create(txCtx, &entity.AuditEvent{
			EntityType: entity.AuditEntityRequest,
			EntityID:   request.ID,
			ActorID:    &validatorID,
			Action:     entity.AuditActionMaterialRefused,
			Details:    fmt.Sprintf("%d order lines refused", moved),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Material request refused",
		"request_id", request.ID,
		"validator_id", validatorID)

	return &MaterialResult{
		Success: true,
		Message: fmt.Sprintf("Request refused, %d order line(s) updated", moved),
	}, nil
}
