package service

import (
	"context"
	"time"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/domain/entity"
)

// Func-field mocks: each test sets only the behaviors it exercises.

type mockTaskRepo struct {
	createFunc                    func(ctx context.Context, task *entity.Task) error
	getByIDFunc                   func(ctx context.Context, id int64) (*entity.Task, error)
	getByReferenceFunc            func(ctx context.Context, reference string) (*entity.Task, error)
	listFunc                      func(ctx context.Context, filter port.TaskFilter, limit, offset int) ([]*entity.Task, error)
	listOpenFunc                  func(ctx context.Context) ([]*entity.Task, error)
	updateStatusFunc              func(ctx context.Context, id int64, status string) error
	setValidationRequestedFunc    func(ctx context.Context, id int64, at time.Time) error
	setValidatedFunc              func(ctx context.Context, id int64, at time.Time) error
	setCurrentValidationLevelFunc func(ctx context.Context, id int64, level int) error
}

func (m *mockTaskRepo) Create(ctx context.Context, task *entity.Task) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockTaskRepo) GetByReference(ctx context.Context, reference string) (*entity.Task, error) {
	if m.getByReferenceFunc != nil {
		return m.getByReferenceFunc(ctx, reference)
	}
	return nil, nil
}

func (m *mockTaskRepo) List(ctx context.Context, filter port.TaskFilter, limit, offset int) ([]*entity.Task, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter, limit, offset)
	}
	return nil, nil
}

func (m *mockTaskRepo) ListOpen(ctx context.Context) ([]*entity.Task, error) {
	if m.listOpenFunc != nil {
		return m.listOpenFunc(ctx)
	}
	return nil, nil
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockTaskRepo) SetValidationRequested(ctx context.Context, id int64, at time.Time) error {
	if m.setValidationRequestedFunc != nil {
		return m.setValidationRequestedFunc(ctx, id, at)
	}
	return nil
}

func (m *mockTaskRepo) SetValidated(ctx context.Context, id int64, at time.Time) error {
	if m.setValidatedFunc != nil {
		return m.setValidatedFunc(ctx, id, at)
	}
	return nil
}

func (m *mockTaskRepo) SetCurrentValidationLevel(ctx context.Context, id int64, level int) error {
	if m.setCurrentValidationLevelFunc != nil {
		return m.setCurrentValidationLevelFunc(ctx, id, level)
	}
	return nil
}

type mockTemplateRepo struct {
	getProcessTemplateFunc           func(ctx context.Context, id int64) (*entity.ProcessTemplate, error)
	listTaskTemplatesByProcessFunc   func(ctx context.Context, processTemplateID int64) ([]*entity.TaskTemplate, error)
	listTaskTemplatesBySubProcFunc   func(ctx context.Context, subProcessTemplateID int64) ([]*entity.TaskTemplate, error)
	listTemplateChecklistFunc        func(ctx context.Context, taskTemplateID int64) ([]*entity.TemplateChecklistItem, error)
	listTemplateValidationLevelsFunc func(ctx context.Context, taskTemplateID int64) ([]*entity.TemplateValidationLevel, error)
	listDueRecurringFunc             func(ctx context.Context, now time.Time) ([]*entity.ProcessTemplate, error)
	updateNextRunAtFunc              func(ctx context.Context, id int64, next time.Time) error
}

func (m *mockTemplateRepo) GetProcessTemplate(ctx context.Context, id int64) (*entity.ProcessTemplate, error) {
	if m.getProcessTemplateFunc != nil {
		return m.getProcessTemplateFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockTemplateRepo) ListTaskTemplatesByProcess(ctx context.Context, processTemplateID int64) ([]*entity.TaskTemplate, error) {
	if m.listTaskTemplatesByProcessFunc != nil {
		return m.listTaskTemplatesByProcessFunc(ctx, processTemplateID)
	}
	return nil, nil
}

func (m *mockTemplateRepo) ListTaskTemplatesBySubProcess(ctx context.Context, subProcessTemplateID int64) ([]*entity.TaskTemplate, error) {
	if m.listTaskTemplatesBySubProcFunc != nil {
		return m.listTaskTemplatesBySubProcFunc(ctx, subProcessTemplateID)
	}
	return nil, nil
}

func (m *mockTemplateRepo) ListTemplateChecklist(ctx context.Context, taskTemplateID int64) ([]*entity.TemplateChecklistItem, error) {
	if m.listTemplateChecklistFunc != nil {
		return m.listTemplateChecklistFunc(ctx, taskTemplateID)
	}
	return nil, nil
}

func (m *mockTemplateRepo) ListTemplateValidationLevels(ctx context.Context, taskTemplateID int64) ([]*entity.TemplateValidationLevel, error) {
	if m.listTemplateValidationLevelsFunc != nil {
		return m.listTemplateValidationLevelsFunc(ctx, taskTemplateID)
	}
	return nil, nil
}

func (m *mockTemplateRepo) ListDueRecurring(ctx context.Context, now time.Time) ([]*entity.ProcessTemplate, error) {
	if m.listDueRecurringFunc != nil {
		return m.listDueRecurringFunc(ctx, now)
	}
	return nil, nil
}

func (m *mockTemplateRepo) UpdateNextRunAt(ctx context.Context, id int64, next time.Time) error {
	if m.updateNextRunAtFunc != nil {
		return m.updateNextRunAtFunc(ctx, id, next)
	}
	return nil
}

type mockValidationRepo struct {
	createFunc       func(ctx context.Context, level *entity.TaskValidationLevel) error
	getByIDFunc      func(ctx context.Context, id int64) (*entity.TaskValidationLevel, error)
	listByTaskIDFunc func(ctx context.Context, taskID int64) ([]*entity.TaskValidationLevel, error)
	decideFunc       func(ctx context.Context, id int64, status, comment string, at time.Time) (bool, error)
	countPendingFunc func(ctx context.Context, taskID int64) (int, error)
}

func (m *mockValidationRepo) Create(ctx context.Context, level *entity.TaskValidationLevel) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, level)
	}
	return nil
}

func (m *mockValidationRepo) GetByID(ctx context.Context, id int64) (*entity.TaskValidationLevel, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockValidationRepo) ListByTaskID(ctx context.Context, taskID int64) ([]*entity.TaskValidationLevel, error) {
	if m.listByTaskIDFunc != nil {
		return m.listByTaskIDFunc(ctx, taskID)
	}
	return nil, nil
}

func (m *mockValidationRepo) Decide(ctx context.Context, id int64, status, comment string, at time.Time) (bool, error) {
	if m.decideFunc != nil {
		return m.decideFunc(ctx, id, status, comment, at)
	}
	return true, nil
}

func (m *mockValidationRepo) CountPending(ctx context.Context, taskID int64) (int, error) {
	if m.countPendingFunc != nil {
		return m.countPendingFunc(ctx, taskID)
	}
	return 0, nil
}

type mockChecklistRepo struct {
	createFunc       func(ctx context.Context, item *entity.ChecklistItem) error
	listByTaskIDFunc func(ctx context.Context, taskID int64) ([]*entity.ChecklistItem, error)
	setCompletedFunc func(ctx context.Context, id int64, completed bool, by *int64, at *time.Time) error
}

func (m *mockChecklistRepo) Create(ctx context.Context, item *entity.ChecklistItem) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, item)
	}
	return nil
}

func (m *mockChecklistRepo) ListByTaskID(ctx context.Context, taskID int64) ([]*entity.ChecklistItem, error) {
	if m.listByTaskIDFunc != nil {
		return m.listByTaskIDFunc(ctx, taskID)
	}
	return nil, nil
}

func (m *mockChecklistRepo) SetCompleted(ctx context.Context, id int64, completed bool, by *int64, at *time.Time) error {
	if m.setCompletedFunc != nil {
		return m.setCompletedFunc(ctx, id, completed, by, at)
	}
	return nil
}

type mockRecurrenceRunRepo struct {
	createFunc           func(ctx context.Context, run *entity.RecurrenceRun) error
	listByTemplateIDFunc func(ctx context.Context, processTemplateID int64) ([]*entity.RecurrenceRun, error)
}

func (m *mockRecurrenceRunRepo) Create(ctx context.Context, run *entity.RecurrenceRun) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, run)
	}
	return nil
}

func (m *mockRecurrenceRunRepo) ListByTemplateID(ctx context.Context, processTemplateID int64) ([]*entity.RecurrenceRun, error) {
	if m.listByTemplateIDFunc != nil {
		return m.listByTemplateIDFunc(ctx, processTemplateID)
	}
	return nil, nil
}

type mockOrderLineRepo struct {
	createFunc            func(ctx context.Context, line *entity.OrderLine) error
	listByRequestIDFunc   func(ctx context.Context, requestID int64) ([]*entity.OrderLine, error)
	updateStatusWhereFunc func(ctx context.Context, requestID int64, fromStatus, toStatus string) (int, error)
}

func (m *mockOrderLineRepo) Create(ctx context.Context, line *entity.OrderLine) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, line)
	}
	return nil
}

func (m *mockOrderLineRepo) ListByRequestID(ctx context.Context, requestID int64) ([]*entity.OrderLine, error) {
	if m.listByRequestIDFunc != nil {
		return m.listByRequestIDFunc(ctx, requestID)
	}
	return nil, nil
}

func (m *mockOrderLineRepo) UpdateStatusWhere(ctx context.Context, requestID int64, fromStatus, toStatus string) (int, error) {
	if m.updateStatusWhereFunc != nil {
		return m.updateStatusWhereFunc(ctx, requestID, fromStatus, toStatus)
	}
	return 0, nil
}

type mockAuditRepo struct {
	createFunc       func(ctx context.Context, event *entity.AuditEvent) error
	listByEntityFunc func(ctx context.Context, entityType string, entityID int64) ([]*entity.AuditEvent, error)
}

func (m *mockAuditRepo) Create(ctx context.Context, event *entity.AuditEvent) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, event)
	}
	return nil
}

func (m *mockAuditRepo) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.AuditEvent, error) {
	if m.listByEntityFunc != nil {
		return m.listByEntityFunc(ctx, entityType, entityID)
	}
	return nil, nil
}

type mockNotificationRepo struct {
	createFunc      func(ctx context.Context, notification *entity.Notification) error
	listPendingFunc func(ctx context.Context, limit int) ([]*entity.Notification, error)
	markSentFunc    func(ctx context.Context, id int64) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, notification)
	}
	return nil
}

func (m *mockNotificationRepo) ListPending(ctx context.Context, limit int) ([]*entity.Notification, error) {
	if m.listPendingFunc != nil {
		return m.listPendingFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id int64) error {
	if m.markSentFunc != nil {
		return m.markSentFunc(ctx, id)
	}
	return nil
}

// mockTxManager runs the function directly, no transaction involved
type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockResolver struct {
	resolveFunc func(ctx context.Context, processTemplateID int64, subProcessTemplateID *int64) ([]*entity.TaskTemplate, error)
}

func (m *mockResolver) Resolve(ctx context.Context, processTemplateID int64, subProcessTemplateID *int64) ([]*entity.TaskTemplate, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, processTemplateID, subProcessTemplateID)
	}
	return nil, nil
}

type mockGenerator struct {
	generateFunc func(ctx context.Context, in GenerateInput) (int, error)
}

func (m *mockGenerator) Generate(ctx context.Context, in GenerateInput) (int, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, in)
	}
	return 0, nil
}

// noopLogger discards everything
type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

func int64p(v int64) *int64 { return &v }
func intp(v int) *int       { return &v }
