package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keonhq/taskflow/internal/domain/entity"
)

func dueTemplate(id int64, name string) *entity.ProcessTemplate {
	return &entity.ProcessTemplate{
		ID:                  id,
		Name:                name,
		RecurrenceEnabled:   true,
		RecurrenceInterval:  1,
		RecurrenceUnit:      entity.RecurrenceUnitMonth,
		RecurrenceDelayDays: 5,
	}
}

func TestRecurrenceService_SweepSuccess(t *testing.T) {
	now := time.Date(2025, 2, 1, 6, 0, 0, 0, time.UTC)

	template := dueTemplate(1, "Monthly inventory")
	template.TitlePattern = "{process} - {date}"
	template.Category = "Logistique"
	template.Subcategory = "Inventaire"

	templates := &mockTemplateRepo{
		listDueRecurringFunc: func(ctx context.Context, at time.Time) ([]*entity.ProcessTemplate, error) {
			return []*entity.ProcessTemplate{template}, nil
		},
		updateNextRunAtFunc: func(ctx context.Context, id int64, next time.Time) error {
			assert.Equal(t, time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC), next)
			return nil
		},
	}

	var request *entity.Task
	tasks := &mockTaskRepo{
		createFunc: func(ctx context.Context, task *entity.Task) error {
			task.ID = 55
			request = task
			return nil
		},
	}

	var run *entity.RecurrenceRun
	runs := &mockRecurrenceRunRepo{
		createFunc: func(ctx context.Context, r *entity.RecurrenceRun) error {
			run = r
			return nil
		},
	}
	var audit *entity.AuditEvent
	audits := &mockAuditRepo{
		createFunc: func(ctx context.Context, event *entity.AuditEvent) error {
			audit = event
			return nil
		},
	}
	svc := NewRecurrenceService(tasks, templates, runs, audits, &mockTxManager{}, noopLogger{})

	summary, err := svc.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, entity.RunStatusSuccess, summary.Results[0].Status)
	require.NotNil(t, summary.Results[0].RequestID)
	assert.Equal(t, int64(55), *summary.Results[0].RequestID)

	require.NotNil(t, request)
	assert.Equal(t, entity.TypeRequest, request.Type)
	assert.Equal(t, "Monthly inventory - 2025-02-01", request.Title)
	assert.Equal(t, "Logistique", request.Category)
	assert.Equal(t, "Inventaire", request.Subcategory)
	require.NotNil(t, request.DueDate)
	assert.Equal(t, now.AddDate(0, 0, 5), *request.DueDate)

	require.NotNil(t, run)
	assert.Equal(t, entity.RunStatusSuccess, run.Status)
	assert.Equal(t, now, run.ScheduledAt)

	require.NotNil(t, audit)
	assert.Equal(t, entity.AuditEntityProcessTemplate, audit.EntityType)
	assert.Equal(t, int64(1), audit.EntityID)
	assert.Equal(t, entity.AuditActionRecurrenceCreated, audit.Action)
}

func TestRecurrenceService_TitleFallsBackToName(t *testing.T) {
	now := time.Date(2025, 2, 1, 6, 0, 0, 0, time.UTC)

	templates := &mockTemplateRepo{
		listDueRecurringFunc: func(ctx context.Context, at time.Time) ([]*entity.ProcessTemplate, error) {
			return []*entity.ProcessTemplate{dueTemplate(1, "Safety review")}, nil
		},
	}

	var request *entity.Task
	tasks := &mockTaskRepo{
		createFunc: func(ctx context.Context, task *entity.Task) error {
			request = task
			return nil
		},
	}
	svc := NewRecurrenceService(tasks, templates, &mockRecurrenceRunRepo{}, &mockAuditRepo{}, &mockTxManager{}, noopLogger{})

	_, err := svc.Run(context.Background(), now)
	require.NoError(t, err)
	require.NotNil(t, request)
	assert.Equal(t, "Safety review", request.Title)
}

func TestRecurrenceService_FailureIsolation(t *testing.T) {
	now := time.Date(2025, 2, 1, 6, 0, 0, 0, time.UTC)

	templates := &mockTemplateRepo{
		listDueRecurringFunc: func(ctx context.Context, at time.Time) ([]*entity.ProcessTemplate, error) {
			return []*entity.ProcessTemplate{
				dueTemplate(1, "Healthy"),
				dueTemplate(2, "Broken"),
			}, nil
		},
	}
	tasks := &mockTaskRepo{
		createFunc: func(ctx context.Context, task *entity.Task) error {
			if task.Title == "Broken" {
				return errors.New("insert rejected")
			}
			task.ID = 10
			return nil
		},
	}

	var runsByTemplate = map[int64]*entity.RecurrenceRun{}
	runs := &mockRecurrenceRunRepo{
		createFunc: func(ctx context.Context, r *entity.RecurrenceRun) error {
			runsByTemplate[r.ProcessTemplateID] = r
			return nil
		},
	}
	svc := NewRecurrenceService(tasks, templates, runs, &mockAuditRepo{}, &mockTxManager{}, noopLogger{})

	summary, err := svc.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)

	require.Len(t, summary.Results, 2)
	assert.Equal(t, entity.RunStatusSuccess, summary.Results[0].Status)
	assert.Equal(t, entity.RunStatusError, summary.Results[1].Status)
	assert.NotEmpty(t, summary.Results[1].Error)

	require.Contains(t, runsByTemplate, int64(1))
	assert.Equal(t, entity.RunStatusSuccess, runsByTemplate[1].Status)
	require.Contains(t, runsByTemplate, int64(2))
	assert.Equal(t, entity.RunStatusError, runsByTemplate[2].Status)
	assert.NotEmpty(t, runsByTemplate[2].ErrorMessage)
}

func TestRecurrenceService_BadRecurrenceUnitRecordsError(t *testing.T) {
	now := time.Date(2025, 2, 1, 6, 0, 0, 0, time.UTC)

	template := dueTemplate(1, "Misconfigured")
	template.RecurrenceUnit = "fortnight"

	templates := &mockTemplateRepo{
		listDueRecurringFunc: func(ctx context.Context, at time.Time) ([]*entity.ProcessTemplate, error) {
			return []*entity.ProcessTemplate{template}, nil
		},
	}
	tasks := &mockTaskRepo{
		createFunc: func(ctx context.Context, task *entity.Task) error {
			t.Fatal("no request should be created for a misconfigured template")
			return nil
		},
	}
	svc := NewRecurrenceService(tasks, templates, &mockRecurrenceRunRepo{}, &mockAuditRepo{}, &mockTxManager{}, noopLogger{})

	summary, err := svc.Run(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, entity.RunStatusError, summary.Results[0].Status)
}
