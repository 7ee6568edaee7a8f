package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keonhq/taskflow/internal/domain/entity"
	"github.com/keonhq/taskflow/internal/domain/workflow"
	"github.com/keonhq/taskflow/internal/policy"
)

func pendingLevel(id, taskID int64, level int, validatorID int64) *entity.TaskValidationLevel {
	return &entity.TaskValidationLevel{
		ID:          id,
		TaskID:      taskID,
		Level:       level,
		ValidatorID: int64p(validatorID),
		Status:      entity.LevelStatusPending,
	}
}

func newValidationFixture(tasks *mockTaskRepo, validations *mockValidationRepo, audits *mockAuditRepo) *ValidationService {
	svc := NewValidationService(tasks, validations, audits, &mockNotificationRepo{}, &mockTxManager{}, noopLogger{})
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestValidationService_ValidateLevel(t *testing.T) {
	var decidedStatus string
	validations := &mockValidationRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.TaskValidationLevel, error) {
			return pendingLevel(id, 5, 1, 42), nil
		},
		decideFunc: func(ctx context.Context, id int64, status, comment string, at time.Time) (bool, error) {
			decidedStatus = status
			return true, nil
		},
	}
	tasks := &mockTaskRepo{
		updateStatusFunc: func(ctx context.Context, id int64, status string) error {
			t.Fatal("validate must not touch the parent task status")
			return nil
		},
	}
	svc := newValidationFixture(tasks, validations, &mockAuditRepo{})

	err := svc.ValidateLevel(context.Background(), 1, policy.Actor{ProfileID: 42}, "looks good")
	require.NoError(t, err)
	assert.Equal(t, entity.LevelStatusValidated, decidedStatus)
}

func TestValidationService_RefuseLevelForcesTaskRefused(t *testing.T) {
	for _, level := range []int{1, 2} {
		var taskStatus string
		validations := &mockValidationRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.TaskValidationLevel, error) {
				return pendingLevel(id, 5, level, 42), nil
			},
		}
		tasks := &mockTaskRepo{
			updateStatusFunc: func(ctx context.Context, id int64, status string) error {
				assert.Equal(t, int64(5), id)
				taskStatus = status
				return nil
			},
		}
		svc := newValidationFixture(tasks, validations, &mockAuditRepo{})

		err := svc.RefuseLevel(context.Background(), 1, policy.Actor{ProfileID: 42}, "missing budget line")
		require.NoError(t, err)
		assert.Equal(t, workflow.StateRefused.String(), taskStatus, "level %d", level)
	}
}

func TestValidationService_ConcurrentDecisionDetected(t *testing.T) {
	validations := &mockValidationRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.TaskValidationLevel, error) {
			return pendingLevel(id, 5, 1, 42), nil
		},
		decideFunc: func(ctx context.Context, id int64, status, comment string, at time.Time) (bool, error) {
			return false, nil
		},
	}
	svc := newValidationFixture(&mockTaskRepo{}, validations, &mockAuditRepo{})

	err := svc.ValidateLevel(context.Background(), 1, policy.Actor{ProfileID: 42}, "")
	assert.ErrorIs(t, err, ErrLevelAlreadyDecided)
}

func TestValidationService_UnauthorizedActor(t *testing.T) {
	validations := &mockValidationRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.TaskValidationLevel, error) {
			return pendingLevel(id, 5, 1, 42), nil
		},
	}
	svc := newValidationFixture(&mockTaskRepo{}, validations, &mockAuditRepo{})

	err := svc.ValidateLevel(context.Background(), 1, policy.Actor{ProfileID: 7}, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidationService_DepartmentValidatorMayAct(t *testing.T) {
	validations := &mockValidationRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.TaskValidationLevel, error) {
			return &entity.TaskValidationLevel{
				ID:                    id,
				TaskID:                5,
				Level:                 1,
				ValidatorDepartmentID: int64p(9),
				Status:                entity.LevelStatusPending,
			}, nil
		},
	}
	svc := newValidationFixture(&mockTaskRepo{}, validations, &mockAuditRepo{})

	err := svc.ValidateLevel(context.Background(), 1, policy.Actor{ProfileID: 7, DepartmentID: int64p(9)}, "")
	assert.NoError(t, err)
}

func TestValidationService_RequestValidation(t *testing.T) {
	var status string
	var stamped, levelSet bool
	tasks := &mockTaskRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Task, error) {
			return &entity.Task{ID: id, Status: workflow.StateInProgress.String(), RequiresValidation: true}, nil
		},
		updateStatusFunc: func(ctx context.Context, id int64, s string) error {
			status = s
			return nil
		},
		setValidationRequestedFunc: func(ctx context.Context, id int64, at time.Time) error {
			stamped = true
			return nil
		},
		setCurrentValidationLevelFunc: func(ctx context.Context, id int64, level int) error {
			levelSet = true
			assert.Equal(t, 1, level)
			return nil
		},
	}
	validations := &mockValidationRepo{
		countPendingFunc: func(ctx context.Context, taskID int64) (int, error) {
			return 2, nil
		},
	}
	svc := newValidationFixture(tasks, validations, &mockAuditRepo{})

	err := svc.RequestValidation(context.Background(), 5, policy.Actor{ProfileID: 1})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatePendingValidation1.String(), status)
	assert.True(t, stamped)
	assert.True(t, levelSet)
}

func TestValidationService_RequestValidation_NoLevels(t *testing.T) {
	tasks := &mockTaskRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Task, error) {
			return &entity.Task{ID: id, Status: workflow.StateInProgress.String()}, nil
		},
	}
	svc := newValidationFixture(tasks, &mockValidationRepo{}, &mockAuditRepo{})

	err := svc.RequestValidation(context.Background(), 5, policy.Actor{ProfileID: 1})
	assert.ErrorIs(t, err, ErrNoValidationLevels)
}

func TestValidationService_RequestValidation_IllegalFromState(t *testing.T) {
	tasks := &mockTaskRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Task, error) {
			return &entity.Task{ID: id, Status: workflow.StateDone.String()}, nil
		},
	}
	validations := &mockValidationRepo{
		countPendingFunc: func(ctx context.Context, taskID int64) (int, error) {
			return 1, nil
		},
	}
	svc := newValidationFixture(tasks, validations, &mockAuditRepo{})

	err := svc.RequestValidation(context.Background(), 5, policy.Actor{ProfileID: 1})
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestValidationService_CurrentPendingLevel(t *testing.T) {
	validations := &mockValidationRepo{
		listByTaskIDFunc: func(ctx context.Context, taskID int64) ([]*entity.TaskValidationLevel, error) {
			return []*entity.TaskValidationLevel{
				{ID: 1, TaskID: taskID, Level: 1, Status: entity.LevelStatusValidated},
				{ID: 2, TaskID: taskID, Level: 2, Status: entity.LevelStatusPending},
			}, nil
		},
	}
	svc := newValidationFixture(&mockTaskRepo{}, validations, &mockAuditRepo{})

	level, err := svc.CurrentPendingLevel(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, level)
	assert.Equal(t, 2, level.Level)
}

func TestValidationService_CurrentPendingLevel_NoneLeft(t *testing.T) {
	validations := &mockValidationRepo{
		listByTaskIDFunc: func(ctx context.Context, taskID int64) ([]*entity.TaskValidationLevel, error) {
			return []*entity.TaskValidationLevel{
				{ID: 1, TaskID: taskID, Level: 1, Status: entity.LevelStatusValidated},
			}, nil
		},
	}
	svc := newValidationFixture(&mockTaskRepo{}, validations, &mockAuditRepo{})

	level, err := svc.CurrentPendingLevel(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, level)
}

func TestValidationService_AuditTrailOnDecision(t *testing.T) {
	validations := &mockValidationRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.TaskValidationLevel, error) {
			return pendingLevel(id, 5, 1, 42), nil
		},
	}

	var event *entity.AuditEvent
	audits := &mockAuditRepo{
		createFunc: func(ctx context.Context, e *entity.AuditEvent) error {
			event = e
			return nil
		},
	}
	svc := newValidationFixture(&mockTaskRepo{}, validations, audits)

	err := svc.RefuseLevel(context.Background(), 1, policy.Actor{ProfileID: 42}, "rejected")
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, entity.AuditActionLevelRefused, event.Action)
	assert.Equal(t, "rejected", event.Details)
}
