package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keonhq/taskflow/internal/domain/entity"
	"github.com/keonhq/taskflow/internal/policy"
)

func TestTemplateService_Resolve_SubProcessWins(t *testing.T) {
	repo := &mockTemplateRepo{
		listTaskTemplatesBySubProcFunc: func(ctx context.Context, subID int64) ([]*entity.TaskTemplate, error) {
			assert.Equal(t, int64(7), subID)
			return []*entity.TaskTemplate{
				{ID: 1, Name: "Prepare workstation", OrderIndex: 0},
				{ID: 2, Name: "Create accounts", OrderIndex: 1},
			}, nil
		},
		listTaskTemplatesByProcessFunc: func(ctx context.Context, processID int64) ([]*entity.TaskTemplate, error) {
			t.Fatal("process-level templates should not be consulted")
			return nil, nil
		},
	}
	svc := NewTemplateService(repo, noopLogger{})

	templates, err := svc.Resolve(context.Background(), 3, int64p(7))
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "Prepare workstation", templates[0].Name)
}

func TestTemplateService_Resolve_EmptySubProcessFallsBack(t *testing.T) {
	repo := &mockTemplateRepo{
		listTaskTemplatesBySubProcFunc: func(ctx context.Context, subID int64) ([]*entity.TaskTemplate, error) {
			return nil, nil
		},
		listTaskTemplatesByProcessFunc: func(ctx context.Context, processID int64) ([]*entity.TaskTemplate, error) {
			assert.Equal(t, int64(3), processID)
			return []*entity.TaskTemplate{{ID: 9, Name: "Review contract"}}, nil
		},
	}
	svc := NewTemplateService(repo, noopLogger{})

	templates, err := svc.Resolve(context.Background(), 3, int64p(7))
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, int64(9), templates[0].ID)
}

func TestTemplateService_Resolve_NoSubProcessUsesProcess(t *testing.T) {
	repo := &mockTemplateRepo{
		listTaskTemplatesByProcessFunc: func(ctx context.Context, processID int64) ([]*entity.TaskTemplate, error) {
			return []*entity.TaskTemplate{{ID: 4}, {ID: 5}}, nil
		},
	}
	svc := NewTemplateService(repo, noopLogger{})

	templates, err := svc.Resolve(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Len(t, templates, 2)
}

func TestTemplateService_Resolve_EmptyIsValid(t *testing.T) {
	svc := NewTemplateService(&mockTemplateRepo{}, noopLogger{})

	templates, err := svc.Resolve(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestTemplateService_CanManage(t *testing.T) {
	repo := &mockTemplateRepo{
		getProcessTemplateFunc: func(ctx context.Context, id int64) (*entity.ProcessTemplate, error) {
			return &entity.ProcessTemplate{ID: id, CreatedBy: int64p(42)}, nil
		},
	}
	svc := NewTemplateService(repo, noopLogger{})

	ok, err := svc.CanManage(context.Background(), policy.Actor{ProfileID: 42}, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanManage(context.Background(), policy.Actor{ProfileID: 99}, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTemplateService_CanManage_NotFound(t *testing.T) {
	svc := NewTemplateService(&mockTemplateRepo{}, noopLogger{})

	_, err := svc.CanManage(context.Background(), policy.Actor{ProfileID: 42}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
