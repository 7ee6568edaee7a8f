package service

import (
	"context"
	"fmt"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/domain/entity"
	"github.com/keonhq/taskflow/internal/policy"
)

// TemplateService resolves task templates for request generation and answers
// template management policy questions.
type TemplateService struct {
	templates port.TemplateRepository
	logger    Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(templates port.TemplateRepository, logger Logger) *TemplateService {
	return &TemplateService{
		templates: templates,
		logger:    logger,
	}
}

// Resolve returns the ordered task templates seeding a new request. When a
// sub-process id is given its templates win; an empty sub-process set falls
// back to the templates attached directly to the process. An empty result is
// valid, not an error.
func (s *TemplateService) Resolve(ctx context.Context, processTemplateID int64, subProcessTemplateID *int64) ([]*entity.TaskTemplate, error) {
	if subProcessTemplateID != nil {
		templates, err := s.templates.ListTaskTemplatesBySubProcess(ctx, *subProcessTemplateID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve sub-process templates: %w", err)
		}
		if len(templates) > 0 {
			return templates, nil
		}
	}

	templates, err := s.templates.ListTaskTemplatesByProcess(ctx, processTemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve process templates: %w", err)
	}
	return templates, nil
}

// GetProcessTemplate retrieves a process template by id
func (s *TemplateService) GetProcessTemplate(ctx context.Context, id int64) (*entity.ProcessTemplate, error) {
	template, err := s.templates.GetProcessTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrNotFound
	}
	return template, nil
}

// CanManage reports whether the actor may edit the given process template
func (s *TemplateService) CanManage(ctx context.Context, actor policy.Actor, templateID int64) (bool, error) {
	template, err := s.templates.GetProcessTemplate(ctx, templateID)
	if err != nil {
		return false, err
	}
	if template == nil {
		return false, ErrNotFound
	}
	return policy.CanManageTemplate(actor, template.CreatedBy), nil
}
