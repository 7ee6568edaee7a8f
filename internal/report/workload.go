// Package report builds the team workload export.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/domain/entity"
)

const workloadSheet = "Workload"

// WorkloadReporter exports open tasks grouped by department and assignee to
// an Excel workbook.
type WorkloadReporter struct {
	tasks    port.TaskRepository
	profiles port.ProfileRepository
	logger   *zap.Logger
}

// NewWorkloadReporter creates a new workload reporter
func NewWorkloadReporter(tasks port.TaskRepository, profiles port.ProfileRepository, logger *zap.Logger) *WorkloadReporter {
	return &WorkloadReporter{
		tasks:    tasks,
		profiles: profiles,
		logger:   logger,
	}
}

// Build assembles the workbook of open tasks. Rows are ordered by
// department, then assignee, then due date.
func (r *WorkloadReporter) Build(ctx context.Context) (*excelize.File, error) {
	tasks, err := r.tasks.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load open tasks: %w", err)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		di, dj := derefOr(tasks[i].TargetDepartmentID, 0), derefOr(tasks[j].TargetDepartmentID, 0)
		if di != dj {
			return di < dj
		}
		ai, aj := derefOr(tasks[i].AssigneeID, 0), derefOr(tasks[j].AssigneeID, 0)
		if ai != aj {
			return ai < aj
		}
		if tasks[i].DueDate == nil {
			return false
		}
		if tasks[j].DueDate == nil {
			return true
		}
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), workloadSheet)

	headers := []string{"Department", "Assignee", "Reference", "Title", "Type", "Status", "Priority", "Due date"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(workloadSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	departments := map[int64]string{}
	assignees := map[int64]string{}

	for row, task := range tasks {
		values := []interface{}{
			r.departmentName(ctx, departments, task.TargetDepartmentID),
			r.assigneeName(ctx, assignees, task.AssigneeID),
			task.Reference,
			task.Title,
			task.Type,
			task.Status,
			task.Priority,
			dueDateString(task),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(workloadSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	r.logger.Info("Workload report built", zap.Int("tasks", len(tasks)))
	return f, nil
}

func (r *WorkloadReporter) departmentName(ctx context.Context, cache map[int64]string, id *int64) string {
	if id == nil {
		return "Unassigned"
	}
	if name, ok := cache[*id]; ok {
		return name
	}

	name := fmt.Sprintf("Department %d", *id)
	if dept, err := r.profiles.GetDepartment(ctx, *id); err == nil && dept != nil {
		name = dept.Name
	}
	cache[*id] = name
	return name
}

func (r *WorkloadReporter) assigneeName(ctx context.Context, cache map[int64]string, id *int64) string {
	if id == nil {
		return "Pending assignment"
	}
	if name, ok := cache[*id]; ok {
		return name
	}

	name := fmt.Sprintf("Profile %d", *id)
	if profile, err := r.profiles.GetByID(ctx, *id); err == nil && profile != nil {
		name = profile.FullName
	}
	cache[*id] = name
	return name
}

func dueDateString(task *entity.Task) string {
	if task.DueDate == nil {
		return ""
	}
	return task.DueDate.Format("2006-01-02")
}

func derefOr(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}
	return *v
}
