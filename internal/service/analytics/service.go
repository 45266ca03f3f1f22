// Package analytics projects completed shifts into per-shift time rows.
package analytics

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/internal/service/membership"
)

// ProjectTimeQuery bounds and filters a project time report. Times are epoch milliseconds.
type ProjectTimeQuery struct {
	Begin      int64
	End        int64
	EmployeeID string
	TeamID     string
	ProjectID  string
	TaskID     string
	ShiftID    string
}

// NameLookup resolves display names in bulk; unknown ids are omitted from the result.
type NameLookup interface {
	ProjectNames(ctx context.Context, ids []string) (map[string]string, error)
	TaskNames(ctx context.Context, ids []string) (map[string]string, error)
	EmployeeNames(ctx context.Context, ids []string) (map[string]string, error)
}

type names struct {
	projects  repository.ProjectRepository
	tasks     repository.TaskRepository
	employees repository.EmployeeRepository
}

func (n names) ProjectNames(ctx context.Context, ids []string) (map[string]string, error) {
	return n.projects.ProjectNames(ctx, ids)
}

func (n names) TaskNames(ctx context.Context, ids []string) (map[string]string, error) {
	return n.tasks.TaskNames(ctx, ids)
}

func (n names) EmployeeNames(ctx context.Context, ids []string) (map[string]string, error) {
	return n.employees.EmployeeNames(ctx, ids)
}

// Service builds time reports.
type Service struct {
	shifts  repository.ShiftRepository
	names   NameLookup
	members membership.Service
	logger  *slog.Logger
}

// New constructs a Service.
func New(shifts repository.ShiftRepository, projects repository.ProjectRepository, tasks repository.TaskRepository, employees repository.EmployeeRepository, members membership.Service, logger *slog.Logger) Service {
	return Service{shifts: shifts, names: names{projects: projects, tasks: tasks, employees: employees}, members: members, logger: logger}
}

// ProjectTime returns one row per completed shift inside the range that carries a project.
// Admins see their organization, employees only their own shifts. Rows are not summed.
// A filter naming another organization's entity is Forbidden.
func (s Service) ProjectTime(ctx context.Context, p domain.Principal, q ProjectTimeQuery) ([]domain.ProjectTimeRow, error) {
	filters := []struct {
		kind domain.EntityKind
		id   string
	}{
		{domain.EntityEmployee, q.EmployeeID},
		{domain.EntityTeam, q.TeamID},
		{domain.EntityProject, q.ProjectID},
		{domain.EntityTask, q.TaskID},
		{domain.EntityShift, q.ShiftID},
	}
	for _, f := range filters {
		if err := s.members.RequireOwned(ctx, p, f.kind, f.id); err != nil {
			return nil, err
		}
	}
	shifts, err := s.shifts.CompletedShifts(ctx, repository.ShiftRangeQuery{
		Scope:            repository.ScopeFor(p),
		Begin:            q.Begin,
		End:              q.End,
		FilterEmployeeID: q.EmployeeID,
		TeamID:           q.TeamID,
		ProjectID:        q.ProjectID,
		TaskID:           q.TaskID,
		ShiftID:          q.ShiftID,
	})
	if err != nil {
		return nil, fmt.Errorf("load shifts: %w", err)
	}

	var projectIDs, taskIDs, employeeIDs []string
	for _, sh := range shifts {
		if sh.ProjectID == "" {
			continue
		}
		projectIDs = append(projectIDs, sh.ProjectID)
		employeeIDs = append(employeeIDs, sh.EmployeeID)
		if sh.TaskID != "" {
			taskIDs = append(taskIDs, sh.TaskID)
		}
	}
	projectNames, err := s.names.ProjectNames(ctx, unique(projectIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve project names: %w", err)
	}
	taskNames, err := s.names.TaskNames(ctx, unique(taskIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve task names: %w", err)
	}
	employeeNames, err := s.names.EmployeeNames(ctx, unique(employeeIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve employee names: %w", err)
	}
	rows := buildProjectTime(shifts, projectNames, taskNames, employeeNames)
	s.logger.Debug("project time computed", "principal_id", p.ID, "shifts", len(shifts), "rows", len(rows))
	return rows, nil
}

// buildProjectTime projects shifts into rows, applying placeholders for names that did not resolve.
func buildProjectTime(shifts []domain.Shift, projects, tasks, employees map[string]string) []domain.ProjectTimeRow {
	rows := make([]domain.ProjectTimeRow, 0, len(shifts))
	for _, sh := range shifts {
		if sh.ProjectID == "" || sh.End == nil {
			continue
		}
		row := domain.ProjectTimeRow{
			ProjectID:    sh.ProjectID,
			ProjectName:  domain.UnknownProjectName,
			EmployeeID:   sh.EmployeeID,
			EmployeeName: domain.UnknownEmployeeName,
			Time:         sh.Duration(),
			Date:         sh.Start,
		}
		if name, ok := projects[sh.ProjectID]; ok {
			row.ProjectName = name
		}
		if name, ok := employees[sh.EmployeeID]; ok {
			row.EmployeeName = name
		}
		if sh.TaskID != "" {
			taskID := sh.TaskID
			row.TaskID = &taskID
			if name, ok := tasks[taskID]; ok {
				row.TaskName = &name
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
