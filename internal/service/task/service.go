package task

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/policy"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/internal/service/membership"
	"github.com/splax/shiftwatch/pkg/ids"
	"github.com/splax/shiftwatch/pkg/text"
)

// CreateInput carries a new task.
type CreateInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	ProjectID   string   `json:"projectId" validate:"required"`
	Status      string   `json:"status" validate:"max=100"`
	Priority    string   `json:"priority" validate:"max=100"`
	Billable    *bool    `json:"billable"`
	Deadline    *int64   `json:"deadline" validate:"omitempty,gte=0"`
	Labels      []string `json:"labels" validate:"omitempty,dive,max=100"`
	Employees   []string `json:"employees"`
	Teams       []string `json:"teams"`
}

// UpdateInput carries a partial task update. Employees, when present, replaces the set.
type UpdateInput struct {
	Name        *string   `json:"name" validate:"omitempty,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Status      *string   `json:"status" validate:"omitempty,max=100"`
	Priority    *string   `json:"priority" validate:"omitempty,max=100"`
	Billable    *bool     `json:"billable"`
	Deadline    *int64    `json:"deadline" validate:"omitempty,gte=0"`
	Labels      *[]string `json:"labels"`
	Employees   *[]string `json:"employees"`
}

// ListQuery filters a task listing.
type ListQuery struct {
	ProjectID string
	repository.Page
}

// Service manages tasks inside projects.
type Service struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	members  membership.Service
	logger   *slog.Logger
}

// New constructs a Service.
func New(tasks repository.TaskRepository, projects repository.ProjectRepository, members membership.Service, logger *slog.Logger) Service {
	return Service{tasks: tasks, projects: projects, members: members, logger: logger}
}

// Create adds a task to a project the caller can work in. The caller becomes its creator.
func (s Service) Create(ctx context.Context, p domain.Principal, in CreateInput) (*domain.Task, error) {
	project, err := s.projects.GetProjectByID(ctx, in.ProjectID)
	if err != nil {
		return nil, repository.Missing(err, "Project")
	}
	candidate := domain.Task{OrganizationID: project.OrganizationID, ProjectID: project.ID}
	if err := policy.Task(p, policy.Create, candidate, project).Err(); err != nil {
		return nil, err
	}
	name := text.Clean(in.Name)
	if name == "" {
		return nil, apperr.Validation("name", "task name is required")
	}
	task := &domain.Task{
		ID:             ids.New(ids.Task),
		Name:           name,
		Description:    text.Clean(in.Description),
		ProjectID:      project.ID,
		OrganizationID: project.OrganizationID,
		CreatorID:      p.ID,
		Status:         valueOr(in.Status, domain.DefaultTaskStatus),
		Priority:       valueOr(in.Priority, domain.DefaultTaskPriority),
		Billable:       in.Billable == nil || *in.Billable,
		Deadline:       in.Deadline,
		Labels:         labels(in.Labels),
		Employees:      []string{},
		Teams:          []string{},
		CreatedAt:      time.Now().UnixMilli(),
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, repository.Missing(err, "Project")
	}
	if len(in.Employees) > 0 {
		if task.Employees, err = s.members.Add(ctx, project.OrganizationID, domain.LinkTaskEmployees, task.ID, in.Employees); err != nil {
			return nil, err
		}
	}
	if len(in.Teams) > 0 {
		if task.Teams, err = s.members.Add(ctx, project.OrganizationID, domain.LinkTaskTeams, task.ID, in.Teams); err != nil {
			return nil, err
		}
	}
	s.logger.Info("task created", "task_id", task.ID, "project_id", project.ID, "creator_id", p.ID)
	return task, nil
}

// List returns organization tasks to admins and assigned or project-visible tasks to employees.
func (s Service) List(ctx context.Context, p domain.Principal, q ListQuery) ([]domain.Task, error) {
	query := repository.TaskQuery{OrganizationID: p.OrganizationID, ProjectID: q.ProjectID, Page: q.Page.Normalized()}
	if !p.IsAdmin() {
		query.MemberID = p.ID
		query.MemberTeamID = p.TeamID
	}
	return s.tasks.ListTasks(ctx, query)
}

// Get returns one task.
func (s Service) Get(ctx context.Context, p domain.Principal, id string) (*domain.Task, error) {
	task, parent, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Task(p, policy.Read, *task, parent).Err(); err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies in to a task.
func (s Service) Update(ctx context.Context, p domain.Principal, id string, in UpdateInput) (*domain.Task, error) {
	task, parent, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Task(p, policy.Update, *task, parent).Err(); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := text.Clean(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name", "task name is required")
		}
		task.Name = name
	}
	if in.Description != nil {
		task.Description = text.Clean(*in.Description)
	}
	if in.Status != nil {
		task.Status = valueOr(*in.Status, task.Status)
	}
	if in.Priority != nil {
		task.Priority = valueOr(*in.Priority, task.Priority)
	}
	if in.Billable != nil {
		task.Billable = *in.Billable
	}
	if in.Deadline != nil {
		task.Deadline = in.Deadline
	}
	if in.Labels != nil {
		task.Labels = labels(*in.Labels)
	}
	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		return nil, repository.Missing(err, "Task")
	}
	if in.Employees != nil {
		if task.Employees, err = s.members.Replace(ctx, task.OrganizationID, domain.LinkTaskEmployees, task.ID, *in.Employees); err != nil {
			return nil, err
		}
	}
	s.logger.Info("task updated", "task_id", task.ID, "by", p.ID)
	return task, nil
}

// Delete removes a task. Employees may only delete tasks they created.
func (s Service) Delete(ctx context.Context, p domain.Principal, id string) (*domain.Task, error) {
	task, parent, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Task(p, policy.Delete, *task, parent).Err(); err != nil {
		return nil, err
	}
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return nil, repository.Missing(err, "Task")
	}
	s.logger.Info("task deleted", "task_id", id, "by", p.ID)
	return task, nil
}

// load fetches a task with its parent project; the project may be gone.
func (s Service) load(ctx context.Context, id string) (*domain.Task, *domain.Project, error) {
	task, err := s.tasks.GetTaskByID(ctx, id)
	if err != nil {
		return nil, nil, repository.Missing(err, "Task")
	}
	project, err := s.projects.GetProjectByID(ctx, task.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return task, nil, nil
		}
		return nil, nil, err
	}
	return task, project, nil
}

func valueOr(value, fallback string) string {
	if v := text.Clean(value); v != "" {
		return v
	}
	return fallback
}

func labels(values []string) []string {
	out := text.CleanAll(values)
	if out == nil {
		return []string{}
	}
	return out
}
