package project

import (
	"context"
	"strings"
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

// CreateInput encapsulates project creation attributes.
type CreateInput struct {
	Name               string                     `json:"name" validate:"required,max=200"`
	Description        string                     `json:"description" validate:"max=5000"`
	Billable           *bool                      `json:"billable"`
	OrganizationID     string                     `json:"organizationId"`
	Statuses           []string                   `json:"statuses" validate:"omitempty,dive,max=100"`
	Priorities         []string                   `json:"priorities" validate:"omitempty,dive,max=100"`
	Payroll            *domain.Payroll            `json:"payroll"`
	ScreenshotSettings *domain.ScreenshotSettings `json:"screenshotSettings"`
	Employees          []string                   `json:"employees"`
	Teams              []string                   `json:"teams"`
}

// UpdateInput carries a partial project update. Employees and Teams, when present, replace the sets.
type UpdateInput struct {
	Name               *string                    `json:"name" validate:"omitempty,max=200"`
	Description        *string                    `json:"description" validate:"omitempty,max=5000"`
	Billable           *bool                      `json:"billable"`
	Archived           *bool                      `json:"archived"`
	Statuses           *[]string                  `json:"statuses"`
	Priorities         *[]string                  `json:"priorities"`
	Payroll            *domain.Payroll            `json:"payroll"`
	ScreenshotSettings *domain.ScreenshotSettings `json:"screenshotSettings"`
	Employees          *[]string                  `json:"employees"`
	Teams              *[]string                  `json:"teams"`
}

// Service orchestrates project management.
type Service struct {
	projects repository.ProjectRepository
	members  membership.Service
	logger   *slog.Logger
}

// New returns a project service.
func New(projects repository.ProjectRepository, members membership.Service, logger *slog.Logger) Service {
	return Service{projects: projects, members: members, logger: logger}
}

// Create registers a new project and links the valid employees and teams.
func (s Service) Create(ctx context.Context, p domain.Principal, in CreateInput) (*domain.Project, error) {
	orgID := strings.TrimSpace(in.OrganizationID)
	if orgID == "" {
		orgID = p.OrganizationID
	}
	if err := policy.Project(p, policy.Create, domain.Project{OrganizationID: orgID}).Err(); err != nil {
		return nil, err
	}
	name := text.Clean(in.Name)
	if name == "" {
		return nil, apperr.Validation("name", "project name is required")
	}
	project := &domain.Project{
		ID:                 ids.New(ids.Project),
		Name:               name,
		Description:        text.Clean(in.Description),
		OrganizationID:     orgID,
		CreatorID:          p.ID,
		Billable:           in.Billable == nil || *in.Billable,
		Statuses:           orDefault(in.Statuses, domain.DefaultProjectStatuses),
		Priorities:         orDefault(in.Priorities, domain.DefaultProjectPriorities),
		Payroll:            in.Payroll,
		ScreenshotSettings: domain.ScreenshotSettings{ScreenshotEnabled: true},
		Employees:          []string{},
		Teams:              []string{},
		CreatedAt:          time.Now().UnixMilli(),
	}
	if in.ScreenshotSettings != nil {
		project.ScreenshotSettings = *in.ScreenshotSettings
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	var err error
	if len(in.Employees) > 0 {
		if project.Employees, err = s.members.Add(ctx, orgID, domain.LinkProjectEmployees, project.ID, in.Employees); err != nil {
			return nil, err
		}
	}
	if len(in.Teams) > 0 {
		if project.Teams, err = s.members.Add(ctx, orgID, domain.LinkProjectTeams, project.ID, in.Teams); err != nil {
			return nil, err
		}
	}
	s.logger.Info("project created", "project_id", project.ID, "organization_id", orgID)
	return project, nil
}

// List returns every organization project to admins and the visible ones to employees.
func (s Service) List(ctx context.Context, p domain.Principal, page repository.Page) ([]domain.Project, error) {
	q := repository.ProjectQuery{OrganizationID: p.OrganizationID, Page: page.Normalized()}
	if !p.IsAdmin() {
		q.MemberID = p.ID
		q.MemberTeamID = p.TeamID
	}
	return s.projects.ListProjects(ctx, q)
}

// Get returns project details by identifier.
func (s Service) Get(ctx context.Context, p domain.Principal, id string) (*domain.Project, error) {
	project, err := s.projects.GetProjectByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, repository.Missing(err, "Project")
	}
	if err := policy.Project(p, policy.Read, *project).Err(); err != nil {
		return nil, err
	}
	return project, nil
}

// Update applies in to a project.
func (s Service) Update(ctx context.Context, p domain.Principal, id string, in UpdateInput) (*domain.Project, error) {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return nil, repository.Missing(err, "Project")
	}
	if err := policy.Project(p, policy.Update, *project).Err(); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := text.Clean(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name", "project name is required")
		}
		project.Name = name
	}
	if in.Description != nil {
		project.Description = text.Clean(*in.Description)
	}
	if in.Billable != nil {
		project.Billable = *in.Billable
	}
	if in.Archived != nil {
		project.Archived = *in.Archived
	}
	if in.Statuses != nil {
		project.Statuses = orDefault(*in.Statuses, domain.DefaultProjectStatuses)
	}
	if in.Priorities != nil {
		project.Priorities = orDefault(*in.Priorities, domain.DefaultProjectPriorities)
	}
	if in.Payroll != nil {
		project.Payroll = in.Payroll
	}
	if in.ScreenshotSettings != nil {
		project.ScreenshotSettings = *in.ScreenshotSettings
	}
	if err := s.projects.UpdateProject(ctx, project); err != nil {
		return nil, repository.Missing(err, "Project")
	}
	if in.Employees != nil {
		if project.Employees, err = s.members.Replace(ctx, project.OrganizationID, domain.LinkProjectEmployees, project.ID, *in.Employees); err != nil {
			return nil, err
		}
	}
	if in.Teams != nil {
		if project.Teams, err = s.members.Replace(ctx, project.OrganizationID, domain.LinkProjectTeams, project.ID, *in.Teams); err != nil {
			return nil, err
		}
	}
	s.logger.Info("project updated", "project_id", project.ID, "by", p.ID)
	return project, nil
}

// Delete removes a project together with its tasks.
func (s Service) Delete(ctx context.Context, p domain.Principal, id string) (*domain.Project, error) {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return nil, repository.Missing(err, "Project")
	}
	if err := policy.Project(p, policy.Delete, *project).Err(); err != nil {
		return nil, err
	}
	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return nil, repository.Missing(err, "Project")
	}
	s.logger.Info("project deleted", "project_id", id, "by", p.ID)
	return project, nil
}

func orDefault(values, fallback []string) []string {
	cleaned := text.CleanAll(values)
	if len(cleaned) == 0 {
		return append([]string(nil), fallback...)
	}
	return cleaned
}
