package employee

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/policy"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/internal/service/membership"
	"github.com/splax/shiftwatch/pkg/crypto"
	"github.com/splax/shiftwatch/pkg/ids"
	"github.com/splax/shiftwatch/pkg/text"
)

// CreateInput carries a new employee.
type CreateInput struct {
	Email             string                    `json:"email" validate:"required,email"`
	Name              string                    `json:"name" validate:"required,max=200"`
	Title             string                    `json:"title" validate:"max=200"`
	Password          string                    `json:"password" validate:"omitempty,min=6"`
	TeamID            string                    `json:"teamId"`
	Type              domain.EmployeeType       `json:"type" validate:"omitempty,oneof=personal office"`
	OrganizationID    string                    `json:"organizationId"`
	SystemPermissions *domain.SystemPermissions `json:"systemPermissions"`
	Projects          []string                  `json:"projects"`
}

// UpdateInput carries a partial employee update. Projects, when present, replaces the set.
type UpdateInput struct {
	Email             *string                   `json:"email" validate:"omitempty,email"`
	Name              *string                   `json:"name" validate:"omitempty,max=200"`
	Title             *string                   `json:"title" validate:"omitempty,max=200"`
	TeamID            *string                   `json:"teamId"`
	Type              *domain.EmployeeType      `json:"type" validate:"omitempty,oneof=personal office"`
	SystemPermissions *domain.SystemPermissions `json:"systemPermissions"`
	Projects          *[]string                 `json:"projects"`
}

var errDuplicateEmail = apperr.Conflict(http.StatusBadRequest, "Email already registered")

// Service manages employees.
type Service struct {
	repo    repository.EmployeeRepository
	teams   repository.TeamRepository
	members membership.Service
	logger  *slog.Logger
}

// New constructs a Service.
func New(repo repository.EmployeeRepository, teams repository.TeamRepository, members membership.Service, logger *slog.Logger) Service {
	return Service{repo: repo, teams: teams, members: members, logger: logger}
}

// Create invites an employee into the caller's organization and links the valid projects.
func (s Service) Create(ctx context.Context, p domain.Principal, in CreateInput) (*domain.Employee, error) {
	orgID := strings.TrimSpace(in.OrganizationID)
	if orgID == "" {
		orgID = p.OrganizationID
	}
	if err := policy.EmployeeAdmin(p, policy.Create, domain.Employee{OrganizationID: orgID}).Err(); err != nil {
		return nil, err
	}
	teamID, err := s.checkTeam(ctx, orgID, in.TeamID)
	if err != nil {
		return nil, err
	}
	kind := in.Type
	if kind == "" {
		kind = domain.EmployeePersonal
	}
	now := time.Now().UnixMilli()
	employee := &domain.Employee{
		ID:                ids.New(ids.Employee),
		Email:             text.Email(in.Email),
		Name:              text.Clean(in.Name),
		Title:             text.Clean(in.Title),
		TeamID:            teamID,
		Type:              kind,
		OrganizationID:    orgID,
		Invited:           &now,
		SystemPermissions: in.SystemPermissions,
		Projects:          []string{},
		CreatedAt:         now,
	}
	if in.Password != "" {
		hash, err := crypto.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		employee.PasswordHash = hash
	}
	if err := s.repo.CreateEmployee(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDuplicateEmail
		}
		return nil, err
	}
	if len(in.Projects) > 0 {
		applied, err := s.members.Add(ctx, orgID, domain.LinkEmployeeProjects, employee.ID, in.Projects)
		if err != nil {
			return nil, err
		}
		employee.Projects = applied
	}
	s.logger.Info("employee created", "employee_id", employee.ID, "organization_id", orgID, "by", p.ID)
	return employee, nil
}

// List returns the employees of the caller's organization.
func (s Service) List(ctx context.Context, p domain.Principal, page repository.Page) ([]domain.Employee, error) {
	if err := policy.AdminOnly(p, "Only admins can list employees").Err(); err != nil {
		return nil, err
	}
	return s.repo.ListEmployees(ctx, p.OrganizationID, page.Normalized())
}

// Get returns one employee to an admin of its organization or to the employee itself.
func (s Service) Get(ctx context.Context, p domain.Principal, id string) (*domain.Employee, error) {
	employee, err := s.repo.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, repository.Missing(err, "Employee")
	}
	if err := policy.Employee(p, policy.Read, *employee).Err(); err != nil {
		return nil, err
	}
	return employee, nil
}

// Update applies in to an employee. Only admins edit employee records.
func (s Service) Update(ctx context.Context, p domain.Principal, id string, in UpdateInput) (*domain.Employee, error) {
	employee, err := s.repo.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, repository.Missing(err, "Employee")
	}
	if err := policy.EmployeeAdmin(p, policy.Update, *employee).Err(); err != nil {
		return nil, err
	}
	if in.Email != nil {
		employee.Email = text.Email(*in.Email)
	}
	if in.Name != nil {
		employee.Name = text.Clean(*in.Name)
	}
	if in.Title != nil {
		employee.Title = text.Clean(*in.Title)
	}
	if in.Type != nil {
		employee.Type = *in.Type
	}
	if in.SystemPermissions != nil {
		employee.SystemPermissions = in.SystemPermissions
	}
	if in.TeamID != nil {
		teamID, err := s.checkTeam(ctx, employee.OrganizationID, *in.TeamID)
		if err != nil {
			return nil, err
		}
		employee.TeamID = teamID
	}
	if err := s.repo.UpdateEmployee(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDuplicateEmail
		}
		return nil, repository.Missing(err, "Employee")
	}
	if in.Projects != nil {
		applied, err := s.members.Replace(ctx, employee.OrganizationID, domain.LinkEmployeeProjects, employee.ID, *in.Projects)
		if err != nil {
			return nil, err
		}
		employee.Projects = applied
	}
	s.logger.Info("employee updated", "employee_id", employee.ID, "by", p.ID)
	return employee, nil
}

// SetPassword replaces an employee's password. Employees may set their own.
func (s Service) SetPassword(ctx context.Context, p domain.Principal, id, password string) error {
	if len(password) < 6 {
		return apperr.Validation("password", "must be at least 6 characters")
	}
	employee, err := s.repo.GetEmployeeByID(ctx, id)
	if err != nil {
		return repository.Missing(err, "Employee")
	}
	if err := policy.Employee(p, policy.Update, *employee).Err(); err != nil {
		return err
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.SetEmployeePassword(ctx, id, hash); err != nil {
		return repository.Missing(err, "Employee")
	}
	s.logger.Info("employee password set", "employee_id", id, "by", p.ID)
	return nil
}

// Deactivate marks an employee deactivated. Deactivating twice is a conflict.
func (s Service) Deactivate(ctx context.Context, p domain.Principal, id string) (*domain.Employee, error) {
	employee, err := s.repo.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, repository.Missing(err, "Employee")
	}
	if err := policy.EmployeeAdmin(p, policy.Delete, *employee).Err(); err != nil {
		return nil, err
	}
	if !employee.Active() {
		return nil, apperr.Conflict(http.StatusConflict, "Employee is already deactivated")
	}
	now := time.Now().UnixMilli()
	if err := s.repo.SetEmployeeDeactivated(ctx, id, now); err != nil {
		return nil, repository.Missing(err, "Employee")
	}
	employee.Deactivated = &now
	s.logger.Info("employee deactivated", "employee_id", id, "by", p.ID)
	return employee, nil
}

// checkTeam validates an optional team reference against the organization.
func (s Service) checkTeam(ctx context.Context, organizationID, teamID string) (string, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return "", nil
	}
	team, err := s.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		return "", repository.Missing(err, "Team")
	}
	if team.OrganizationID != organizationID {
		return "", apperr.Forbidden("Team belongs to a different organization")
	}
	return team.ID, nil
}
