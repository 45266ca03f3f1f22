package shift

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/policy"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/internal/service/activity"
	"github.com/splax/shiftwatch/pkg/ids"
	"github.com/splax/shiftwatch/pkg/text"
)

// CreateInput carries a new shift as reported by an agent or an admin.
type CreateInput struct {
	Type            domain.ShiftType `json:"type" validate:"omitempty,oneof=manual automated scheduled leave"`
	Start           int64            `json:"start" validate:"required,gt=0"`
	End             *int64           `json:"end" validate:"omitempty,gt=0"`
	TimezoneOffset  int64            `json:"timezoneOffset"`
	EmployeeID      string           `json:"employeeId"`
	ProjectID       string           `json:"projectId"`
	TaskID          string           `json:"taskId"`
	Name            string           `json:"name" validate:"max=200"`
	Paid            *bool            `json:"paid"`
	PayRate         float64          `json:"payRate" validate:"gte=0"`
	OvertimePayRate float64          `json:"overtimePayRate" validate:"gte=0"`
	OvertimeStart   *int64           `json:"overtimeStart"`
	domain.Device
}

// UpdateInput closes a shift or reassigns its project and task.
type UpdateInput struct {
	End       *int64  `json:"end" validate:"omitempty,gt=0"`
	ProjectID *string `json:"projectId"`
	TaskID    *string `json:"taskId"`
}

// ListQuery filters a shift listing.
type ListQuery struct {
	EmployeeID string
	ProjectID  string
	TaskID     string
	repository.Page
}

// Service records tracked time.
type Service struct {
	shifts    repository.ShiftRepository
	employees repository.EmployeeRepository
	projects  repository.ProjectRepository
	tasks     repository.TaskRepository
	activity  activity.Publisher
	logger    *slog.Logger
}

// New constructs a Service.
func New(shifts repository.ShiftRepository, employees repository.EmployeeRepository, projects repository.ProjectRepository, tasks repository.TaskRepository, publisher activity.Publisher, logger *slog.Logger) Service {
	return Service{shifts: shifts, employees: employees, projects: projects, tasks: tasks, activity: publisher, logger: logger}
}

// Create starts a shift. Employees record only their own time; admins record for employees of their organization.
func (s Service) Create(ctx context.Context, p domain.Principal, in CreateInput) (*domain.Shift, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" && p.IsEmployee() {
		employeeID = p.ID
	}
	if employeeID == "" {
		return nil, apperr.Validation("employeeId", "employee id is required")
	}
	employee, err := s.employees.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if p.IsAdmin() {
			return nil, policy.Deny("Not enough permissions to create shift for this employee").Err()
		}
		return nil, policy.Deny("Cannot create shift for another employee").Err()
	}
	if err := policy.TrackFor(p, *employee, "shift").Err(); err != nil {
		return nil, err
	}
	if in.End != nil && *in.End < in.Start {
		return nil, apperr.Validation("end", "end must not be before start")
	}
	if err := s.checkAssignment(ctx, p, in.ProjectID, in.TaskID); err != nil {
		return nil, err
	}
	kind := in.Type
	if kind == "" {
		kind = domain.ShiftManual
	}
	shift := &domain.Shift{
		ID:              ids.New(ids.Shift),
		Type:            kind,
		Start:           in.Start,
		End:             in.End,
		TimezoneOffset:  in.TimezoneOffset,
		Name:            text.Clean(in.Name),
		EmployeeID:      employee.ID,
		TeamID:          employee.TeamID,
		OrganizationID:  employee.OrganizationID,
		ProjectID:       strings.TrimSpace(in.ProjectID),
		TaskID:          strings.TrimSpace(in.TaskID),
		Paid:            in.Paid == nil || *in.Paid,
		PayRate:         in.PayRate,
		OvertimePayRate: in.OvertimePayRate,
		OvertimeStart:   in.OvertimeStart,
		Device:          in.Device,
	}
	if err := s.shifts.CreateShift(ctx, shift); err != nil {
		return nil, err
	}
	s.logger.Info("shift created", "shift_id", shift.ID, "employee_id", shift.EmployeeID, "project_id", shift.ProjectID)
	s.publish(domain.ActivityShiftStarted, shift, shift.Start)
	if shift.End != nil {
		s.publish(domain.ActivityShiftEnded, shift, *shift.End)
	}
	return shift, nil
}

// List returns shifts in the caller's scope, newest first.
func (s Service) List(ctx context.Context, p domain.Principal, q ListQuery) ([]domain.Shift, error) {
	return s.shifts.ListShifts(ctx, repository.ShiftQuery{
		Scope:            repository.ScopeFor(p),
		FilterEmployeeID: q.EmployeeID,
		ProjectID:        q.ProjectID,
		TaskID:           q.TaskID,
		Page:             q.Page.Normalized(),
	})
}

// Get returns one shift.
func (s Service) Get(ctx context.Context, p domain.Principal, id string) (*domain.Shift, error) {
	shift, err := s.shifts.GetShiftByID(ctx, id)
	if err != nil {
		return nil, repository.Missing(err, "Shift")
	}
	if err := policy.Shift(p, policy.Read, *shift).Err(); err != nil {
		return nil, err
	}
	return shift, nil
}

// Update closes a shift or moves it to another project or task.
func (s Service) Update(ctx context.Context, p domain.Principal, id string, in UpdateInput) (*domain.Shift, error) {
	shift, err := s.shifts.GetShiftByID(ctx, id)
	if err != nil {
		return nil, repository.Missing(err, "Shift")
	}
	if err := policy.Shift(p, policy.Update, *shift).Err(); err != nil {
		return nil, err
	}
	wasOpen := shift.Open()
	if in.End != nil {
		if *in.End < shift.Start {
			return nil, apperr.Validation("end", "end must not be before start")
		}
		shift.End = in.End
	}
	projectID, taskID := shift.ProjectID, shift.TaskID
	if in.ProjectID != nil {
		projectID = strings.TrimSpace(*in.ProjectID)
	}
	if in.TaskID != nil {
		taskID = strings.TrimSpace(*in.TaskID)
	}
	if projectID != shift.ProjectID || taskID != shift.TaskID {
		if err := s.checkAssignment(ctx, p, projectID, taskID); err != nil {
			return nil, err
		}
		shift.ProjectID, shift.TaskID = projectID, taskID
	}
	if err := s.shifts.UpdateShift(ctx, shift); err != nil {
		return nil, repository.Missing(err, "Shift")
	}
	s.logger.Info("shift updated", "shift_id", shift.ID, "by", p.ID)
	if wasOpen && !shift.Open() {
		s.publish(domain.ActivityShiftEnded, shift, *shift.End)
	}
	return shift, nil
}

// Delete removes a shift and its screenshots.
func (s Service) Delete(ctx context.Context, p domain.Principal, id string) error {
	shift, err := s.shifts.GetShiftByID(ctx, id)
	if err != nil {
		return repository.Missing(err, "Shift")
	}
	if err := policy.Shift(p, policy.Delete, *shift).Err(); err != nil {
		return err
	}
	if err := s.shifts.DeleteShift(ctx, id); err != nil {
		return repository.Missing(err, "Shift")
	}
	s.logger.Info("shift deleted", "shift_id", id, "by", p.ID)
	s.publish(domain.ActivityShiftDeleted, shift, time.Now().UnixMilli())
	return nil
}

// checkAssignment verifies that the project and task exist and that p may track time on them.
func (s Service) checkAssignment(ctx context.Context, p domain.Principal, projectID, taskID string) error {
	projectID = strings.TrimSpace(projectID)
	taskID = strings.TrimSpace(taskID)
	if projectID != "" {
		project, err := s.projects.GetProjectByID(ctx, projectID)
		if err != nil {
			return repository.Missing(err, "Project")
		}
		if err := policy.TrackOnProject(p, *project).Err(); err != nil {
			return err
		}
	}
	if taskID != "" {
		task, err := s.tasks.GetTaskByID(ctx, taskID)
		if err != nil {
			return repository.Missing(err, "Task")
		}
		if err := policy.TrackOnTask(p, *task).Err(); err != nil {
			return err
		}
		if projectID != "" && task.ProjectID != projectID {
			return apperr.Validation("taskId", "task does not belong to the project")
		}
	}
	return nil
}

func (s Service) publish(kind string, shift *domain.Shift, at int64) {
	s.activity.Publish(domain.ActivityEvent{
		Type:           kind,
		OrganizationID: shift.OrganizationID,
		EmployeeID:     shift.EmployeeID,
		ShiftID:        shift.ID,
		ProjectID:      shift.ProjectID,
		TaskID:         shift.TaskID,
		At:             at,
	})
}
