package screenshot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/policy"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/internal/service/activity"
	"github.com/splax/shiftwatch/internal/service/membership"
	"github.com/splax/shiftwatch/pkg/ids"
	"github.com/splax/shiftwatch/pkg/text"
)

// Listing defaults.
const (
	DefaultListLimit     = 15
	DefaultPageLimit     = 10000
	SortTimestamp        = "timestamp"
	SortTimestampDesc    = "timestamp_desc"
	maxTimestampInFuture = 24 * time.Hour
)

// CreateInput carries a capture reported by an agent.
type CreateInput struct {
	Timestamp         int64                     `json:"timestamp" validate:"required,gt=0"`
	EmployeeID        string                    `json:"employeeId"`
	ShiftID           string                    `json:"shiftId" validate:"required"`
	Site              string                    `json:"site" validate:"max=2048"`
	Productivity      *float64                  `json:"productivity" validate:"omitempty,gte=0,lte=1"`
	App               string                    `json:"app" validate:"max=500"`
	AppFileName       string                    `json:"appFileName" validate:"max=500"`
	AppFilePath       string                    `json:"appFilePath" validate:"max=2048"`
	Title             string                    `json:"title" validate:"max=2048"`
	URL               string                    `json:"url" validate:"max=2048"`
	Document          string                    `json:"document" validate:"max=2048"`
	WindowID          string                    `json:"windowId" validate:"max=200"`
	TaskStatus        string                    `json:"taskStatus" validate:"max=100"`
	TaskPriority      string                    `json:"taskPriority" validate:"max=100"`
	Name              string                    `json:"name" validate:"max=200"`
	SystemPermissions *domain.SystemPermissions `json:"systemPermissions"`
	Active            *bool                     `json:"active"`
	domain.Device
}

// ListQuery selects screenshots taken inside [Start, End].
type ListQuery struct {
	Start int64
	End   int64
	Limit int
}

// PageQuery is a cursor listing request. ID lists are comma separated OR filters.
type PageQuery struct {
	Start      int64
	End        int64
	TaskIDs    string
	ShiftIDs   string
	ProjectIDs string
	SortBy     string
	Limit      int
	Next       string
}

// Service stores and pages screenshots.
type Service struct {
	screenshots repository.ScreenshotRepository
	shifts      repository.ShiftRepository
	employees   repository.EmployeeRepository
	members     membership.Service
	activity    activity.Publisher
	logger      *slog.Logger
}

// New constructs a Service.
func New(screenshots repository.ScreenshotRepository, shifts repository.ShiftRepository, employees repository.EmployeeRepository, members membership.Service, publisher activity.Publisher, logger *slog.Logger) Service {
	return Service{screenshots: screenshots, shifts: shifts, employees: employees, members: members, activity: publisher, logger: logger}
}

// Create records a capture inside an existing shift of the same employee.
func (s Service) Create(ctx context.Context, p domain.Principal, in CreateInput) (*domain.Screenshot, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" && p.IsEmployee() {
		employeeID = p.ID
	}
	employee, err := s.employees.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if p.IsAdmin() {
			return nil, policy.Deny("Not enough permissions to create screenshot for this employee").Err()
		}
		return nil, policy.Deny("Cannot create screenshot for another employee").Err()
	}
	if err := policy.TrackFor(p, *employee, "screenshot").Err(); err != nil {
		return nil, err
	}
	if in.Timestamp > time.Now().Add(maxTimestampInFuture).UnixMilli() {
		return nil, apperr.Validation("timestamp", "timestamp is too far in the future")
	}
	shift, err := s.shifts.GetShiftByID(ctx, in.ShiftID)
	if err != nil {
		return nil, repository.Missing(err, "Shift")
	}
	if shift.EmployeeID != employee.ID || shift.OrganizationID != employee.OrganizationID {
		return nil, apperr.Forbidden("Shift belongs to another employee")
	}
	shot := &domain.Screenshot{
		ID:                ids.NewFromTime(ids.Screenshot, time.UnixMilli(in.Timestamp)),
		Timestamp:         in.Timestamp,
		EmployeeID:        employee.ID,
		ShiftID:           shift.ID,
		OrganizationID:    shift.OrganizationID,
		TeamID:            shift.TeamID,
		ProjectID:         shift.ProjectID,
		TaskID:            shift.TaskID,
		Site:              strings.TrimSpace(in.Site),
		Productivity:      in.Productivity,
		App:               text.Clean(in.App),
		AppFileName:       strings.TrimSpace(in.AppFileName),
		AppFilePath:       strings.TrimSpace(in.AppFilePath),
		Title:             text.Clean(in.Title),
		URL:               strings.TrimSpace(in.URL),
		Document:          text.Clean(in.Document),
		WindowID:          strings.TrimSpace(in.WindowID),
		TaskStatus:        text.Clean(in.TaskStatus),
		TaskPriority:      text.Clean(in.TaskPriority),
		Name:              text.Clean(in.Name),
		SystemPermissions: in.SystemPermissions,
		Active:            in.Active == nil || *in.Active,
		Device:            in.Device,
	}
	if err := s.screenshots.CreateScreenshot(ctx, shot); err != nil {
		return nil, repository.Missing(err, "Shift")
	}
	s.logger.Info("screenshot created", "screenshot_id", shot.ID, "shift_id", shot.ShiftID, "employee_id", shot.EmployeeID)
	s.activity.Publish(domain.ActivityEvent{
		Type:           domain.ActivityScreenshotCaptured,
		OrganizationID: shot.OrganizationID,
		EmployeeID:     shot.EmployeeID,
		ShiftID:        shot.ShiftID,
		ScreenshotID:   shot.ID,
		ProjectID:      shot.ProjectID,
		TaskID:         shot.TaskID,
		At:             shot.Timestamp,
	})
	return shot, nil
}

// List returns up to q.Limit screenshots inside the range, oldest first.
func (s Service) List(ctx context.Context, p domain.Principal, q ListQuery) ([]domain.Screenshot, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.screenshots.ListScreenshots(ctx, repository.ScreenshotQuery{
		Scope: repository.ScopeFor(p),
		Start: q.Start,
		End:   q.End,
		Limit: limit,
	})
}

// Paginate returns one cursor page. Next holds the last returned timestamp when more rows follow.
// A malformed cursor is ignored and the first page is returned.
// Filter ids owned by another organization are Forbidden.
func (s Service) Paginate(ctx context.Context, p domain.Principal, q PageQuery) (domain.ScreenshotPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	query := repository.ScreenshotQuery{
		Scope:      repository.ScopeFor(p),
		Start:      q.Start,
		End:        q.End,
		TaskIDs:    splitIDs(q.TaskIDs),
		ShiftIDs:   splitIDs(q.ShiftIDs),
		ProjectIDs: splitIDs(q.ProjectIDs),
		Descending: q.SortBy == SortTimestampDesc,
		Limit:      limit + 1,
	}
	if err := s.members.RequireOwned(ctx, p, domain.EntityTask, query.TaskIDs...); err != nil {
		return domain.ScreenshotPage{}, err
	}
	if err := s.members.RequireOwned(ctx, p, domain.EntityShift, query.ShiftIDs...); err != nil {
		return domain.ScreenshotPage{}, err
	}
	if err := s.members.RequireOwned(ctx, p, domain.EntityProject, query.ProjectIDs...); err != nil {
		return domain.ScreenshotPage{}, err
	}
	if cursor, ok := parseCursor(q.Next); ok {
		query.After = &cursor
	} else if q.Next != "" {
		s.logger.Debug("ignoring malformed screenshot cursor", "next", q.Next)
	}
	rows, err := s.screenshots.ListScreenshots(ctx, query)
	if err != nil {
		return domain.ScreenshotPage{}, err
	}
	page := domain.ScreenshotPage{Data: rows}
	if len(rows) > limit {
		page.Data = rows[:limit]
		next := strconv.FormatInt(page.Data[limit-1].Timestamp, 10)
		page.Next = &next
	}
	if page.Data == nil {
		page.Data = []domain.Screenshot{}
	}
	return page, nil
}

// Delete removes a screenshot and counts it against its shift.
func (s Service) Delete(ctx context.Context, p domain.Principal, id string) error {
	shot, err := s.screenshots.GetScreenshotByID(ctx, id)
	if err != nil {
		return repository.Missing(err, "Screenshot")
	}
	if err := policy.Screenshot(p, policy.Delete, *shot).Err(); err != nil {
		return err
	}
	if err := s.screenshots.DeleteScreenshot(ctx, id); err != nil {
		return repository.Missing(err, "Screenshot")
	}
	s.logger.Info("screenshot deleted", "screenshot_id", id, "shift_id", shot.ShiftID, "by", p.ID)
	s.activity.Publish(domain.ActivityEvent{
		Type:           domain.ActivityScreenshotDeleted,
		OrganizationID: shot.OrganizationID,
		EmployeeID:     shot.EmployeeID,
		ShiftID:        shot.ShiftID,
		ScreenshotID:   shot.ID,
		At:             time.Now().UnixMilli(),
	})
	return nil
}

func splitIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func parseCursor(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
