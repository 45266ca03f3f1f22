package repository

import (
	"context"

	"github.com/splax/shiftwatch/internal/domain"
)

// Scope confines a query to one organization and, for employees, to their own rows.
type Scope struct {
	OrganizationID string
	EmployeeID     string
}

// ScopeFor derives the row scope a principal may see.
func ScopeFor(p domain.Principal) Scope {
	scope := Scope{OrganizationID: p.OrganizationID}
	if !p.IsAdmin() {
		scope.EmployeeID = p.ID
	}
	return scope
}

// DefaultPageLimit applies when a listing does not name a limit.
const DefaultPageLimit = 100

// Page is an offset window.
type Page struct {
	Skip  int
	Limit int
}

// Normalized clamps negative offsets and fills in the default limit.
func (p Page) Normalized() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	return p
}

// OrganizationRepository persists tenants.
type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, org *domain.Organization) error
	GetOrganizationByID(ctx context.Context, id string) (*domain.Organization, error)
	GetOrganizationByName(ctx context.Context, name string) (*domain.Organization, error)
}

// AdminRepository persists organization admins.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin *domain.Admin) error
	GetAdminByID(ctx context.Context, id string) (*domain.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error)
	ListAdmins(ctx context.Context, organizationID string, page Page) ([]domain.Admin, error)
	UpdateAdmin(ctx context.Context, admin *domain.Admin) error
	SetAdminAPIKey(ctx context.Context, id, sealed string) error
	DeleteAdmin(ctx context.Context, id string) error
}

// EmployeeRepository persists employees. Reads populate Employee.Projects.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee *domain.Employee) error
	GetEmployeeByID(ctx context.Context, id string) (*domain.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error)
	ListEmployees(ctx context.Context, organizationID string, page Page) ([]domain.Employee, error)
	UpdateEmployee(ctx context.Context, employee *domain.Employee) error
	SetEmployeePassword(ctx context.Context, id, hash string) error
	SetEmployeeDeactivated(ctx context.Context, id string, at int64) error
	EmployeeNames(ctx context.Context, ids []string) (map[string]string, error)
}

// TeamRepository persists teams.
type TeamRepository interface {
	CreateTeam(ctx context.Context, team *domain.Team) error
	GetTeamByID(ctx context.Context, id string) (*domain.Team, error)
	ListTeams(ctx context.Context, organizationID string, page Page) ([]domain.Team, error)
}

// ProjectQuery selects projects. MemberID and MemberTeamID restrict to projects the
// employee can see directly, through that team, or as creator.
type ProjectQuery struct {
	OrganizationID string
	MemberID       string
	MemberTeamID   string
	Page
}

// ProjectRepository persists projects. Reads populate Employees and Teams.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *domain.Project) error
	GetProjectByID(ctx context.Context, id string) (*domain.Project, error)
	ListProjects(ctx context.Context, q ProjectQuery) ([]domain.Project, error)
	UpdateProject(ctx context.Context, project *domain.Project) error
	DeleteProject(ctx context.Context, id string) error
	ProjectNames(ctx context.Context, ids []string) (map[string]string, error)
}

// TaskQuery selects tasks, optionally within a project and visible to a member.
type TaskQuery struct {
	OrganizationID string
	ProjectID      string
	MemberID       string
	MemberTeamID   string
	Page
}

// TaskRepository persists tasks. Reads populate Employees and Teams.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTaskByID(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, q TaskQuery) ([]domain.Task, error)
	UpdateTask(ctx context.Context, task *domain.Task) error
	DeleteTask(ctx context.Context, id string) error
	TaskNames(ctx context.Context, ids []string) (map[string]string, error)
}

// OrganizationResolver reports which organization owns an entity.
type OrganizationResolver interface {
	// OrganizationOf returns the organization of an entity or ErrNotFound.
	OrganizationOf(ctx context.Context, kind domain.EntityKind, id string) (string, error)
}

// MembershipRepository applies many-to-many links.
type MembershipRepository interface {
	OrganizationResolver
	// ReplaceLinks clears the owner's link set and inserts ids in one transaction.
	ReplaceLinks(ctx context.Context, link domain.Link, ownerID string, ids []string) error
	// AddLinks inserts ids, ignoring links that already exist.
	AddLinks(ctx context.Context, link domain.Link, ownerID string, ids []string) error
}

// ShiftQuery selects shifts for listing.
type ShiftQuery struct {
	Scope
	FilterEmployeeID string
	ProjectID        string
	TaskID           string
	Page
}

// ShiftRangeQuery selects completed shifts inside [Begin, End] with AND-combined filters.
type ShiftRangeQuery struct {
	Scope
	Begin            int64
	End              int64
	FilterEmployeeID string
	TeamID           string
	ProjectID        string
	TaskID           string
	ShiftID          string
}

// ShiftRepository persists shifts.
type ShiftRepository interface {
	CreateShift(ctx context.Context, shift *domain.Shift) error
	GetShiftByID(ctx context.Context, id string) (*domain.Shift, error)
	ListShifts(ctx context.Context, q ShiftQuery) ([]domain.Shift, error)
	UpdateShift(ctx context.Context, shift *domain.Shift) error
	DeleteShift(ctx context.Context, id string) error
	CompletedShifts(ctx context.Context, q ShiftRangeQuery) ([]domain.Shift, error)
}

// ScreenshotQuery selects screenshots in [Start, End]. Each id list is an OR set;
// After, when set, keeps rows strictly beyond the cursor in the sort direction.
type ScreenshotQuery struct {
	Scope
	Start      int64
	End        int64
	TaskIDs    []string
	ShiftIDs   []string
	ProjectIDs []string
	Descending bool
	After      *int64
	Limit      int
}

// ScreenshotRepository persists screenshots.
type ScreenshotRepository interface {
	CreateScreenshot(ctx context.Context, screenshot *domain.Screenshot) error
	GetScreenshotByID(ctx context.Context, id string) (*domain.Screenshot, error)
	ListScreenshots(ctx context.Context, q ScreenshotQuery) ([]domain.Screenshot, error)
	// DeleteScreenshot removes the row and increments its shift's deleted counter atomically.
	DeleteScreenshot(ctx context.Context, id string) error
}
