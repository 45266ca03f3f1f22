// Package memory implements the repository interfaces in process memory.
// It backs service and router tests that need a consistent multi-entity store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
)

// Store is a mutex guarded in-memory repository.
type Store struct {
	mu          sync.RWMutex
	orgs        map[string]domain.Organization
	admins      map[string]domain.Admin
	employees   map[string]domain.Employee
	teams       map[string]domain.Team
	projects    map[string]domain.Project
	tasks       map[string]domain.Task
	shifts      map[string]domain.Shift
	screenshots map[string]domain.Screenshot
	links       map[domain.Link]map[string][]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		orgs:        map[string]domain.Organization{},
		admins:      map[string]domain.Admin{},
		employees:   map[string]domain.Employee{},
		teams:       map[string]domain.Team{},
		projects:    map[string]domain.Project{},
		tasks:       map[string]domain.Task{},
		shifts:      map[string]domain.Shift{},
		screenshots: map[string]domain.Screenshot{},
		links:       map[domain.Link]map[string][]string{},
	}
}

var (
	_ repository.OrganizationRepository = (*Store)(nil)
	_ repository.AdminRepository        = (*Store)(nil)
	_ repository.EmployeeRepository     = (*Store)(nil)
	_ repository.TeamRepository         = (*Store)(nil)
	_ repository.ProjectRepository      = (*Store)(nil)
	_ repository.TaskRepository         = (*Store)(nil)
	_ repository.MembershipRepository   = (*Store)(nil)
	_ repository.ShiftRepository        = (*Store)(nil)
	_ repository.ScreenshotRepository   = (*Store)(nil)
)

// CreateOrganization inserts an organization.
func (s *Store) CreateOrganization(_ context.Context, org *domain.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[org.ID]; ok {
		return repository.ErrDuplicate
	}
	s.orgs[org.ID] = *org
	return nil
}

// GetOrganizationByID fetches an organization.
func (s *Store) GetOrganizationByID(_ context.Context, id string) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &org, nil
}

// GetOrganizationByName fetches an organization by exact name.
func (s *Store) GetOrganizationByName(_ context.Context, name string) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, org := range s.orgs {
		if org.Name == name {
			o := org
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

// CreateAdmin inserts an admin; emails are unique.
func (s *Store) CreateAdmin(_ context.Context, admin *domain.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Email == admin.Email {
			return repository.ErrDuplicate
		}
	}
	s.admins[admin.ID] = *admin
	return nil
}

// GetAdminByID fetches an admin.
func (s *Store) GetAdminByID(_ context.Context, id string) (*domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

// GetAdminByEmail fetches an admin by email.
func (s *Store) GetAdminByEmail(_ context.Context, email string) (*domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.admins {
		if a.Email == email {
			out := a
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListAdmins lists admins of an organization ordered by creation.
func (s *Store) ListAdmins(_ context.Context, organizationID string, page repository.Page) ([]domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Admin
	for _, a := range s.admins {
		if a.OrganizationID == organizationID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, page), nil
}

// UpdateAdmin overwrites mutable admin fields.
func (s *Store) UpdateAdmin(_ context.Context, admin *domain.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[admin.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, a := range s.admins {
		if id != admin.ID && a.Email == admin.Email {
			return repository.ErrDuplicate
		}
	}
	s.admins[admin.ID] = *admin
	return nil
}

// SetAdminAPIKey stores a sealed API key.
func (s *Store) SetAdminAPIKey(_ context.Context, id, sealed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.SealedAPIKey = sealed
	s.admins[id] = a
	return nil
}

// DeleteAdmin removes an admin.
func (s *Store) DeleteAdmin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.admins, id)
	return nil
}

// CreateEmployee inserts an employee; emails are unique.
func (s *Store) CreateEmployee(_ context.Context, employee *domain.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.employees {
		if e.Email == employee.Email {
			return repository.ErrDuplicate
		}
	}
	stored := *employee
	stored.Projects = nil
	s.employees[employee.ID] = stored
	return nil
}

// GetEmployeeByID fetches an employee with project links.
func (s *Store) GetEmployeeByID(_ context.Context, id string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.hydrateEmployee(e), nil
}

// GetEmployeeByEmail fetches an employee by email.
func (s *Store) GetEmployeeByEmail(_ context.Context, email string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.employees {
		if e.Email == email {
			return s.hydrateEmployee(e), nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListEmployees lists employees of an organization.
func (s *Store) ListEmployees(_ context.Context, organizationID string, page repository.Page) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Employee
	for _, e := range s.employees {
		if e.OrganizationID == organizationID {
			out = append(out, *s.hydrateEmployee(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, page), nil
}

// UpdateEmployee overwrites mutable employee fields.
func (s *Store) UpdateEmployee(_ context.Context, employee *domain.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.employees[employee.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, e := range s.employees {
		if id != employee.ID && e.Email == employee.Email {
			return repository.ErrDuplicate
		}
	}
	stored := *employee
	stored.PasswordHash = cur.PasswordHash
	stored.Projects = nil
	s.employees[employee.ID] = stored
	return nil
}

// SetEmployeePassword stores a password hash.
func (s *Store) SetEmployeePassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.PasswordHash = hash
	s.employees[id] = e
	return nil
}

// SetEmployeeDeactivated marks an employee deactivated at the given time.
func (s *Store) SetEmployeeDeactivated(_ context.Context, id string, at int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Deactivated = &at
	s.employees[id] = e
	return nil
}

// EmployeeNames maps ids to names, omitting unknown ids.
func (s *Store) EmployeeNames(_ context.Context, ids []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if e, ok := s.employees[id]; ok {
			out[id] = e.Name
		}
	}
	return out, nil
}

func (s *Store) hydrateEmployee(e domain.Employee) *domain.Employee {
	e.Projects = append([]string{}, s.links[domain.LinkEmployeeProjects][e.ID]...)
	return &e
}

// CreateTeam inserts a team.
func (s *Store) CreateTeam(_ context.Context, team *domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.ID] = *team
	return nil
}

// GetTeamByID fetches a team.
func (s *Store) GetTeamByID(_ context.Context, id string) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

// ListTeams lists teams of an organization.
func (s *Store) ListTeams(_ context.Context, organizationID string, page repository.Page) ([]domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Team
	for _, t := range s.teams {
		if t.OrganizationID == organizationID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, page), nil
}

// CreateProject inserts a project.
func (s *Store) CreateProject(_ context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *project
	stored.Employees, stored.Teams = nil, nil
	s.projects[project.ID] = stored
	return nil
}

// GetProjectByID fetches a project with member links.
func (s *Store) GetProjectByID(_ context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.hydrateProject(p), nil
}

// ListProjects lists projects matching q.
func (s *Store) ListProjects(_ context.Context, q repository.ProjectQuery) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Project
	for _, p := range s.projects {
		if p.OrganizationID != q.OrganizationID {
			continue
		}
		full := s.hydrateProject(p)
		if q.MemberID != "" && !visibleTo(q.MemberID, q.MemberTeamID, full.Employees, full.Teams, full.CreatorID) {
			continue
		}
		out = append(out, *full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, q.Page), nil
}

// UpdateProject overwrites mutable project fields.
func (s *Store) UpdateProject(_ context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[project.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *project
	stored.Employees, stored.Teams = nil, nil
	s.projects[project.ID] = stored
	return nil
}

// DeleteProject removes a project and its tasks.
func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.projects, id)
	for taskID, t := range s.tasks {
		if t.ProjectID == id {
			s.deleteTaskLocked(taskID)
		}
	}
	delete(s.links[domain.LinkProjectTeams], id)
	s.dropMember(domain.LinkEmployeeProjects, id)
	return nil
}

// ProjectNames maps ids to names, omitting unknown ids.
func (s *Store) ProjectNames(_ context.Context, ids []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if p, ok := s.projects[id]; ok {
			out[id] = p.Name
		}
	}
	return out, nil
}

func (s *Store) hydrateProject(p domain.Project) *domain.Project {
	p.Employees = s.projectEmployees(p.ID)
	p.Teams = append([]string{}, s.links[domain.LinkProjectTeams][p.ID]...)
	return &p
}

// projectEmployees inverts the canonical employee/project set.
func (s *Store) projectEmployees(projectID string) []string {
	out := []string{}
	for employeeID, projects := range s.links[domain.LinkEmployeeProjects] {
		if contains(projects, projectID) {
			out = append(out, employeeID)
		}
	}
	sort.Strings(out)
	return out
}

// CreateTask inserts a task.
func (s *Store) CreateTask(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[task.ProjectID]; !ok {
		return repository.ErrNotFound
	}
	stored := *task
	stored.Employees, stored.Teams = nil, nil
	s.tasks[task.ID] = stored
	return nil
}

// GetTaskByID fetches a task with member links.
func (s *Store) GetTaskByID(_ context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.hydrateTask(t), nil
}

// ListTasks lists tasks matching q.
func (s *Store) ListTasks(_ context.Context, q repository.TaskQuery) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Task
	for _, t := range s.tasks {
		if t.OrganizationID != q.OrganizationID {
			continue
		}
		if q.ProjectID != "" && t.ProjectID != q.ProjectID {
			continue
		}
		full := s.hydrateTask(t)
		if q.MemberID != "" {
			visible := visibleTo(q.MemberID, q.MemberTeamID, full.Employees, full.Teams, full.CreatorID)
			if p, ok := s.projects[t.ProjectID]; ok && !visible {
				pp := s.hydrateProject(p)
				visible = visibleTo(q.MemberID, q.MemberTeamID, pp.Employees, pp.Teams, pp.CreatorID)
			}
			if !visible {
				continue
			}
		}
		out = append(out, *full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, q.Page), nil
}

// UpdateTask overwrites mutable task fields.
func (s *Store) UpdateTask(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *task
	stored.Employees, stored.Teams = nil, nil
	s.tasks[task.ID] = stored
	return nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	s.deleteTaskLocked(id)
	return nil
}

func (s *Store) deleteTaskLocked(id string) {
	delete(s.tasks, id)
	delete(s.links[domain.LinkTaskEmployees], id)
	delete(s.links[domain.LinkTaskTeams], id)
	for shiftID, sh := range s.shifts {
		if sh.TaskID == id {
			sh.TaskID = ""
			s.shifts[shiftID] = sh
		}
	}
}

// TaskNames maps ids to names, omitting unknown ids.
func (s *Store) TaskNames(_ context.Context, ids []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if t, ok := s.tasks[id]; ok {
			out[id] = t.Name
		}
	}
	return out, nil
}

func (s *Store) hydrateTask(t domain.Task) *domain.Task {
	t.Employees = append([]string{}, s.links[domain.LinkTaskEmployees][t.ID]...)
	t.Teams = append([]string{}, s.links[domain.LinkTaskTeams][t.ID]...)
	return &t
}

// OrganizationOf returns the organization of an entity.
func (s *Store) OrganizationOf(_ context.Context, kind domain.EntityKind, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var org string
	var ok bool
	switch kind {
	case domain.EntityEmployee:
		var e domain.Employee
		e, ok = s.employees[id]
		org = e.OrganizationID
	case domain.EntityTeam:
		var t domain.Team
		t, ok = s.teams[id]
		org = t.OrganizationID
	case domain.EntityProject:
		var p domain.Project
		p, ok = s.projects[id]
		org = p.OrganizationID
	case domain.EntityTask:
		var t domain.Task
		t, ok = s.tasks[id]
		org = t.OrganizationID
	case domain.EntityShift:
		var sh domain.Shift
		sh, ok = s.shifts[id]
		org = sh.OrganizationID
	}
	if !ok {
		return "", repository.ErrNotFound
	}
	return org, nil
}

// ReplaceLinks swaps the owner's link set.
// Both directions of the employee/project relation share one canonical set.
func (s *Store) ReplaceLinks(_ context.Context, link domain.Link, ownerID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if link == domain.LinkProjectEmployees {
		s.dropMember(domain.LinkEmployeeProjects, ownerID)
	} else {
		s.linkSet(link)[ownerID] = nil
	}
	s.addLocked(link, ownerID, ids)
	return nil
}

// AddLinks inserts ids ignoring existing links.
func (s *Store) AddLinks(_ context.Context, link domain.Link, ownerID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(link, ownerID, ids)
	return nil
}

func (s *Store) addLocked(link domain.Link, ownerID string, ids []string) {
	if link == domain.LinkProjectEmployees {
		set := s.linkSet(domain.LinkEmployeeProjects)
		for _, id := range ids {
			if !contains(set[id], ownerID) {
				set[id] = append(set[id], ownerID)
			}
		}
		return
	}
	set := s.linkSet(link)
	for _, id := range ids {
		if !contains(set[ownerID], id) {
			set[ownerID] = append(set[ownerID], id)
		}
	}
}

func (s *Store) linkSet(link domain.Link) map[string][]string {
	set, ok := s.links[link]
	if !ok {
		set = map[string][]string{}
		s.links[link] = set
	}
	return set
}

// dropMember removes memberID from every owner's set of link.
func (s *Store) dropMember(link domain.Link, memberID string) {
	for owner, members := range s.links[link] {
		kept := members[:0]
		for _, m := range members {
			if m != memberID {
				kept = append(kept, m)
			}
		}
		s.links[link][owner] = kept
	}
}

// CreateShift inserts a shift.
func (s *Store) CreateShift(_ context.Context, shift *domain.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifts[shift.ID] = *shift
	return nil
}

// GetShiftByID fetches a shift.
func (s *Store) GetShiftByID(_ context.Context, id string) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shifts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sh, nil
}

// ListShifts lists shifts matching q, newest first.
func (s *Store) ListShifts(_ context.Context, q repository.ShiftQuery) ([]domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Shift
	for _, sh := range s.shifts {
		if !inScope(q.Scope, sh.OrganizationID, sh.EmployeeID) {
			continue
		}
		if (q.FilterEmployeeID != "" && sh.EmployeeID != q.FilterEmployeeID) ||
			(q.ProjectID != "" && sh.ProjectID != q.ProjectID) ||
			(q.TaskID != "" && sh.TaskID != q.TaskID) {
			continue
		}
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start > out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return window(out, q.Page), nil
}

// UpdateShift overwrites a shift.
func (s *Store) UpdateShift(_ context.Context, shift *domain.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[shift.ID]; !ok {
		return repository.ErrNotFound
	}
	s.shifts[shift.ID] = *shift
	return nil
}

// DeleteShift removes a shift and its screenshots.
func (s *Store) DeleteShift(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.shifts, id)
	for shotID, shot := range s.screenshots {
		if shot.ShiftID == id {
			delete(s.screenshots, shotID)
		}
	}
	return nil
}

// CompletedShifts returns closed shifts inside the range matching every filter, oldest first.
func (s *Store) CompletedShifts(_ context.Context, q repository.ShiftRangeQuery) ([]domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Shift
	for _, sh := range s.shifts {
		if sh.End == nil || sh.Start < q.Begin || *sh.End > q.End {
			continue
		}
		if !inScope(q.Scope, sh.OrganizationID, sh.EmployeeID) {
			continue
		}
		if (q.FilterEmployeeID != "" && sh.EmployeeID != q.FilterEmployeeID) ||
			(q.TeamID != "" && sh.TeamID != q.TeamID) ||
			(q.ProjectID != "" && sh.ProjectID != q.ProjectID) ||
			(q.TaskID != "" && sh.TaskID != q.TaskID) ||
			(q.ShiftID != "" && sh.ID != q.ShiftID) {
			continue
		}
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CreateScreenshot inserts a screenshot.
func (s *Store) CreateScreenshot(_ context.Context, shot *domain.Screenshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[shot.ShiftID]; !ok {
		return repository.ErrNotFound
	}
	s.screenshots[shot.ID] = *shot
	return nil
}

// GetScreenshotByID fetches a screenshot.
func (s *Store) GetScreenshotByID(_ context.Context, id string) (*domain.Screenshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shot, ok := s.screenshots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &shot, nil
}

// ListScreenshots lists screenshots matching q ordered by timestamp.
func (s *Store) ListScreenshots(_ context.Context, q repository.ScreenshotQuery) ([]domain.Screenshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Screenshot
	for _, shot := range s.screenshots {
		if shot.Timestamp < q.Start || shot.Timestamp > q.End {
			continue
		}
		if !inScope(q.Scope, shot.OrganizationID, shot.EmployeeID) {
			continue
		}
		if !inSet(q.TaskIDs, shot.TaskID) || !inSet(q.ShiftIDs, shot.ShiftID) || !inSet(q.ProjectIDs, shot.ProjectID) {
			continue
		}
		if q.After != nil {
			if q.Descending && shot.Timestamp >= *q.After {
				continue
			}
			if !q.Descending && shot.Timestamp <= *q.After {
				continue
			}
		}
		out = append(out, shot)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			if q.Descending {
				return out[i].Timestamp > out[j].Timestamp
			}
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// DeleteScreenshot removes a screenshot and bumps its shift's deleted counter.
func (s *Store) DeleteScreenshot(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	shot, ok := s.screenshots[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(s.screenshots, id)
	if sh, ok := s.shifts[shot.ShiftID]; ok {
		sh.DeletedScreenshots++
		s.shifts[shot.ShiftID] = sh
	}
	return nil
}

func inScope(scope repository.Scope, organizationID, employeeID string) bool {
	if organizationID != scope.OrganizationID {
		return false
	}
	return scope.EmployeeID == "" || scope.EmployeeID == employeeID
}

func inSet(set []string, value string) bool {
	if len(set) == 0 {
		return true
	}
	return contains(set, value)
}

func visibleTo(memberID, teamID string, employees, teams []string, creatorID string) bool {
	if creatorID == memberID || contains(employees, memberID) {
		return true
	}
	return teamID != "" && contains(teams, teamID)
}

func contains(values []string, v string) bool {
	for _, cur := range values {
		if cur == v {
			return true
		}
	}
	return false
}

func window[T any](items []T, page repository.Page) []T {
	if page.Skip > 0 {
		if page.Skip >= len(items) {
			return []T{}
		}
		items = items[page.Skip:]
	}
	if page.Limit > 0 && len(items) > page.Limit {
		items = items[:page.Limit]
	}
	if items == nil {
		return []T{}
	}
	return items
}

