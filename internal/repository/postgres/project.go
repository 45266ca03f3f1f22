package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
)

const projectColumns = `p.id, p.name, p.description, p.organization_id, p.creator_id, p.archived, p.billable,
	p.statuses, p.priorities, p.bill_rate, p.overtime_bill_rate, p.screenshot_enabled, p.created_at,
	COALESCE((SELECT array_agg(ep.employee_id ORDER BY ep.employee_id) FROM employee_projects ep WHERE ep.project_id = p.id), '{}'),
	COALESCE((SELECT array_agg(tp.team_id ORDER BY tp.team_id) FROM team_projects tp WHERE tp.project_id = p.id), '{}')`

// projectVisible matches projects the member sees directly, through a team, or as creator.
const projectVisible = `(p.creator_id = $%[1]d
	OR EXISTS (SELECT 1 FROM employee_projects ep WHERE ep.project_id = p.id AND ep.employee_id = $%[1]d)
	OR EXISTS (SELECT 1 FROM team_projects tp WHERE tp.project_id = p.id AND tp.team_id = $%[2]d))`

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p                  domain.Project
		description        sql.NullString
		billRate, overtime sql.NullFloat64
	)
	if err := row.Scan(&p.ID, &p.Name, &description, &p.OrganizationID, &p.CreatorID, &p.Archived, &p.Billable,
		&p.Statuses, &p.Priorities, &billRate, &overtime, &p.ScreenshotSettings.ScreenshotEnabled, &p.CreatedAt,
		&p.Employees, &p.Teams); err != nil {
		return nil, err
	}
	p.Description = stringOrEmpty(description)
	if billRate.Valid || overtime.Valid {
		p.Payroll = &domain.Payroll{BillRate: billRate.Float64, OvertimeBillRate: overtime.Float64}
	}
	return &p, nil
}

func payrollArgs(p *domain.Payroll) (any, any) {
	if p == nil {
		return nil, nil
	}
	return p.BillRate, p.OvertimeBillRate
}

// CreateProject inserts a project. Member links are written separately.
func (r *Repository) CreateProject(ctx context.Context, project *domain.Project) error {
	const query = `INSERT INTO projects (id, name, description, organization_id, creator_id, archived, billable,
		statuses, priorities, bill_rate, overtime_bill_rate, screenshot_enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	billRate, overtime := payrollArgs(project.Payroll)
	_, err := r.pool.Exec(ctx, query,
		project.ID,
		project.Name,
		nilIfEmpty(project.Description),
		project.OrganizationID,
		project.CreatorID,
		project.Archived,
		project.Billable,
		project.Statuses,
		project.Priorities,
		billRate,
		overtime,
		project.ScreenshotSettings.ScreenshotEnabled,
		project.CreatedAt,
	)
	return mapError(err)
}

// GetProjectByID fetches a project with member links.
func (r *Repository) GetProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	project, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id))
	return project, mapError(err)
}

// ListProjects lists projects of an organization, optionally only those visible to a member.
func (r *Repository) ListProjects(ctx context.Context, q repository.ProjectQuery) ([]domain.Project, error) {
	var c conditions
	c.add("p.organization_id = $%d", q.OrganizationID)
	if q.MemberID != "" {
		member := c.next(q.MemberID)
		team := c.next(q.MemberTeamID)
		c.raw(fmt.Sprintf(projectVisible, member, team))
	}
	query := `SELECT ` + projectColumns + ` FROM projects p` + c.where() + ` ORDER BY p.id` + c.window(q.Page)
	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// UpdateProject overwrites mutable project fields.
func (r *Repository) UpdateProject(ctx context.Context, project *domain.Project) error {
	const query = `UPDATE projects
		SET name = $2,
			description = $3,
			archived = $4,
			billable = $5,
			statuses = $6,
			priorities = $7,
			bill_rate = $8,
			overtime_bill_rate = $9,
			screenshot_enabled = $10
		WHERE id = $1`
	billRate, overtime := payrollArgs(project.Payroll)
	return affected(r.pool.Exec(ctx, query,
		project.ID,
		project.Name,
		nilIfEmpty(project.Description),
		project.Archived,
		project.Billable,
		project.Statuses,
		project.Priorities,
		billRate,
		overtime,
		project.ScreenshotSettings.ScreenshotEnabled,
	))
}

// DeleteProject removes a project. Tasks and links cascade; shifts keep the dangling project id.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id))
}

// ProjectNames maps ids to names, omitting unknown ids.
func (r *Repository) ProjectNames(ctx context.Context, ids []string) (map[string]string, error) {
	return names(ctx, r.pool, "projects", ids)
}

const taskColumns = `t.id, t.name, t.description, t.project_id, t.organization_id, t.creator_id, t.status, t.priority,
	t.billable, t.deadline, t.labels, t.created_at,
	COALESCE((SELECT array_agg(et.employee_id ORDER BY et.employee_id) FROM employee_tasks et WHERE et.task_id = t.id), '{}'),
	COALESCE((SELECT array_agg(tt.team_id ORDER BY tt.team_id) FROM team_tasks tt WHERE tt.task_id = t.id), '{}')`

// taskVisible matches tasks the member sees on the task itself or through the parent project.
const taskVisible = `(t.creator_id = $%[1]d
	OR EXISTS (SELECT 1 FROM employee_tasks et WHERE et.task_id = t.id AND et.employee_id = $%[1]d)
	OR EXISTS (SELECT 1 FROM team_tasks tt WHERE tt.task_id = t.id AND tt.team_id = $%[2]d)
	OR EXISTS (SELECT 1 FROM projects p WHERE p.id = t.project_id AND ` + projectVisible + `))`

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t           domain.Task
		description sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &description, &t.ProjectID, &t.OrganizationID, &t.CreatorID, &t.Status, &t.Priority,
		&t.Billable, &t.Deadline, &t.Labels, &t.CreatedAt, &t.Employees, &t.Teams); err != nil {
		return nil, err
	}
	t.Description = stringOrEmpty(description)
	return &t, nil
}

// CreateTask inserts a task. The parent project must exist.
func (r *Repository) CreateTask(ctx context.Context, task *domain.Task) error {
	const query = `INSERT INTO tasks (id, name, description, project_id, organization_id, creator_id, status, priority,
		billable, deadline, labels, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	labels := task.Labels
	if labels == nil {
		labels = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Name,
		nilIfEmpty(task.Description),
		task.ProjectID,
		task.OrganizationID,
		task.CreatorID,
		task.Status,
		task.Priority,
		task.Billable,
		task.Deadline,
		labels,
		task.CreatedAt,
	)
	return mapError(err)
}

// GetTaskByID fetches a task with member links.
func (r *Repository) GetTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	task, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = $1`, id))
	return task, mapError(err)
}

// ListTasks lists tasks of an organization with optional project and member filters.
func (r *Repository) ListTasks(ctx context.Context, q repository.TaskQuery) ([]domain.Task, error) {
	var c conditions
	c.add("t.organization_id = $%d", q.OrganizationID)
	if q.ProjectID != "" {
		c.add("t.project_id = $%d", q.ProjectID)
	}
	if q.MemberID != "" {
		member := c.next(q.MemberID)
		team := c.next(q.MemberTeamID)
		c.raw(fmt.Sprintf(taskVisible, member, team))
	}
	query := `SELECT ` + taskColumns + ` FROM tasks t` + c.where() + ` ORDER BY t.id` + c.window(q.Page)
	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateTask overwrites mutable task fields.
func (r *Repository) UpdateTask(ctx context.Context, task *domain.Task) error {
	const query = `UPDATE tasks
		SET name = $2,
			description = $3,
			status = $4,
			priority = $5,
			billable = $6,
			deadline = $7,
			labels = $8
		WHERE id = $1`
	labels := task.Labels
	if labels == nil {
		labels = []string{}
	}
	return affected(r.pool.Exec(ctx, query,
		task.ID,
		task.Name,
		nilIfEmpty(task.Description),
		task.Status,
		task.Priority,
		task.Billable,
		task.Deadline,
		labels,
	))
}

// DeleteTask removes a task; links cascade and shifts lose the task reference.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id))
}

// TaskNames maps ids to names, omitting unknown ids.
func (r *Repository) TaskNames(ctx context.Context, ids []string) (map[string]string, error) {
	return names(ctx, r.pool, "tasks", ids)
}

var entityTables = map[domain.EntityKind]string{
	domain.EntityEmployee: "employees",
	domain.EntityTeam:     "teams",
	domain.EntityProject:  "projects",
	domain.EntityTask:     "tasks",
	domain.EntityShift:    "shifts",
}

// linkTable describes where a relationship is stored and which column belongs to the owner.
type linkTable struct {
	table  string
	owner  string
	member string
}

var linkTables = map[domain.Link]linkTable{
	domain.LinkEmployeeProjects: {table: "employee_projects", owner: "employee_id", member: "project_id"},
	domain.LinkProjectEmployees: {table: "employee_projects", owner: "project_id", member: "employee_id"},
	domain.LinkProjectTeams:     {table: "team_projects", owner: "project_id", member: "team_id"},
	domain.LinkTaskEmployees:    {table: "employee_tasks", owner: "task_id", member: "employee_id"},
	domain.LinkTaskTeams:        {table: "team_tasks", owner: "task_id", member: "team_id"},
}

// OrganizationOf returns the organization an entity belongs to.
func (r *Repository) OrganizationOf(ctx context.Context, kind domain.EntityKind, id string) (string, error) {
	table, ok := entityTables[kind]
	if !ok {
		return "", repository.ErrInvalidArgument
	}
	var org string
	if err := r.pool.QueryRow(ctx, `SELECT organization_id FROM `+table+` WHERE id = $1`, id).Scan(&org); err != nil {
		return "", mapError(err)
	}
	return org, nil
}

// ReplaceLinks clears the owner's link set and inserts ids in one transaction.
func (r *Repository) ReplaceLinks(ctx context.Context, link domain.Link, ownerID string, ids []string) error {
	lt, ok := linkTables[link]
	if !ok {
		return repository.ErrInvalidArgument
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM `+lt.table+` WHERE `+lt.owner+` = $1`, ownerID); err != nil {
		return mapError(err)
	}
	if err := insertLinks(ctx, tx, lt, ownerID, ids); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AddLinks inserts ids, leaving existing links untouched.
func (r *Repository) AddLinks(ctx context.Context, link domain.Link, ownerID string, ids []string) error {
	lt, ok := linkTables[link]
	if !ok {
		return repository.ErrInvalidArgument
	}
	return insertLinks(ctx, r.pool, lt, ownerID, ids)
}

func insertLinks(ctx context.Context, db querier, lt linkTable, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `INSERT INTO ` + lt.table + ` (` + lt.owner + `, ` + lt.member + `)
		SELECT $1, member FROM unnest($2::text[]) AS member
		ON CONFLICT DO NOTHING`
	_, err := db.Exec(ctx, query, ownerID, ids)
	return mapError(err)
}
