package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
)

// CreateOrganization inserts a tenant.
func (r *Repository) CreateOrganization(ctx context.Context, org *domain.Organization) error {
	const query = `INSERT INTO organizations (id, name, created_at) VALUES ($1, $2, $3)`
	_, err := r.pool.Exec(ctx, query, org.ID, org.Name, org.CreatedAt)
	return mapError(err)
}

// GetOrganizationByID fetches a tenant.
func (r *Repository) GetOrganizationByID(ctx context.Context, id string) (*domain.Organization, error) {
	return r.getOrganization(ctx, `SELECT id, name, created_at FROM organizations WHERE id = $1`, id)
}

// GetOrganizationByName fetches a tenant by its unique name.
func (r *Repository) GetOrganizationByName(ctx context.Context, name string) (*domain.Organization, error) {
	return r.getOrganization(ctx, `SELECT id, name, created_at FROM organizations WHERE name = $1`, name)
}

func (r *Repository) getOrganization(ctx context.Context, query, arg string) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&org.ID, &org.Name, &org.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &org, nil
}

const adminColumns = `id, email, name, password_hash, organization_id, sealed_api_key, created_at`

func scanAdmin(row rowScanner) (*domain.Admin, error) {
	var (
		a      domain.Admin
		sealed sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.OrganizationID, &sealed, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.SealedAPIKey = stringOrEmpty(sealed)
	return &a, nil
}

// CreateAdmin inserts an admin.
func (r *Repository) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	const query = `INSERT INTO admins (id, email, name, password_hash, organization_id, sealed_api_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		admin.ID,
		admin.Email,
		admin.Name,
		admin.PasswordHash,
		admin.OrganizationID,
		nilIfEmpty(admin.SealedAPIKey),
		admin.CreatedAt,
	)
	return mapError(err)
}

// GetAdminByID fetches an admin.
func (r *Repository) GetAdminByID(ctx context.Context, id string) (*domain.Admin, error) {
	admin, err := scanAdmin(r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
	return admin, mapError(err)
}

// GetAdminByEmail fetches an admin by email.
func (r *Repository) GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	admin, err := scanAdmin(r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = $1`, email))
	return admin, mapError(err)
}

// ListAdmins lists admins of an organization.
func (r *Repository) ListAdmins(ctx context.Context, organizationID string, page repository.Page) ([]domain.Admin, error) {
	var c conditions
	c.add("organization_id = $%d", organizationID)
	query := `SELECT ` + adminColumns + ` FROM admins` + c.where() + ` ORDER BY id` + c.window(page)
	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := make([]domain.Admin, 0)
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *admin)
	}
	return admins, rows.Err()
}

// UpdateAdmin overwrites mutable admin fields.
func (r *Repository) UpdateAdmin(ctx context.Context, admin *domain.Admin) error {
	const query = `UPDATE admins SET email = $2, name = $3, password_hash = $4 WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, admin.ID, admin.Email, admin.Name, admin.PasswordHash))
}

// SetAdminAPIKey stores the sealed API key.
func (r *Repository) SetAdminAPIKey(ctx context.Context, id, sealed string) error {
	return affected(r.pool.Exec(ctx, `UPDATE admins SET sealed_api_key = $2 WHERE id = $1`, id, nilIfEmpty(sealed)))
}

// DeleteAdmin removes an admin.
func (r *Repository) DeleteAdmin(ctx context.Context, id string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id))
}

const employeeColumns = `e.id, e.email, e.name, e.title, e.password_hash, e.team_id, e.type, e.organization_id,
	e.deactivated, e.invited, e.perm_accessibility, e.perm_screen_recording, e.created_at,
	COALESCE((SELECT array_agg(ep.project_id ORDER BY ep.project_id) FROM employee_projects ep WHERE ep.employee_id = e.id), '{}')`

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var (
		e                                  domain.Employee
		title, hash, team, access, capture sql.NullString
		kind                               string
	)
	if err := row.Scan(&e.ID, &e.Email, &e.Name, &title, &hash, &team, &kind, &e.OrganizationID,
		&e.Deactivated, &e.Invited, &access, &capture, &e.CreatedAt, &e.Projects); err != nil {
		return nil, err
	}
	e.Title = stringOrEmpty(title)
	e.PasswordHash = stringOrEmpty(hash)
	e.TeamID = stringOrEmpty(team)
	e.Type = domain.EmployeeType(kind)
	e.SystemPermissions = permissions(access, capture)
	return &e, nil
}

// CreateEmployee inserts an employee. Project links are written separately.
func (r *Repository) CreateEmployee(ctx context.Context, employee *domain.Employee) error {
	const query = `INSERT INTO employees (id, email, name, title, password_hash, team_id, type, organization_id,
		deactivated, invited, perm_accessibility, perm_screen_recording, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	access, capture := permissionArgs(employee.SystemPermissions)
	_, err := r.pool.Exec(ctx, query,
		employee.ID,
		employee.Email,
		employee.Name,
		nilIfEmpty(employee.Title),
		nilIfEmpty(employee.PasswordHash),
		nilIfEmpty(employee.TeamID),
		string(employee.Type),
		employee.OrganizationID,
		employee.Deactivated,
		employee.Invited,
		access,
		capture,
		employee.CreatedAt,
	)
	return mapError(err)
}

// GetEmployeeByID fetches an employee with project links.
func (r *Repository) GetEmployeeByID(ctx context.Context, id string) (*domain.Employee, error) {
	employee, err := scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees e WHERE e.id = $1`, id))
	return employee, mapError(err)
}

// GetEmployeeByEmail fetches an employee by email.
func (r *Repository) GetEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	employee, err := scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees e WHERE e.email = $1`, email))
	return employee, mapError(err)
}

// ListEmployees lists employees of an organization.
func (r *Repository) ListEmployees(ctx context.Context, organizationID string, page repository.Page) ([]domain.Employee, error) {
	var c conditions
	c.add("e.organization_id = $%d", organizationID)
	query := `SELECT ` + employeeColumns + ` FROM employees e` + c.where() + ` ORDER BY e.id` + c.window(page)
	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *employee)
	}
	return employees, rows.Err()
}

// UpdateEmployee overwrites profile fields. Password and deactivation have dedicated writers.
func (r *Repository) UpdateEmployee(ctx context.Context, employee *domain.Employee) error {
	const query = `UPDATE employees
		SET email = $2,
			name = $3,
			title = $4,
			team_id = $5,
			type = $6,
			perm_accessibility = $7,
			perm_screen_recording = $8
		WHERE id = $1`
	access, capture := permissionArgs(employee.SystemPermissions)
	return affected(r.pool.Exec(ctx, query,
		employee.ID,
		employee.Email,
		employee.Name,
		nilIfEmpty(employee.Title),
		nilIfEmpty(employee.TeamID),
		string(employee.Type),
		access,
		capture,
	))
}

// SetEmployeePassword stores a password hash.
func (r *Repository) SetEmployeePassword(ctx context.Context, id, hash string) error {
	return affected(r.pool.Exec(ctx, `UPDATE employees SET password_hash = $2 WHERE id = $1`, id, hash))
}

// SetEmployeeDeactivated records the deactivation time.
func (r *Repository) SetEmployeeDeactivated(ctx context.Context, id string, at int64) error {
	return affected(r.pool.Exec(ctx, `UPDATE employees SET deactivated = $2 WHERE id = $1`, id, at))
}

// EmployeeNames maps ids to names, omitting unknown ids.
func (r *Repository) EmployeeNames(ctx context.Context, ids []string) (map[string]string, error) {
	return names(ctx, r.pool, "employees", ids)
}

// CreateTeam inserts a team.
func (r *Repository) CreateTeam(ctx context.Context, team *domain.Team) error {
	const query = `INSERT INTO teams (id, name, organization_id, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, team.ID, team.Name, team.OrganizationID, team.CreatedAt)
	return mapError(err)
}

// GetTeamByID returns a team by identifier.
func (r *Repository) GetTeamByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `SELECT id, name, organization_id, created_at FROM teams WHERE id = $1`
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, id).Scan(&team.ID, &team.Name, &team.OrganizationID, &team.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &team, nil
}

// ListTeams lists teams of an organization.
func (r *Repository) ListTeams(ctx context.Context, organizationID string, page repository.Page) ([]domain.Team, error) {
	var c conditions
	c.add("organization_id = $%d", organizationID)
	query := `SELECT id, name, organization_id, created_at FROM teams` + c.where() + ` ORDER BY id` + c.window(page)
	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Team, error) {
		var team domain.Team
		err := row.Scan(&team.ID, &team.Name, &team.OrganizationID, &team.CreatedAt)
		return team, err
	})
}
