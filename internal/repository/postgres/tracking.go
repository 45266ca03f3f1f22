package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
)

const shiftColumns = `id, type, start_ms, end_ms, timezone_offset, name, employee_id, team_id, organization_id,
	project_id, task_id, paid, pay_rate, overtime_pay_rate, overtime_start, deleted_screenshots,
	device_user, device_domain, device_computer, device_hwid, device_os, device_os_version`

type deviceColumns struct {
	user, domain, computer, hwid, os, version sql.NullString
}

func (d *deviceColumns) targets() []any {
	return []any{&d.user, &d.domain, &d.computer, &d.hwid, &d.os, &d.version}
}

func (d deviceColumns) device() domain.Device {
	return domain.Device{
		User:      stringOrEmpty(d.user),
		Domain:    stringOrEmpty(d.domain),
		Computer:  stringOrEmpty(d.computer),
		Hwid:      stringOrEmpty(d.hwid),
		OS:        stringOrEmpty(d.os),
		OSVersion: stringOrEmpty(d.version),
	}
}

func deviceArgs(d domain.Device) []any {
	return []any{nilIfEmpty(d.User), nilIfEmpty(d.Domain), nilIfEmpty(d.Computer), nilIfEmpty(d.Hwid), nilIfEmpty(d.OS), nilIfEmpty(d.OSVersion)}
}

func scanShift(row rowScanner) (*domain.Shift, error) {
	var (
		s                         domain.Shift
		kind                      string
		name, team, project, task sql.NullString
		device                    deviceColumns
	)
	dest := []any{&s.ID, &kind, &s.Start, &s.End, &s.TimezoneOffset, &name, &s.EmployeeID, &team, &s.OrganizationID,
		&project, &task, &s.Paid, &s.PayRate, &s.OvertimePayRate, &s.OvertimeStart, &s.DeletedScreenshots}
	if err := row.Scan(append(dest, device.targets()...)...); err != nil {
		return nil, err
	}
	s.Type = domain.ShiftType(kind)
	s.Name = stringOrEmpty(name)
	s.TeamID = stringOrEmpty(team)
	s.ProjectID = stringOrEmpty(project)
	s.TaskID = stringOrEmpty(task)
	s.Device = device.device()
	return &s, nil
}

func collectShifts(rows pgx.Rows) ([]domain.Shift, error) {
	defer rows.Close()
	shifts := make([]domain.Shift, 0)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *shift)
	}
	return shifts, rows.Err()
}

// CreateShift inserts a shift.
func (r *Repository) CreateShift(ctx context.Context, shift *domain.Shift) error {
	const query = `INSERT INTO shifts (` + shiftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	args := []any{
		shift.ID,
		string(shift.Type),
		shift.Start,
		shift.End,
		shift.TimezoneOffset,
		nilIfEmpty(shift.Name),
		shift.EmployeeID,
		nilIfEmpty(shift.TeamID),
		shift.OrganizationID,
		nilIfEmpty(shift.ProjectID),
		nilIfEmpty(shift.TaskID),
		shift.Paid,
		shift.PayRate,
		shift.OvertimePayRate,
		shift.OvertimeStart,
		shift.DeletedScreenshots,
	}
	_, err := r.pool.Exec(ctx, query, append(args, deviceArgs(shift.Device)...)...)
	return mapError(err)
}

// GetShiftByID fetches a shift.
func (r *Repository) GetShiftByID(ctx context.Context, id string) (*domain.Shift, error) {
	shift, err := scanShift(r.pool.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id))
	return shift, mapError(err)
}

// ListShifts lists shifts matching q, newest first.
func (r *Repository) ListShifts(ctx context.Context, q repository.ShiftQuery) ([]domain.Shift, error) {
	var c conditions
	c.scope(q.Scope, "organization_id", "employee_id")
	if q.FilterEmployeeID != "" {
		c.add("employee_id = $%d", q.FilterEmployeeID)
	}
	if q.ProjectID != "" {
		c.add("project_id = $%d", q.ProjectID)
	}
	if q.TaskID != "" {
		c.add("task_id = $%d", q.TaskID)
	}
	query := `SELECT ` + shiftColumns + ` FROM shifts` + c.where() + ` ORDER BY start_ms DESC, id` + c.window(q.Page)
	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, err
	}
	return collectShifts(rows)
}

// UpdateShift writes the end time and assignment of a shift.
func (r *Repository) UpdateShift(ctx context.Context, shift *domain.Shift) error {
	const query = `UPDATE shifts SET end_ms = $2, project_id = $3, task_id = $4 WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, shift.ID, shift.End, nilIfEmpty(shift.ProjectID), nilIfEmpty(shift.TaskID)))
}

// DeleteShift removes a shift; its screenshots cascade.
func (r *Repository) DeleteShift(ctx context.Context, id string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id))
}

// CompletedShifts returns closed shifts fully inside [Begin, End] matching every filter, oldest first.
func (r *Repository) CompletedShifts(ctx context.Context, q repository.ShiftRangeQuery) ([]domain.Shift, error) {
	var c conditions
	c.scope(q.Scope, "organization_id", "employee_id")
	c.raw("end_ms IS NOT NULL")
	c.add("start_ms >= $%d", q.Begin)
	c.add("end_ms <= $%d", q.End)
	for _, f := range []struct{ col, value string }{
		{"employee_id", q.FilterEmployeeID},
		{"team_id", q.TeamID},
		{"project_id", q.ProjectID},
		{"task_id", q.TaskID},
		{"id", q.ShiftID},
	} {
		if f.value != "" {
			c.add(f.col+" = $%d", f.value)
		}
	}
	query := `SELECT ` + shiftColumns + ` FROM shifts` + c.where() + ` ORDER BY start_ms, id`
	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, err
	}
	return collectShifts(rows)
}

const screenshotColumns = `id, timestamp_ms, employee_id, shift_id, organization_id, team_id, project_id, task_id,
	site, productivity, app, app_file_name, app_file_path, title, url, document, window_id, task_status, task_priority,
	name, perm_accessibility, perm_screen_recording, active, processed,
	device_user, device_domain, device_computer, device_hwid, device_os, device_os_version`

func scanScreenshot(row rowScanner) (*domain.Screenshot, error) {
	var (
		s                                                  domain.Screenshot
		team, project, task, site, app, fileName, filePath sql.NullString
		title, url, document, window, status, priority     sql.NullString
		name, access, capture                              sql.NullString
		device                                             deviceColumns
	)
	dest := []any{&s.ID, &s.Timestamp, &s.EmployeeID, &s.ShiftID, &s.OrganizationID, &team, &project, &task,
		&site, &s.Productivity, &app, &fileName, &filePath, &title, &url, &document, &window, &status, &priority,
		&name, &access, &capture, &s.Active, &s.Processed}
	if err := row.Scan(append(dest, device.targets()...)...); err != nil {
		return nil, err
	}
	s.TeamID = stringOrEmpty(team)
	s.ProjectID = stringOrEmpty(project)
	s.TaskID = stringOrEmpty(task)
	s.Site = stringOrEmpty(site)
	s.App = stringOrEmpty(app)
	s.AppFileName = stringOrEmpty(fileName)
	s.AppFilePath = stringOrEmpty(filePath)
	s.Title = stringOrEmpty(title)
	s.URL = stringOrEmpty(url)
	s.Document = stringOrEmpty(document)
	s.WindowID = stringOrEmpty(window)
	s.TaskStatus = stringOrEmpty(status)
	s.TaskPriority = stringOrEmpty(priority)
	s.Name = stringOrEmpty(name)
	s.SystemPermissions = permissions(access, capture)
	s.Device = device.device()
	return &s, nil
}

// CreateScreenshot inserts a screenshot. The shift must exist.
func (r *Repository) CreateScreenshot(ctx context.Context, shot *domain.Screenshot) error {
	const query = `INSERT INTO screenshots (` + screenshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30)`
	access, capture := permissionArgs(shot.SystemPermissions)
	args := []any{
		shot.ID,
		shot.Timestamp,
		shot.EmployeeID,
		shot.ShiftID,
		shot.OrganizationID,
		nilIfEmpty(shot.TeamID),
		nilIfEmpty(shot.ProjectID),
		nilIfEmpty(shot.TaskID),
		nilIfEmpty(shot.Site),
		shot.Productivity,
		nilIfEmpty(shot.App),
		nilIfEmpty(shot.AppFileName),
		nilIfEmpty(shot.AppFilePath),
		nilIfEmpty(shot.Title),
		nilIfEmpty(shot.URL),
		nilIfEmpty(shot.Document),
		nilIfEmpty(shot.WindowID),
		nilIfEmpty(shot.TaskStatus),
		nilIfEmpty(shot.TaskPriority),
		nilIfEmpty(shot.Name),
		access,
		capture,
		shot.Active,
		shot.Processed,
	}
	_, err := r.pool.Exec(ctx, query, append(args, deviceArgs(shot.Device)...)...)
	return mapError(err)
}

// GetScreenshotByID fetches a screenshot.
func (r *Repository) GetScreenshotByID(ctx context.Context, id string) (*domain.Screenshot, error) {
	shot, err := scanScreenshot(r.pool.QueryRow(ctx, `SELECT `+screenshotColumns+` FROM screenshots WHERE id = $1`, id))
	return shot, mapError(err)
}

// ListScreenshots lists screenshots in [Start, End] ordered by timestamp, honouring the cursor.
func (r *Repository) ListScreenshots(ctx context.Context, q repository.ScreenshotQuery) ([]domain.Screenshot, error) {
	query, args := screenshotListQuery(q)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shots := make([]domain.Screenshot, 0)
	for rows.Next() {
		shot, err := scanScreenshot(rows)
		if err != nil {
			return nil, err
		}
		shots = append(shots, *shot)
	}
	return shots, rows.Err()
}

// DeleteScreenshot removes the row and bumps its shift's deleted counter in one transaction.
func (r *Repository) DeleteScreenshot(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var shiftID string
	if err := tx.QueryRow(ctx, `DELETE FROM screenshots WHERE id = $1 RETURNING shift_id`, id).Scan(&shiftID); err != nil {
		return mapError(err)
	}
	const bump = `UPDATE shifts SET deleted_screenshots = COALESCE(deleted_screenshots, 0) + 1 WHERE id = $1`
	if _, err := tx.Exec(ctx, bump, shiftID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func screenshotListQuery(q repository.ScreenshotQuery) (string, []any) {
	var c conditions
	c.scope(q.Scope, "organization_id", "employee_id")
	c.add("timestamp_ms >= $%d", q.Start)
	c.add("timestamp_ms <= $%d", q.End)
	if len(q.TaskIDs) > 0 {
		c.add("task_id = ANY($%d)", q.TaskIDs)
	}
	if len(q.ShiftIDs) > 0 {
		c.add("shift_id = ANY($%d)", q.ShiftIDs)
	}
	if len(q.ProjectIDs) > 0 {
		c.add("project_id = ANY($%d)", q.ProjectIDs)
	}
	order := ` ORDER BY timestamp_ms ASC, id`
	if q.Descending {
		order = ` ORDER BY timestamp_ms DESC, id`
	}
	if q.After != nil {
		if q.Descending {
			c.add("timestamp_ms < $%d", *q.After)
		} else {
			c.add("timestamp_ms > $%d", *q.After)
		}
	}
	query := `SELECT ` + screenshotColumns + ` FROM screenshots` + c.where() + order
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", c.next(q.Limit))
	}
	return query, c.args
}
