package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.OrganizationRepository = (*Repository)(nil)
	_ repository.AdminRepository        = (*Repository)(nil)
	_ repository.EmployeeRepository     = (*Repository)(nil)
	_ repository.TeamRepository         = (*Repository)(nil)
	_ repository.ProjectRepository      = (*Repository)(nil)
	_ repository.TaskRepository         = (*Repository)(nil)
	_ repository.MembershipRepository   = (*Repository)(nil)
	_ repository.ShiftRepository        = (*Repository)(nil)
	_ repository.ScreenshotRepository   = (*Repository)(nil)
)

// Ping checks connectivity for readiness probes.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return repository.ErrDuplicate
		case "23503":
			return repository.ErrNotFound
		case "23514", "22P02":
			return repository.ErrInvalidArgument
		}
	}
	return err
}

// affected converts a zero-row write into ErrNotFound.
func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// conditions accumulates AND-joined predicates with positional arguments.
// Each clause carries a single %d verb for its placeholder index.
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) add(clause string, arg any) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(clause, len(c.args)))
}

// raw appends a clause without an argument.
func (c *conditions) raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

// next reserves a placeholder for arg and returns its index.
func (c *conditions) next(arg any) int {
	c.args = append(c.args, arg)
	return len(c.args)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func (c *conditions) scope(scope repository.Scope, orgCol, employeeCol string) {
	c.add(orgCol+" = $%d", scope.OrganizationID)
	if scope.EmployeeID != "" {
		c.add(employeeCol+" = $%d", scope.EmployeeID)
	}
}

func (c *conditions) window(page repository.Page) string {
	page = page.Normalized()
	limit := c.next(page.Limit)
	offset := c.next(page.Skip)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", limit, offset)
}

func nilIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func stringOrEmpty(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func permissions(accessibility, screen sql.NullString) *domain.SystemPermissions {
	if !accessibility.Valid && !screen.Valid {
		return nil
	}
	return &domain.SystemPermissions{
		Accessibility:                 accessibility.String,
		ScreenAndSystemAudioRecording: screen.String,
	}
}

func permissionArgs(p *domain.SystemPermissions) (any, any) {
	if p == nil {
		return nil, nil
	}
	return nilIfEmpty(p.Accessibility), nilIfEmpty(p.ScreenAndSystemAudioRecording)
}

func names(ctx context.Context, q querier, table string, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `SELECT id, name FROM `+table+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}
