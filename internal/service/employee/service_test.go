package employee

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/internal/repository/memory"
	"github.com/splax/shiftwatch/internal/service/membership"
	"github.com/splax/shiftwatch/pkg/crypto"
)

var (
	admin = domain.Principal{Kind: domain.PrincipalAdmin, ID: "wa1", OrganizationID: "wo1"}
	alien = domain.Principal{Kind: domain.PrincipalAdmin, ID: "wa9", OrganizationID: "wo2"}
)

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	for _, p := range []domain.Project{
		{ID: "wp1", Name: "Alpha", OrganizationID: "wo1"},
		{ID: "wp2", Name: "Beta", OrganizationID: "wo1"},
		{ID: "wp-foreign", Name: "Other", OrganizationID: "wo2"},
	} {
		project := p
		if err := store.CreateProject(ctx, &project); err != nil {
			t.Fatalf("seed project: %v", err)
		}
	}
	_ = store.CreateTeam(ctx, &domain.Team{ID: "wm1", Name: "Core", OrganizationID: "wo1"})
	_ = store.CreateTeam(ctx, &domain.Team{ID: "wm-foreign", Name: "Else", OrganizationID: "wo2"})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, store, membership.New(store, logger), logger), store
}

func TestCreateLinksValidProjectsOnly(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin, CreateInput{
		Email:    "Worker@Example.com",
		Name:     "Worker",
		TeamID:   "wm1",
		Projects: []string{"wp1", "missing", "wp-foreign", "wp1"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Invited == nil || created.Type != domain.EmployeePersonal || created.TeamID != "wm1" {
		t.Fatalf("unexpected employee %+v", created)
	}
	if len(created.Projects) != 1 || created.Projects[0] != "wp1" {
		t.Fatalf("expected only wp1 linked, got %v", created.Projects)
	}
	stored, err := store.GetEmployeeByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetEmployeeByID: %v", err)
	}
	if len(stored.Projects) != 1 || stored.Projects[0] != "wp1" {
		t.Fatalf("expected stored projects [wp1], got %v", stored.Projects)
	}
	project, _ := store.GetProjectByID(ctx, "wp1")
	if len(project.Employees) != 1 || project.Employees[0] != created.ID {
		t.Fatalf("expected project to list the employee, got %v", project.Employees)
	}
}

func TestCreateRejectsDuplicatesAndForeignReferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, admin, CreateInput{Email: "a@example.com", Name: "A"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	_, err := svc.Create(ctx, admin, CreateInput{Email: "A@example.com", Name: "A again"})
	if appErr, ok := apperr.As(err); !ok || appErr.Status != http.StatusBadRequest {
		t.Fatalf("expected duplicate email 400, got %v", err)
	}
	if _, err := svc.Create(ctx, admin, CreateInput{Email: "b@example.com", Name: "B", OrganizationID: "wo2"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden organization, got %v", err)
	}
	if _, err := svc.Create(ctx, admin, CreateInput{Email: "c@example.com", Name: "C", TeamID: "wm-foreign"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden team, got %v", err)
	}
}

func TestUpdateReplacesProjects(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, admin, CreateInput{Email: "w@example.com", Name: "W", Projects: []string{"wp1"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	projects := []string{"wp2"}
	updated, err := svc.Update(ctx, admin, created.ID, UpdateInput{Projects: &projects})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(updated.Projects) != 1 || updated.Projects[0] != "wp2" {
		t.Fatalf("unexpected projects %v", updated.Projects)
	}
	old, _ := store.GetProjectByID(ctx, "wp1")
	if len(old.Employees) != 0 {
		t.Fatalf("expected wp1 membership cleared, got %v", old.Employees)
	}
}

func TestEmployeeSelfAccess(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, admin, CreateInput{Email: "self@example.com", Name: "Self"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	self := domain.Principal{Kind: domain.PrincipalEmployee, ID: created.ID, OrganizationID: "wo1"}
	other := domain.Principal{Kind: domain.PrincipalEmployee, ID: "we-other", OrganizationID: "wo1"}

	if _, err := svc.Get(ctx, self, created.ID); err != nil {
		t.Fatalf("expected self read, got %v", err)
	}
	if _, err := svc.Get(ctx, other, created.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected other employee to be refused, got %v", err)
	}
	if _, err := svc.Get(ctx, alien, created.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected foreign admin to be refused, got %v", err)
	}
	if err := svc.SetPassword(ctx, self, created.ID, "newpass"); err != nil {
		t.Fatalf("SetPassword returned error: %v", err)
	}
	name := "Renamed"
	if _, err := svc.Update(ctx, self, created.ID, UpdateInput{Name: &name}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected employees not to edit records, got %v", err)
	}
}

func TestSetPasswordValidatesLength(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.SetPassword(context.Background(), admin, "we1", "abc"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetPasswordHashes(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	created, _ := svc.Create(ctx, admin, CreateInput{Email: "p@example.com", Name: "P"})
	if err := svc.SetPassword(ctx, admin, created.ID, "hunter22"); err != nil {
		t.Fatalf("SetPassword returned error: %v", err)
	}
	stored, _ := store.GetEmployeeByID(ctx, created.ID)
	if !crypto.VerifyPassword(stored.PasswordHash, "hunter22") {
		t.Fatalf("password hash not stored")
	}
}

func TestDeactivateTwiceConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, _ := svc.Create(ctx, admin, CreateInput{Email: "d@example.com", Name: "D"})

	deactivated, err := svc.Deactivate(ctx, admin, created.ID)
	if err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	if deactivated.Deactivated == nil {
		t.Fatalf("expected deactivation timestamp")
	}
	_, err = svc.Deactivate(ctx, admin, created.ID)
	if appErr, ok := apperr.As(err); !ok || appErr.Status != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestListRequiresAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, _ = svc.Create(ctx, admin, CreateInput{Email: "l@example.com", Name: "L"})
	list, err := svc.List(ctx, admin, repository.Page{})
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected list %v err=%v", list, err)
	}
	worker := domain.Principal{Kind: domain.PrincipalEmployee, ID: list[0].ID, OrganizationID: "wo1"}
	if _, err := svc.List(ctx, worker, repository.Page{}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
