package project

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/internal/repository/memory"
	"github.com/splax/shiftwatch/internal/service/membership"
)

var admin = domain.Principal{Kind: domain.PrincipalAdmin, ID: "wa1", OrganizationID: "wo1"}

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	for _, e := range []domain.Employee{
		{ID: "we1", Email: "one@example.com", OrganizationID: "wo1", TeamID: "wm1"},
		{ID: "we2", Email: "two@example.com", OrganizationID: "wo1"},
		{ID: "we-foreign", Email: "x@example.com", OrganizationID: "wo2"},
	} {
		employee := e
		if err := store.CreateEmployee(ctx, &employee); err != nil {
			t.Fatalf("seed employee: %v", err)
		}
	}
	_ = store.CreateTeam(ctx, &domain.Team{ID: "wm1", Name: "Core", OrganizationID: "wo1"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, membership.New(store, logger), logger), store
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	project, err := svc.Create(context.Background(), admin, CreateInput{Name: "Apollo", Employees: []string{"we1", "we-foreign"}, Teams: []string{"wm1", "nope"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !project.Billable || !project.ScreenshotSettings.ScreenshotEnabled || project.CreatorID != admin.ID {
		t.Fatalf("unexpected defaults %+v", project)
	}
	if len(project.Statuses) != 4 || len(project.Priorities) != 3 {
		t.Fatalf("expected default vocabularies, got %v %v", project.Statuses, project.Priorities)
	}
	if len(project.Employees) != 1 || project.Employees[0] != "we1" {
		t.Fatalf("unexpected employees %v", project.Employees)
	}
	if len(project.Teams) != 1 || project.Teams[0] != "wm1" {
		t.Fatalf("unexpected teams %v", project.Teams)
	}
}

func TestCreateRequiresAdminOfOrganization(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	worker := domain.Principal{Kind: domain.PrincipalEmployee, ID: "we1", OrganizationID: "wo1"}

	_, err := svc.Create(ctx, worker, CreateInput{Name: "Nope"})
	if appErr, ok := apperr.As(err); !ok || appErr.Message != "Only admins can create projects" {
		t.Fatalf("expected admin only refusal, got %v", err)
	}
	if _, err := svc.Create(ctx, admin, CreateInput{Name: "Elsewhere", OrganizationID: "wo2"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden organization, got %v", err)
	}
}

func TestEmployeeVisibility(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	direct, _ := svc.Create(ctx, admin, CreateInput{Name: "Direct", Employees: []string{"we2"}})
	viaTeam, _ := svc.Create(ctx, admin, CreateInput{Name: "Team", Teams: []string{"wm1"}})
	_, _ = svc.Create(ctx, admin, CreateInput{Name: "Hidden"})

	teamMember := domain.Principal{Kind: domain.PrincipalEmployee, ID: "we1", OrganizationID: "wo1", TeamID: "wm1"}
	list, err := svc.List(ctx, teamMember, repository.Page{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].ID != viaTeam.ID {
		t.Fatalf("expected only the team project, got %+v", list)
	}
	if _, err := svc.Get(ctx, teamMember, direct.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	all, _ := svc.List(ctx, admin, repository.Page{})
	if len(all) != 3 {
		t.Fatalf("expected admin to see 3 projects, got %d", len(all))
	}
}

func TestUpdateReplacesMembersAndDeleteCascades(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	project, _ := svc.Create(ctx, admin, CreateInput{Name: "Apollo", Employees: []string{"we1"}})
	if err := store.CreateTask(ctx, &domain.Task{ID: "wt1", ProjectID: project.ID, OrganizationID: "wo1"}); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	employees := []string{"we2"}
	archived := true
	updated, err := svc.Update(ctx, admin, project.ID, UpdateInput{Employees: &employees, Archived: &archived})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !updated.Archived || len(updated.Employees) != 1 || updated.Employees[0] != "we2" {
		t.Fatalf("unexpected update %+v", updated)
	}
	stale, _ := store.GetEmployeeByID(ctx, "we1")
	if len(stale.Projects) != 0 {
		t.Fatalf("expected we1 unlinked, got %v", stale.Projects)
	}

	if _, err := svc.Delete(ctx, admin, project.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.GetTaskByID(ctx, "wt1"); err != repository.ErrNotFound {
		t.Fatalf("expected task cascade, got %v", err)
	}
	if _, err := svc.Get(ctx, admin, project.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
