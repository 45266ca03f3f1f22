package team

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/internal/repository/memory"
)

func TestTeamLifecycle(t *testing.T) {
	store := memory.New()
	svc := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	admin := domain.Principal{Kind: domain.PrincipalAdmin, ID: "wa1", OrganizationID: "wo1"}

	if _, err := svc.Create(ctx, admin, CreateInput{Name: "  <i></i> "}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	team, err := svc.Create(ctx, admin, CreateInput{Name: "Platform"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	member := domain.Principal{Kind: domain.PrincipalEmployee, ID: "we1", OrganizationID: "wo1", TeamID: team.ID}
	stranger := domain.Principal{Kind: domain.PrincipalEmployee, ID: "we2", OrganizationID: "wo1"}
	if _, err := svc.Get(ctx, member, team.ID); err != nil {
		t.Fatalf("expected member to read own team, got %v", err)
	}
	if _, err := svc.Get(ctx, stranger, team.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Create(ctx, member, CreateInput{Name: "Rogue"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected employees not to create teams, got %v", err)
	}

	teams, err := svc.List(ctx, admin, repository.Page{})
	if err != nil || len(teams) != 1 {
		t.Fatalf("unexpected teams %v err=%v", teams, err)
	}
	if _, err := svc.Get(ctx, admin, "wm-missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
