package membership

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
)

type stubMembershipRepository struct {
	orgs    map[string]string
	links   map[string][]string
	lookups int
	failOn  string
}

func newStubMembershipRepository() *stubMembershipRepository {
	return &stubMembershipRepository{orgs: map[string]string{}, links: map[string][]string{}}
}

func (s *stubMembershipRepository) OrganizationOf(_ context.Context, _ domain.EntityKind, id string) (string, error) {
	s.lookups++
	if id == s.failOn {
		return "", errors.New("connection reset")
	}
	org, ok := s.orgs[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	return org, nil
}

func (s *stubMembershipRepository) ReplaceLinks(_ context.Context, link domain.Link, ownerID string, ids []string) error {
	s.links[string(link)+":"+ownerID] = append([]string(nil), ids...)
	return nil
}

func (s *stubMembershipRepository) AddLinks(_ context.Context, link domain.Link, ownerID string, ids []string) error {
	key := string(link) + ":" + ownerID
	existing := s.links[key]
	for _, id := range ids {
		found := false
		for _, cur := range existing {
			if cur == id {
				found = true
			}
		}
		if !found {
			existing = append(existing, id)
		}
	}
	s.links[key] = existing
	return nil
}

func newService(repo *stubMembershipRepository) Service {
	return New(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestReplaceSkipsMissingAndForeignCandidates(t *testing.T) {
	repo := newStubMembershipRepository()
	repo.orgs["we1"] = "wo1"
	repo.orgs["we2"] = "wo2"
	repo.orgs["we3"] = "wo1"
	svc := newService(repo)

	applied, err := svc.Replace(context.Background(), "wo1", domain.LinkProjectEmployees, "wp1", []string{"we1", "missing", "we2", "we3"})
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	if len(applied) != 2 || applied[0] != "we1" || applied[1] != "we3" {
		t.Fatalf("unexpected applied ids %v", applied)
	}
	if got := repo.links["project.employees:wp1"]; len(got) != 2 {
		t.Fatalf("unexpected stored links %v", got)
	}
}

func TestReplaceIsIdempotent(t *testing.T) {
	repo := newStubMembershipRepository()
	repo.orgs["we1"] = "wo1"
	repo.orgs["we2"] = "wo1"
	svc := newService(repo)

	for i := 0; i < 2; i++ {
		if _, err := svc.Replace(context.Background(), "wo1", domain.LinkTaskEmployees, "wt1", []string{"we1", "we2", "we1"}); err != nil {
			t.Fatalf("Replace returned error: %v", err)
		}
	}
	got := repo.links["task.employees:wt1"]
	if len(got) != 2 || got[0] != "we1" || got[1] != "we2" {
		t.Fatalf("expected {we1, we2}, got %v", got)
	}
}

func TestReplaceWithNoValidCandidatesClearsSet(t *testing.T) {
	repo := newStubMembershipRepository()
	repo.links["project.teams:wp1"] = []string{"wm1"}
	svc := newService(repo)

	applied, err := svc.Replace(context.Background(), "wo1", domain.LinkProjectTeams, "wp1", []string{"gone"})
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	if len(applied) != 0 || len(repo.links["project.teams:wp1"]) != 0 {
		t.Fatalf("expected cleared set, got applied=%v stored=%v", applied, repo.links["project.teams:wp1"])
	}
}

func TestAddKeepsExistingLinks(t *testing.T) {
	repo := newStubMembershipRepository()
	repo.orgs["wp2"] = "wo1"
	repo.links["employee.projects:we1"] = []string{"wp1"}
	svc := newService(repo)

	if _, err := svc.Add(context.Background(), "wo1", domain.LinkEmployeeProjects, "we1", []string{"wp2", "wp1"}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	got := repo.links["employee.projects:we1"]
	if len(got) != 2 {
		t.Fatalf("expected two links, got %v", got)
	}
}

func TestLookupFailurePropagates(t *testing.T) {
	repo := newStubMembershipRepository()
	repo.failOn = "we1"
	svc := newService(repo)
	if _, err := svc.Replace(context.Background(), "wo1", domain.LinkTaskEmployees, "wt1", []string{"we1"}); err == nil {
		t.Fatalf("expected lookup failure to propagate")
	}
}

func TestUnknownLinkRejected(t *testing.T) {
	svc := newService(newStubMembershipRepository())
	if _, err := svc.Add(context.Background(), "wo1", domain.Link("bogus"), "x", []string{"a"}); !errors.Is(err, errUnknownLink) {
		t.Fatalf("expected errUnknownLink, got %v", err)
	}
}

func TestRequireOwned(t *testing.T) {
	repo := newStubMembershipRepository()
	repo.orgs["wp1"] = "wo1"
	repo.orgs["wp2"] = "wo2"
	svc := newService(repo)
	admin := domain.Principal{Kind: domain.PrincipalAdmin, ID: "wa1", OrganizationID: "wo1"}
	ctx := context.Background()

	if err := svc.RequireOwned(ctx, admin, domain.EntityProject, "wp1", "missing", ""); err != nil {
		t.Fatalf("expected own and missing ids to pass, got %v", err)
	}
	if err := svc.RequireOwned(ctx, admin, domain.EntityProject, "wp1", "wp2"); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for foreign project, got %v", err)
	}
	repo.failOn = "wp3"
	if err := svc.RequireOwned(ctx, admin, domain.EntityProject, "wp3"); err == nil || apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected lookup failure to propagate, got %v", err)
	}
}
