package admin

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
	"github.com/splax/shiftwatch/pkg/crypto"
)

var (
	root     = domain.Principal{Kind: domain.PrincipalAdmin, ID: "wa-root", OrganizationID: "wo1"}
	outsider = domain.Principal{Kind: domain.PrincipalAdmin, ID: "wa-out", OrganizationID: "wo2"}
	worker   = domain.Principal{Kind: domain.PrincipalEmployee, ID: "we1", OrganizationID: "wo1"}
)

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	if err := store.CreateAdmin(context.Background(), &domain.Admin{ID: root.ID, Email: "root@example.com", OrganizationID: "wo1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestCreateAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, root, CreateInput{Email: " New@Example.com", Name: "<b>Ada</b>", Password: "secret1"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Email != "new@example.com" || created.Name != "Ada" || created.OrganizationID != "wo1" {
		t.Fatalf("unexpected admin %+v", created)
	}
	if !crypto.VerifyPassword(created.PasswordHash, "secret1") {
		t.Fatalf("password not hashed")
	}

	_, err = svc.Create(ctx, root, CreateInput{Email: "new@example.com", Name: "Dup", Password: "secret1"})
	if appErr, ok := apperr.As(err); !ok || appErr.Status != http.StatusBadRequest {
		t.Fatalf("expected duplicate email 400, got %v", err)
	}

	_, err = svc.Create(ctx, root, CreateInput{Email: "x@example.com", Name: "X", Password: "secret1", OrganizationID: "wo2"})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for foreign organization, got %v", err)
	}

	if _, err := svc.Create(ctx, worker, CreateInput{Email: "y@example.com", Name: "Y", Password: "secret1"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected employees to be refused, got %v", err)
	}
}

func TestDeleteSelfIsConflict(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Delete(context.Background(), root, root.ID)
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindConflict || appErr.Status != http.StatusBadRequest || appErr.Message != "Cannot delete yourself" {
		t.Fatalf("expected self delete conflict, got %v", err)
	}
}

func TestDeleteAndGet(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	if err := store.CreateAdmin(ctx, &domain.Admin{ID: "wa2", Email: "two@example.com", OrganizationID: "wo1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.Get(ctx, outsider, "wa2"); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected cross organization read to be forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, root, "wa2"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(ctx, root, "wa2"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestUpdateRehashesPassword(t *testing.T) {
	svc, _ := newTestService(t)
	pw := "another1"
	name := "Root Renamed"
	updated, err := svc.Update(context.Background(), root, root.ID, UpdateInput{Name: &name, Password: &pw})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != name || !crypto.VerifyPassword(updated.PasswordHash, pw) {
		t.Fatalf("unexpected update result %+v", updated)
	}
}

func TestListScopedToOrganization(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_ = store.CreateAdmin(ctx, &domain.Admin{ID: "wa-other", Email: "other@example.com", OrganizationID: "wo2"})

	admins, err := svc.List(ctx, root, repository.Page{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(admins) != 1 || admins[0].ID != root.ID {
		t.Fatalf("unexpected admins %+v", admins)
	}
	if _, err := svc.List(ctx, worker, repository.Page{}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected employees to be refused, got %v", err)
	}
}
