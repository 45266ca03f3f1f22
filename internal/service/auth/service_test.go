package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository/memory"
	"github.com/splax/shiftwatch/pkg/config"
	"github.com/splax/shiftwatch/pkg/crypto"
	jwtpkg "github.com/splax/shiftwatch/pkg/jwt"
)

func testConfig() config.APIConfig {
	return config.APIConfig{
		SecretKey:           "test-secret",
		Algorithm:           "HS256",
		AccessTokenTTL:      time.Minute,
		APIKeyTTL:           time.Hour,
		APIKeyEncryptionKey: "test-secret",
		AdminEmail:          "Root@Example.com",
		AdminPassword:       "rootpass",
		AdminName:           "Root",
		OrganizationName:    "Acme",
	}
}

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc, err := New(store, store, store, slog.New(slog.NewTextHandler(io.Discard, nil)), testConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return svc, store
}

func seedEmployee(t *testing.T, store *memory.Store, id, email, password string) {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	err = store.CreateEmployee(context.Background(), &domain.Employee{
		ID: id, Email: email, Name: id, PasswordHash: hash, OrganizationID: "wo1", TeamID: "wm1", Type: domain.EmployeePersonal,
	})
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
}

func TestBootstrapCreatesOrganizationAndAdminOnce(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	admin, err := svc.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if admin == nil || admin.Email != "root@example.com" {
		t.Fatalf("unexpected admin %+v", admin)
	}
	org, err := store.GetOrganizationByName(ctx, "Acme")
	if err != nil || org.ID != admin.OrganizationID {
		t.Fatalf("organization not created: %v", err)
	}

	again, err := svc.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("second Bootstrap returned error: %v", err)
	}
	if again.ID != admin.ID {
		t.Fatalf("expected existing admin %s, got %s", admin.ID, again.ID)
	}
}

func TestAdminLoginAndResolve(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin, err := svc.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}

	if _, err := svc.AdminLogin(ctx, "root@example.com", "wrong"); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("expected bad credentials, got %v", err)
	}
	token, err := svc.AdminLogin(ctx, " ROOT@example.com ", "rootpass")
	if err != nil {
		t.Fatalf("AdminLogin returned error: %v", err)
	}
	if token.TokenType != "bearer" || token.AccessToken == "" {
		t.Fatalf("unexpected token %+v", token)
	}

	p, err := svc.Resolve(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !p.IsAdmin() || p.ID != admin.ID || p.OrganizationID != admin.OrganizationID || p.TokenKind != domain.TokenAccess {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestResolvePrefersAdminOverEmployee(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	if err := store.CreateAdmin(ctx, &domain.Admin{ID: "shared", Email: "a@example.com", OrganizationID: "wo1"}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	seedEmployee(t, store, "shared", "e@example.com", "pw")

	token, err := svc.IssueAccessToken("shared")
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}
	p, err := svc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if p.Kind != domain.PrincipalAdmin {
		t.Fatalf("expected admin principal, got %s", p.Kind)
	}
}

func TestEmployeeLoginResolveAndDeactivation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, store, "we1", "emp@example.com", "secret")

	token, err := svc.Login(ctx, "emp@example.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	p, err := svc.Resolve(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !p.IsEmployee() || p.TeamID != "wm1" {
		t.Fatalf("unexpected principal %+v", p)
	}

	if err := store.SetEmployeeDeactivated(ctx, "we1", 1); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Resolve(ctx, token.AccessToken); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("expected deactivated employee to be rejected, got %v", err)
	}
	if _, err := svc.Login(ctx, "emp@example.com", "secret"); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("expected deactivated login to fail, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Login(context.Background(), "nobody@example.com", "x")
	appErr, ok := apperr.As(err)
	if !ok || appErr.Message != "Incorrect email or password" {
		t.Fatalf("expected bad credentials, got %v", err)
	}
}

func TestResolveRejectsBadTokens(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedEmployee(t, store, "we1", "emp@example.com", "secret")

	other, err := jwtpkg.NewCodec("other-secret", "HS256")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	forged, _ := other.Generate("we1", jwtpkg.KindAccess, time.Minute)
	ghost, _ := svc.IssueAccessToken("missing")

	for name, bearer := range map[string]string{
		"empty":   "",
		"garbage": "not-a-token",
		"forged":  forged,
		"unknown": ghost,
	} {
		if _, err := svc.Resolve(ctx, bearer); !apperr.Is(err, apperr.KindUnauthenticated) {
			t.Fatalf("%s: expected unauthenticated, got %v", name, err)
		}
	}
}

func TestAPIKeyResolutionAndRevocation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}

	first, err := svc.IssueAPIKey(ctx, "root@example.com", "rootpass")
	if err != nil {
		t.Fatalf("IssueAPIKey returned error: %v", err)
	}
	if _, err := svc.Resolve(ctx, first.APIKey); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("api key must not pass where only access tokens are accepted, got %v", err)
	}
	p, err := svc.Resolve(ctx, first.APIKey, domain.TokenAccess, domain.TokenAPIKey)
	if err != nil {
		t.Fatalf("Resolve api key returned error: %v", err)
	}
	if p.TokenKind != domain.TokenAPIKey || !p.IsAdmin() {
		t.Fatalf("unexpected principal %+v", p)
	}

	second, err := svc.IssueAPIKey(ctx, "root@example.com", "rootpass")
	if err != nil {
		t.Fatalf("second IssueAPIKey returned error: %v", err)
	}
	if _, err := svc.Resolve(ctx, first.APIKey, domain.TokenAPIKey); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("expected revoked key to be rejected, got %v", err)
	}
	if _, err := svc.Resolve(ctx, second.APIKey, domain.TokenAPIKey); err != nil {
		t.Fatalf("expected current key to resolve, got %v", err)
	}
}

func TestAPIKeyForEmployeeSubjectRejected(t *testing.T) {
	svc, store := newTestService(t)
	seedEmployee(t, store, "we1", "emp@example.com", "secret")
	codec, err := jwtpkg.NewCodec("test-secret", "HS256")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	key, err := codec.Generate("we1", jwtpkg.KindAPIKey, time.Minute)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), key, domain.TokenAPIKey); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("expected employee api key to be rejected, got %v", err)
	}
}
