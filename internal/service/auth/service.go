package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/pkg/config"
	"github.com/splax/shiftwatch/pkg/crypto"
	"github.com/splax/shiftwatch/pkg/ids"
	jwtpkg "github.com/splax/shiftwatch/pkg/jwt"
	"github.com/splax/shiftwatch/pkg/text"
)

// Service handles login, API keys and bearer resolution.
type Service struct {
	orgs      repository.OrganizationRepository
	admins    repository.AdminRepository
	employees repository.EmployeeRepository
	codec     jwtpkg.Codec
	sealer    crypto.Sealer
	logger    *slog.Logger
	cfg       config.APIConfig
}

// New constructs a Service.
func New(orgs repository.OrganizationRepository, admins repository.AdminRepository, employees repository.EmployeeRepository, logger *slog.Logger, cfg config.APIConfig) (Service, error) {
	codec, err := jwtpkg.NewCodec(cfg.SecretKey, cfg.Algorithm)
	if err != nil {
		return Service{}, err
	}
	return Service{
		orgs:      orgs,
		admins:    admins,
		employees: employees,
		codec:     codec,
		sealer:    crypto.NewSealer(cfg.APIKeyEncryptionKey),
		logger:    logger,
		cfg:       cfg,
	}, nil
}

// Token is the OAuth2 style login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AdminWithAPIKey is returned once, when an API key is issued.
type AdminWithAPIKey struct {
	domain.Admin
	APIKey string `json:"api_key"`
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnCompare spends one bcrypt comparison so unknown emails cost as much as wrong passwords.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = crypto.HashPassword("shiftwatch-timing-guard")
	})
	crypto.VerifyPassword(dummyHash, password)
}

// Login authenticates an employee and issues an access token.
func (s Service) Login(ctx context.Context, email, password string) (Token, error) {
	employee, err := s.employees.GetEmployeeByEmail(ctx, text.Email(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			burnCompare(password)
			return Token{}, apperr.BadCredentials()
		}
		return Token{}, err
	}
	if !crypto.VerifyPassword(employee.PasswordHash, password) || !employee.Active() {
		return Token{}, apperr.BadCredentials()
	}
	token, err := s.issue(employee.ID, jwtpkg.KindAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return Token{}, err
	}
	s.logger.Info("employee logged in", "employee_id", employee.ID)
	return token, nil
}

// AdminLogin authenticates an admin and issues an access token.
func (s Service) AdminLogin(ctx context.Context, email, password string) (Token, error) {
	admin, err := s.authenticateAdmin(ctx, email, password)
	if err != nil {
		return Token{}, err
	}
	token, err := s.issue(admin.ID, jwtpkg.KindAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return Token{}, err
	}
	s.logger.Info("admin logged in", "admin_id", admin.ID)
	return token, nil
}

// IssueAPIKey authenticates an admin and replaces their long lived API key.
// Previously issued keys stop resolving.
func (s Service) IssueAPIKey(ctx context.Context, email, password string) (AdminWithAPIKey, error) {
	admin, err := s.authenticateAdmin(ctx, email, password)
	if err != nil {
		return AdminWithAPIKey{}, err
	}
	key, err := s.codec.Generate(admin.ID, jwtpkg.KindAPIKey, s.cfg.APIKeyTTL)
	if err != nil {
		return AdminWithAPIKey{}, fmt.Errorf("sign api key: %w", err)
	}
	sealed, err := s.sealer.Seal(key)
	if err != nil {
		return AdminWithAPIKey{}, fmt.Errorf("seal api key: %w", err)
	}
	if err := s.admins.SetAdminAPIKey(ctx, admin.ID, sealed); err != nil {
		return AdminWithAPIKey{}, err
	}
	admin.SealedAPIKey = sealed
	s.logger.Info("admin api key issued", "admin_id", admin.ID)
	return AdminWithAPIKey{Admin: *admin, APIKey: key}, nil
}

func (s Service) authenticateAdmin(ctx context.Context, email, password string) (*domain.Admin, error) {
	admin, err := s.admins.GetAdminByEmail(ctx, text.Email(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			burnCompare(password)
			return nil, apperr.BadCredentials()
		}
		return nil, err
	}
	if !crypto.VerifyPassword(admin.PasswordHash, password) {
		return nil, apperr.BadCredentials()
	}
	return admin, nil
}

// Resolve turns a bearer credential into a Principal. accepted lists the token kinds the
// caller allows; when empty only access tokens are accepted. Admins are matched before employees.
func (s Service) Resolve(ctx context.Context, bearer string, accepted ...domain.TokenKind) (domain.Principal, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return domain.Principal{}, apperr.Unauthenticated()
	}
	claims, err := s.codec.Parse(bearer)
	if err != nil {
		s.logger.Debug("token rejected", "error", err)
		return domain.Principal{}, apperr.Unauthenticated()
	}
	kind := domain.TokenKind(claims.Kind())
	if !kindAccepted(kind, accepted) {
		return domain.Principal{}, apperr.Unauthenticated()
	}

	admin, err := s.admins.GetAdminByID(ctx, claims.Subject)
	switch {
	case err == nil:
		if kind == domain.TokenAPIKey && !s.sealer.Matches(admin.SealedAPIKey, bearer) {
			return domain.Principal{}, apperr.Unauthenticated()
		}
		return domain.Principal{Kind: domain.PrincipalAdmin, ID: admin.ID, OrganizationID: admin.OrganizationID, TokenKind: kind}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Principal{}, err
	}

	if kind == domain.TokenAPIKey {
		return domain.Principal{}, apperr.Unauthenticated()
	}
	employee, err := s.employees.GetEmployeeByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Principal{}, apperr.Unauthenticated()
		}
		return domain.Principal{}, err
	}
	if !employee.Active() {
		return domain.Principal{}, apperr.Unauthenticated()
	}
	return domain.Principal{
		Kind:           domain.PrincipalEmployee,
		ID:             employee.ID,
		OrganizationID: employee.OrganizationID,
		TeamID:         employee.TeamID,
		TokenKind:      kind,
	}, nil
}

func kindAccepted(kind domain.TokenKind, accepted []domain.TokenKind) bool {
	if len(accepted) == 0 {
		return kind == domain.TokenAccess
	}
	for _, k := range accepted {
		if k == kind {
			return true
		}
	}
	return false
}

// Bootstrap ensures the configured admin and its organization exist.
func (s Service) Bootstrap(ctx context.Context) (*domain.Admin, error) {
	email := text.Email(s.cfg.AdminEmail)
	if email == "" || s.cfg.AdminPassword == "" {
		s.logger.Info("admin bootstrap skipped", "reason", "credentials not configured")
		return nil, nil
	}
	existing, err := s.admins.GetAdminByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UnixMilli()
	org, err := s.orgs.GetOrganizationByName(ctx, s.cfg.OrganizationName)
	if errors.Is(err, repository.ErrNotFound) {
		org = &domain.Organization{ID: ids.New(ids.Organization), Name: s.cfg.OrganizationName, CreatedAt: now}
		if err := s.orgs.CreateOrganization(ctx, org); err != nil {
			return nil, fmt.Errorf("create organization: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(s.cfg.AdminPassword)
	if err != nil {
		return nil, err
	}
	admin := &domain.Admin{
		ID:             ids.New(ids.Admin),
		Email:          email,
		Name:           text.Clean(s.cfg.AdminName),
		PasswordHash:   hash,
		OrganizationID: org.ID,
		CreatedAt:      now,
	}
	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		return nil, fmt.Errorf("create bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", "admin_id", admin.ID, "organization_id", org.ID)
	return admin, nil
}

func (s Service) issue(subject, kind string, ttl time.Duration) (Token, error) {
	access, err := s.codec.Generate(subject, kind, ttl)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: access, TokenType: "bearer"}, nil
}

// IssueAccessToken signs an access token for subject. Used by tests and tooling.
func (s Service) IssueAccessToken(subject string) (string, error) {
	token, err := s.issue(subject, jwtpkg.KindAccess, s.cfg.AccessTokenTTL)
	return token.AccessToken, err
}
