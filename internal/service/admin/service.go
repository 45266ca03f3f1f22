package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/policy"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/pkg/crypto"
	"github.com/splax/shiftwatch/pkg/ids"
	"github.com/splax/shiftwatch/pkg/text"
)

// CreateInput carries a new admin.
type CreateInput struct {
	Email          string `json:"email" validate:"required,email"`
	Name           string `json:"name" validate:"required,max=200"`
	Password       string `json:"password" validate:"required,min=6"`
	OrganizationID string `json:"organizationId"`
}

// UpdateInput carries a partial admin update; nil fields are left alone.
type UpdateInput struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

var errDuplicateEmail = apperr.Conflict(http.StatusBadRequest, "Email already registered")

// Service manages organization admins.
type Service struct {
	repo   repository.AdminRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(repo repository.AdminRepository, logger *slog.Logger) Service {
	return Service{repo: repo, logger: logger}
}

// Create adds an admin to the caller's organization.
func (s Service) Create(ctx context.Context, p domain.Principal, in CreateInput) (*domain.Admin, error) {
	orgID := strings.TrimSpace(in.OrganizationID)
	if orgID == "" {
		orgID = p.OrganizationID
	}
	if err := policy.Admin(p, policy.Create, domain.Admin{OrganizationID: orgID}).Err(); err != nil {
		return nil, err
	}
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	admin := &domain.Admin{
		ID:             ids.New(ids.Admin),
		Email:          text.Email(in.Email),
		Name:           text.Clean(in.Name),
		PasswordHash:   hash,
		OrganizationID: orgID,
		CreatedAt:      time.Now().UnixMilli(),
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDuplicateEmail
		}
		return nil, err
	}
	s.logger.Info("admin created", "admin_id", admin.ID, "organization_id", orgID, "by", p.ID)
	return admin, nil
}

// List returns the admins of the caller's organization.
func (s Service) List(ctx context.Context, p domain.Principal, page repository.Page) ([]domain.Admin, error) {
	if err := policy.AdminOnly(p, "Only admins can list admins").Err(); err != nil {
		return nil, err
	}
	return s.repo.ListAdmins(ctx, p.OrganizationID, page.Normalized())
}

// Get returns one admin.
func (s Service) Get(ctx context.Context, p domain.Principal, id string) (*domain.Admin, error) {
	admin, err := s.repo.GetAdminByID(ctx, id)
	if err != nil {
		return nil, repository.Missing(err, "Admin")
	}
	if err := policy.Admin(p, policy.Read, *admin).Err(); err != nil {
		return nil, err
	}
	return admin, nil
}

// Update applies in to an admin. A new password is re-hashed.
func (s Service) Update(ctx context.Context, p domain.Principal, id string, in UpdateInput) (*domain.Admin, error) {
	admin, err := s.repo.GetAdminByID(ctx, id)
	if err != nil {
		return nil, repository.Missing(err, "Admin")
	}
	if err := policy.Admin(p, policy.Update, *admin).Err(); err != nil {
		return nil, err
	}
	if in.Email != nil {
		admin.Email = text.Email(*in.Email)
	}
	if in.Name != nil {
		admin.Name = text.Clean(*in.Name)
	}
	if in.Password != nil {
		hash, err := crypto.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = hash
	}
	if err := s.repo.UpdateAdmin(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDuplicateEmail
		}
		return nil, repository.Missing(err, "Admin")
	}
	s.logger.Info("admin updated", "admin_id", admin.ID, "by", p.ID)
	return admin, nil
}

// Delete removes an admin. Admins cannot delete themselves.
func (s Service) Delete(ctx context.Context, p domain.Principal, id string) error {
	admin, err := s.repo.GetAdminByID(ctx, id)
	if err != nil {
		return repository.Missing(err, "Admin")
	}
	if err := policy.Admin(p, policy.Delete, *admin).Err(); err != nil {
		return err
	}
	if err := s.repo.DeleteAdmin(ctx, id); err != nil {
		return repository.Missing(err, "Admin")
	}
	s.logger.Info("admin deleted", "admin_id", id, "by", p.ID)
	return nil
}
