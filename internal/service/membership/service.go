// Package membership applies organization-checked relationship changes.
package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/policy"
	"github.com/splax/shiftwatch/internal/repository"
)

var errUnknownLink = errors.New("unknown membership link")

// Service applies bulk membership changes scoped to one organization.
type Service struct {
	repo   repository.MembershipRepository
	logger *slog.Logger
}

// New constructs a membership Service.
func New(repo repository.MembershipRepository, logger *slog.Logger) Service {
	return Service{repo: repo, logger: logger}
}

// Replace clears the owner's link set and applies the valid subset of candidates.
// Candidates that do not exist or belong to another organization are skipped.
// The applied ids are returned in input order without duplicates.
func (s Service) Replace(ctx context.Context, organizationID string, link domain.Link, ownerID string, candidates []string) ([]string, error) {
	applied, err := s.resolve(ctx, organizationID, link, candidates)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceLinks(ctx, link, ownerID, applied); err != nil {
		return nil, fmt.Errorf("replace %s: %w", link, err)
	}
	s.logger.Info("membership replaced", "link", string(link), "owner_id", ownerID, "applied", len(applied), "skipped", len(candidates)-len(applied))
	return applied, nil
}

// Add links the valid subset of candidates without touching existing links.
func (s Service) Add(ctx context.Context, organizationID string, link domain.Link, ownerID string, candidates []string) ([]string, error) {
	applied, err := s.resolve(ctx, organizationID, link, candidates)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return applied, nil
	}
	if err := s.repo.AddLinks(ctx, link, ownerID, applied); err != nil {
		return nil, fmt.Errorf("add %s: %w", link, err)
	}
	s.logger.Info("membership added", "link", string(link), "owner_id", ownerID, "applied", len(applied))
	return applied, nil
}

// RequireOwned fails with Forbidden when any referenced entity belongs to another
// organization than the principal's. Ids that do not exist are not an error.
func (s Service) RequireOwned(ctx context.Context, p domain.Principal, kind domain.EntityKind, ids ...string) error {
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		orgID, err := s.repo.OrganizationOf(ctx, kind, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return fmt.Errorf("lookup %s %s: %w", kind, id, err)
		}
		if err := policy.SameOrganization(p, orgID, "Not authorized to access this "+string(kind)).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s Service) resolve(ctx context.Context, organizationID string, link domain.Link, candidates []string) ([]string, error) {
	if !link.Valid() {
		return nil, errUnknownLink
	}
	kind := link.Member()
	seen := make(map[string]struct{}, len(candidates))
	applied := make([]string, 0, len(candidates))
	for _, raw := range candidates {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		orgID, err := s.repo.OrganizationOf(ctx, kind, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Debug("membership candidate missing", "link", string(link), "id", id)
				continue
			}
			return nil, fmt.Errorf("lookup %s %s: %w", kind, id, err)
		}
		if orgID != organizationID {
			s.logger.Debug("membership candidate in other organization", "link", string(link), "id", id)
			continue
		}
		applied = append(applied, id)
	}
	return applied, nil
}
