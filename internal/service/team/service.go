package team

import (
	"context"
	"time"

	"log/slog"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/policy"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/pkg/ids"
	"github.com/splax/shiftwatch/pkg/text"
)

// CreateInput carries a new team.
type CreateInput struct {
	Name string `json:"name" validate:"required,max=200"`
}

// Service handles team workflows.
type Service struct {
	repo   repository.TeamRepository
	logger *slog.Logger
}

// New constructs a Service with default logging.
func New(repo repository.TeamRepository, logger *slog.Logger) Service {
	return Service{repo: repo, logger: logger}
}

// Create registers a team in the caller's organization.
func (s Service) Create(ctx context.Context, p domain.Principal, in CreateInput) (*domain.Team, error) {
	if err := policy.AdminOnly(p, "Only admins can manage teams").Err(); err != nil {
		return nil, err
	}
	name := text.Clean(in.Name)
	if name == "" {
		return nil, apperr.Validation("name", "team name is required")
	}
	team := &domain.Team{
		ID:             ids.New(ids.Team),
		Name:           name,
		OrganizationID: p.OrganizationID,
		CreatedAt:      time.Now().UnixMilli(),
	}
	if err := s.repo.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	s.logger.Info("team created", "team_id", team.ID, "organization_id", team.OrganizationID)
	return team, nil
}

// List returns the teams of the caller's organization.
func (s Service) List(ctx context.Context, p domain.Principal, page repository.Page) ([]domain.Team, error) {
	if err := policy.AdminOnly(p, "Only admins can manage teams").Err(); err != nil {
		return nil, err
	}
	return s.repo.ListTeams(ctx, p.OrganizationID, page.Normalized())
}

// Get returns one team.
func (s Service) Get(ctx context.Context, p domain.Principal, id string) (*domain.Team, error) {
	team, err := s.repo.GetTeamByID(ctx, id)
	if err != nil {
		return nil, repository.Missing(err, "Team")
	}
	if err := policy.Team(p, policy.Read, *team).Err(); err != nil {
		return nil, err
	}
	return team, nil
}
