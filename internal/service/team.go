package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aidar/orgteams/internal/domain"
	"github.com/aidar/orgteams/internal/repository"
)

// Field messages returned in validation errors
const (
	MsgUnableToFindUser = "Unable to find user"
	MsgSlugTaken        = "A team with this slug already exists."
)

// TeamInput is a validated team creation request.
// Owner is only ever set from the superuser request schema.
type TeamInput struct {
	Name  string
	Slug  string
	Owner string
}

// TeamService handles business logic for teams of an organization
type TeamService struct {
	uow      repository.UnitOfWork
	orgRepo  repository.OrganizationRepository
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
	policy   *PermissionPolicy
	logger   *slog.Logger
}

// NewTeamService creates a new TeamService
func NewTeamService(
	uow repository.UnitOfWork,
	orgRepo repository.OrganizationRepository,
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	policy *PermissionPolicy,
	logger *slog.Logger,
) *TeamService {
	return &TeamService{
		uow:      uow,
		orgRepo:  orgRepo,
		teamRepo: teamRepo,
		userRepo: userRepo,
		policy:   policy,
		logger:   logger,
	}
}

// ResolveOrganization finds the first organization visible to the caller whose
// decimal ID equals organizationID. A miss is reported with ok == false, not an error.
func (s *TeamService) ResolveOrganization(ctx context.Context, identity *domain.Identity, organizationID string) (*domain.Organization, bool, error) {
	if identity == nil || identity.User == nil {
		return nil, false, nil
	}

	orgs, err := s.orgRepo.ListForUser(ctx, identity.User)
	if err != nil {
		return nil, false, err
	}

	for _, org := range orgs {
		if org.IDString() == organizationID {
			return org, true, nil
		}
	}

	return nil, false, nil
}

// ListTeams returns the teams of the organization visible to the caller.
// An API key sees only its project's team, and only within that team's organization.
func (s *TeamService) ListTeams(ctx context.Context, identity *domain.Identity, organizationID string) ([]*domain.Team, error) {
	org, ok, err := s.ResolveOrganization(ctx, identity, organizationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	if identity.IsAPIKey() {
		team, err := s.teamRepo.GetByID(ctx, identity.Key.TeamID)
		if err != nil {
			if errors.Is(err, domain.ErrTeamNotFound) {
				return nil, domain.ErrForbidden
			}
			return nil, err
		}
		if team.OrganizationID != org.ID {
			return nil, domain.ErrForbidden
		}
		return []*domain.Team{team}, nil
	}

	return s.teamRepo.ListForUser(ctx, org.ID, identity.User)
}

// AuthorizeCreate resolves the organization and checks the caller may create teams in it
func (s *TeamService) AuthorizeCreate(ctx context.Context, identity *domain.Identity, organizationID string) (*domain.Organization, error) {
	org, ok, err := s.ResolveOrganization(ctx, identity, organizationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	if !s.policy.CanCreateTeams(identity.User) {
		return nil, domain.ErrForbidden
	}

	return org, nil
}

// CreateTeam persists a team in org. Without an explicit owner the organization owner
// owns the team. An unknown owner username is a validation error on "owner".
func (s *TeamService) CreateTeam(ctx context.Context, identity *domain.Identity, org *domain.Organization, input TeamInput) (*domain.Team, error) {
	team := &domain.Team{
		Name:                input.Name,
		Slug:                input.Slug,
		OrganizationID:      org.ID,
		OrganizationOwnerID: org.OwnerID,
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		owner, err := s.resolveOwner(ctx, org, input.Owner)
		if err != nil {
			return err
		}
		team.OwnerID = owner.ID
		team.OwnerUsername = owner.Username

		if err := s.teamRepo.Create(ctx, team); err != nil {
			if errors.Is(err, domain.ErrSlugExists) {
				return domain.NewValidationError("slug", MsgSlugTaken)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "team created",
		"team_id", team.ID,
		"slug", team.Slug,
		"organization_id", org.ID,
		"owner_id", team.OwnerID,
		"created_by", identity.User.ID,
	)

	return team, nil
}

func (s *TeamService) resolveOwner(ctx context.Context, org *domain.Organization, username string) (*domain.User, error) {
	if username == "" {
		return s.userRepo.GetByID(ctx, org.OwnerID)
	}

	owner, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewValidationError("owner", MsgUnableToFindUser)
		}
		return nil, err
	}
	return owner, nil
}
