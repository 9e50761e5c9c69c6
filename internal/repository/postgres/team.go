package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/orgteams/internal/domain"
)

const (
	defaultTeamSlug  = "team"
	slugSuffixLength = 8
	maxSlugAttempts  = 5
)

const teamSelect = `
	SELECT t.id, t.name, t.slug, t.owner_id, u.username, t.organization_id, o.owner_id, t.created_at
	FROM teams t
	INNER JOIN users u ON u.id = t.owner_id
	INNER JOIN organizations o ON o.id = t.organization_id
`

// TeamRepository реализует repository.TeamRepository для PostgreSQL
type TeamRepository struct {
	db *pgxpool.Pool
}

// NewTeamRepository создает новый экземпляр TeamRepository
func NewTeamRepository(db *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{db: db}
}

// ListForUser returns the organization's teams the user can access.
// Superusers, the organization owner and members with global access see every team;
// other users see teams they own or belong to.
func (r *TeamRepository) ListForUser(ctx context.Context, organizationID int64, user *domain.User) ([]*domain.Team, error) {
	if user == nil {
		return []*domain.Team{}, nil
	}

	query := teamSelect + `
		WHERE t.organization_id = $1
		  AND (
		      $3
		      OR o.owner_id = $2
		      OR t.owner_id = $2
		      OR EXISTS (
		          SELECT 1 FROM organization_members om
		          WHERE om.organization_id = t.organization_id
		            AND om.user_id = $2
		            AND om.has_global_access
		      )
		      OR EXISTS (
		          SELECT 1 FROM team_members tm
		          WHERE tm.team_id = t.id AND tm.user_id = $2
		      )
		  )
		ORDER BY t.name, t.id
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, organizationID, user.ID, user.IsSuperuser)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []*domain.Team{}
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// GetByID получает команду по ID
func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (*domain.Team, error) {
	row := conn(ctx, r.db).QueryRow(ctx, teamSelect+` WHERE t.id = $1`, teamID)

	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}

	return team, nil
}

// Create inserts the team and fills in ID, Slug and CreatedAt.
// An empty slug is derived from the name; a derived slug already used in the
// organization gets a random suffix. An explicit slug that is taken yields ErrSlugExists.
func (r *TeamRepository) Create(ctx context.Context, team *domain.Team) error {
	explicit := team.Slug != ""
	base := team.Slug
	if !explicit {
		base = deriveSlug(team.Name)
	}

	candidate := base
	for attempt := 0; ; attempt++ {
		taken, err := r.slugExists(ctx, team.OrganizationID, candidate)
		if err != nil {
			return err
		}
		if !taken {
			break
		}
		if explicit {
			return domain.ErrSlugExists
		}
		if attempt >= maxSlugAttempts {
			return fmt.Errorf("failed to find free slug for %q: %w", base, domain.ErrSlugExists)
		}
		candidate = withSuffix(base)
	}

	query := `
		INSERT INTO teams (name, slug, owner_id, organization_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := conn(ctx, r.db).QueryRow(ctx, query, team.Name, candidate, team.OwnerID, team.OrganizationID).
		Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return domain.ErrSlugExists
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return domain.ErrUserNotFound
			}
		}
		return err
	}

	team.Slug = candidate
	return nil
}

func (r *TeamRepository) slugExists(ctx context.Context, organizationID int64, teamSlug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM teams WHERE organization_id = $1 AND slug = $2)`

	var exists bool
	if err := conn(ctx, r.db).QueryRow(ctx, query, organizationID, teamSlug).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var team domain.Team
	err := row.Scan(
		&team.ID,
		&team.Name,
		&team.Slug,
		&team.OwnerID,
		&team.OwnerUsername,
		&team.OrganizationID,
		&team.OrganizationOwnerID,
		&team.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func deriveSlug(name string) string {
	s := slug.Make(name)
	if s == "" {
		s = defaultTeamSlug
	}
	return truncateSlug(s, domain.MaxTeamSlugLength)
}

func withSuffix(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLength]
	return truncateSlug(base, domain.MaxTeamSlugLength-slugSuffixLength-1) + "-" + suffix
}

func truncateSlug(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.TrimRight(s[:limit], "-")
}
