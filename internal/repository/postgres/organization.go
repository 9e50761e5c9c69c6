package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/orgteams/internal/domain"
)

// OrganizationRepository реализует repository.OrganizationRepository для PostgreSQL
type OrganizationRepository struct {
	db *pgxpool.Pool
}

// NewOrganizationRepository создает новый экземпляр OrganizationRepository
func NewOrganizationRepository(db *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// ListForUser returns organizations the user owns or belongs to; superusers see all of them
func (r *OrganizationRepository) ListForUser(ctx context.Context, user *domain.User) ([]*domain.Organization, error) {
	if user == nil {
		return []*domain.Organization{}, nil
	}

	query := `
		SELECT o.id, o.name, o.slug, o.owner_id, o.created_at
		FROM organizations o
		WHERE $2
		   OR o.owner_id = $1
		   OR EXISTS (
		       SELECT 1 FROM organization_members om
		       WHERE om.organization_id = o.id AND om.user_id = $1
		   )
		ORDER BY o.id
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, user.ID, user.IsSuperuser)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := []*domain.Organization{}
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Slug, &org.OwnerID, &org.CreatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, &org)
	}

	return orgs, rows.Err()
}
