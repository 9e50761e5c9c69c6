package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/orgteams/internal/domain"
)

// APIKeyRepository реализует repository.APIKeyRepository для PostgreSQL
type APIKeyRepository struct {
	db *pgxpool.Pool
}

// NewAPIKeyRepository создает новый экземпляр APIKeyRepository
func NewAPIKeyRepository(db *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// GetByHash loads an active key and the team of its project
func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	query := `
		SELECT k.id, k.label, k.project_id, p.team_id, k.user_id
		FROM project_keys k
		INNER JOIN projects p ON p.id = k.project_id
		WHERE k.key_hash = $1 AND k.is_active
	`

	var key domain.APIKey
	err := conn(ctx, r.db).QueryRow(ctx, query, keyHash).Scan(
		&key.ID,
		&key.Label,
		&key.ProjectID,
		&key.TeamID,
		&key.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, err
	}

	return &key, nil
}
