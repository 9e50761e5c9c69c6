package repository

import (
	"context"

	"github.com/aidar/orgteams/internal/domain"
)

// UserRepository определяет методы для работы с данными пользователей
type UserRepository interface {
	// GetByID получает пользователя по ID
	GetByID(ctx context.Context, userID int64) (*domain.User, error)

	// GetByUsername получает пользователя по имени без учета регистра
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// OrganizationRepository определяет методы для работы с организациями
type OrganizationRepository interface {
	// ListForUser возвращает организации, видимые пользователю
	ListForUser(ctx context.Context, user *domain.User) ([]*domain.Organization, error)
}

// TeamRepository определяет методы для работы с данными команд
type TeamRepository interface {
	// ListForUser возвращает команды организации, к которым у пользователя есть доступ
	ListForUser(ctx context.Context, organizationID int64, user *domain.User) ([]*domain.Team, error)

	// GetByID получает команду по ID
	GetByID(ctx context.Context, teamID int64) (*domain.Team, error)

	// Create создает команду; пустой slug генерируется из названия
	Create(ctx context.Context, team *domain.Team) error
}

// APIKeyRepository определяет методы для работы с API ключами проектов
type APIKeyRepository interface {
	// GetByHash получает активный ключ по SHA-256 хешу его значения
	GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
}

// UnitOfWork выполняет функцию в рамках одной транзакции
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
