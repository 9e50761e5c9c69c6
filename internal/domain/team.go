package domain

import (
	"strconv"
	"time"
)

// Ограничения на поля команды
const (
	MaxTeamNameLength = 200
	MaxTeamSlugLength = 200
)

// Team представляет команду внутри организации
type Team struct {
	ID             int64
	Name           string
	Slug           string
	OwnerID        int64
	OwnerUsername  string
	OrganizationID int64
	// OrganizationOwnerID заполняется репозиторием, нужен для вычисления прав
	OrganizationOwnerID int64
	CreatedAt           time.Time
}

// IDString возвращает идентификатор команды в строковом виде
func (t *Team) IDString() string {
	return strconv.FormatInt(t.ID, 10)
}

// CanAdmin проверяет, может ли пользователь управлять командой
func (t *Team) CanAdmin(viewer *User) bool {
	if viewer == nil {
		return false
	}
	if viewer.IsSuperuser {
		return true
	}
	return viewer.ID == t.OwnerID || viewer.ID == t.OrganizationOwnerID
}
