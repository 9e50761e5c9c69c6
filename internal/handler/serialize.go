package handler

import (
	"time"

	"github.com/aidar/orgteams/internal/domain"
)

// TeamPermission флаги прав просматривающего пользователя на команду
type TeamPermission struct {
	Edit  bool `json:"edit"`
	Admin bool `json:"admin"`
}

// TeamResponse представление команды для клиента
type TeamResponse struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	Owner       string         `json:"owner"`
	DateCreated time.Time      `json:"dateCreated"`
	Permission  TeamPermission `json:"permission"`
}

// SerializeTeam преобразует команду в ответ с учетом прав просматривающего
func SerializeTeam(team *domain.Team, viewer *domain.User) TeamResponse {
	canAdmin := team.CanAdmin(viewer)
	return TeamResponse{
		ID:          team.IDString(),
		Slug:        team.Slug,
		Name:        team.Name,
		Owner:       team.OwnerUsername,
		DateCreated: team.CreatedAt,
		Permission: TeamPermission{
			Edit:  canAdmin,
			Admin: canAdmin,
		},
	}
}

// SerializeTeams преобразует список команд; пустой список сериализуется как []
func SerializeTeams(teams []*domain.Team, viewer *domain.User) []TeamResponse {
	out := make([]TeamResponse, 0, len(teams))
	for _, team := range teams {
		out = append(out, SerializeTeam(team, viewer))
	}
	return out
}
