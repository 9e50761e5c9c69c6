package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aidar/orgteams/internal/domain"
	"github.com/aidar/orgteams/internal/middleware"
	"github.com/aidar/orgteams/internal/service"
)

// OrganizationIDParam имя параметра маршрута с идентификатором организации
const OrganizationIDParam = "organizationID"

// TeamHandler обрабатывает эндпоинты команд организации
type TeamHandler struct {
	teamService *service.TeamService
	validate    *validator.Validate
}

// NewTeamHandler создает новый TeamHandler
func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		validate:    newValidator(),
	}
}

// ListTeams обрабатывает GET /organizations/{organization_id}/teams/
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentityFromContext(r.Context())
	organizationID := chi.URLParam(r, OrganizationIDParam)

	teams, err := h.teamService.ListTeams(r.Context(), identity, organizationID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, SerializeTeams(teams, identity.User))
}

// CreateTeam обрабатывает POST /organizations/{organization_id}/teams/
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentityFromContext(r.Context())
	organizationID := chi.URLParam(r, OrganizationIDParam)

	// Сначала проверяем доступ к организации и право на создание, затем тело запроса
	org, err := h.teamService.AuthorizeCreate(r.Context(), identity, organizationID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	input, err := decodeTeamRequest(r, h.validate, identity.IsSuperuser())
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			RespondWithFieldErrors(w, r, verr)
			return
		}
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), identity, org, input)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, SerializeTeam(team, identity.User))
}
