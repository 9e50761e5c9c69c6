package service

import "github.com/aidar/orgteams/internal/domain"

// PermissionPolicy decides what a user may do regardless of organization
type PermissionPolicy struct {
	allowTeamCreation bool
}

// NewPermissionPolicy creates a policy; allowTeamCreation opens team creation to regular users
func NewPermissionPolicy(allowTeamCreation bool) *PermissionPolicy {
	return &PermissionPolicy{allowTeamCreation: allowTeamCreation}
}

// CanCreateTeams reports whether the user may create teams
func (p *PermissionPolicy) CanCreateTeams(user *domain.User) bool {
	if user == nil {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	if !user.IsActive {
		return false
	}
	return p.allowTeamCreation
}
