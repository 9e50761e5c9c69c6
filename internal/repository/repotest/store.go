// Package repotest provides in-memory implementations of the repository
// interfaces for unit tests.
package repotest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aidar/orgteams/internal/domain"
	"github.com/aidar/orgteams/internal/service"
)

// Store holds the shared in-memory state behind the fake repositories
type Store struct {
	mu sync.Mutex

	users       map[int64]*domain.User
	orgs        []*domain.Organization
	orgMembers  map[int64]map[int64]bool // organization -> user -> global access
	teams       []*domain.Team
	teamMembers map[int64]map[int64]bool
	keys        map[string]*domain.APIKey
	nextTeamID  int64

	// Err, when set, is returned by every repository call
	Err error
	// CreateCalls counts Teams.Create invocations
	CreateCalls int
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		users:       make(map[int64]*domain.User),
		orgMembers:  make(map[int64]map[int64]bool),
		teamMembers: make(map[int64]map[int64]bool),
		keys:        make(map[string]*domain.APIKey),
		nextTeamID:  1000,
	}
}

// AddUser registers an active user
func (s *Store) AddUser(id int64, username string, superuser bool) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &domain.User{ID: id, Username: username, IsSuperuser: superuser, IsActive: true, CreatedAt: time.Now()}
	s.users[id] = u
	return u
}

// AddOrganization registers an organization owned by ownerID
func (s *Store) AddOrganization(id int64, name string, ownerID int64) *domain.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := &domain.Organization{ID: id, Name: name, Slug: strings.ToLower(name), OwnerID: ownerID, CreatedAt: time.Now()}
	s.orgs = append(s.orgs, o)
	return o
}

// AddOrgMember adds a user to an organization
func (s *Store) AddOrgMember(orgID, userID int64, globalAccess bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.orgMembers[orgID] == nil {
		s.orgMembers[orgID] = make(map[int64]bool)
	}
	s.orgMembers[orgID][userID] = globalAccess
}

// AddTeam registers an existing team
func (s *Store) AddTeam(id int64, name string, orgID, ownerID int64) *domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &domain.Team{ID: id, Name: name, Slug: strings.ToLower(name), OrganizationID: orgID, OwnerID: ownerID, CreatedAt: time.Now()}
	s.teams = append(s.teams, t)
	return t
}

// AddTeamMember adds a user to a team
func (s *Store) AddTeamMember(teamID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.teamMembers[teamID] == nil {
		s.teamMembers[teamID] = make(map[int64]bool)
	}
	s.teamMembers[teamID][userID] = true
}

// AddAPIKey registers a project key under its raw value
func (s *Store) AddAPIKey(rawKey string, key *domain.APIKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[service.HashAPIKey(rawKey)] = key
}

// AllTeams returns a snapshot of all stored teams
func (s *Store) AllTeams() []domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, *s.hydrate(t))
	}
	return out
}

func (s *Store) org(id int64) *domain.Organization {
	for _, o := range s.orgs {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// hydrate fills the joined fields the Postgres repository would return
func (s *Store) hydrate(t *domain.Team) *domain.Team {
	cp := *t
	if owner, ok := s.users[t.OwnerID]; ok {
		cp.OwnerUsername = owner.Username
	}
	if o := s.org(t.OrganizationID); o != nil {
		cp.OrganizationOwnerID = o.OwnerID
	}
	return &cp
}

// Users implements repository.UserRepository
type Users struct{ *Store }

// GetByID looks a user up by ID
func (r Users) GetByID(_ context.Context, userID int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByUsername looks a user up case-insensitively
func (r Users) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Organizations implements repository.OrganizationRepository
type Organizations struct{ *Store }

// ListForUser returns owned and member organizations, or all of them for superusers
func (r Organizations) ListForUser(_ context.Context, user *domain.User) ([]*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	out := []*domain.Organization{}
	for _, o := range r.orgs {
		_, member := r.orgMembers[o.ID][user.ID]
		if user.IsSuperuser || o.OwnerID == user.ID || member {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Teams implements repository.TeamRepository
type Teams struct{ *Store }

// ListForUser applies the same access rule as the Postgres repository
func (r Teams) ListForUser(_ context.Context, organizationID int64, user *domain.User) ([]*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	o := r.org(organizationID)
	out := []*domain.Team{}
	for _, t := range r.teams {
		if t.OrganizationID != organizationID {
			continue
		}
		globalAccess := r.orgMembers[organizationID][user.ID]
		if user.IsSuperuser || (o != nil && o.OwnerID == user.ID) || t.OwnerID == user.ID ||
			globalAccess || r.teamMembers[t.ID][user.ID] {
			out = append(out, r.hydrate(t))
		}
	}
	return out, nil
}

// GetByID looks a team up by ID
func (r Teams) GetByID(_ context.Context, teamID int64) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	for _, t := range r.teams {
		if t.ID == teamID {
			return r.hydrate(t), nil
		}
	}
	return nil, domain.ErrTeamNotFound
}

// Create stores the team, deriving a slug from the name when none is given
func (r Teams) Create(_ context.Context, team *domain.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CreateCalls++
	if r.Err != nil {
		return r.Err
	}

	slug := team.Slug
	if slug == "" {
		slug = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(team.Name)), " ", "-")
	}
	for _, t := range r.teams {
		if t.OrganizationID == team.OrganizationID && t.Slug == slug {
			return domain.ErrSlugExists
		}
	}

	r.nextTeamID++
	team.ID = r.nextTeamID
	team.Slug = slug
	team.CreatedAt = time.Now()

	cp := *team
	r.teams = append(r.teams, &cp)
	return nil
}

// APIKeys implements repository.APIKeyRepository
type APIKeys struct{ *Store }

// GetByHash looks a key up by the hash of its raw value
func (r APIKeys) GetByHash(_ context.Context, keyHash string) (*domain.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	k, ok := r.keys[keyHash]
	if !ok {
		return nil, domain.ErrAPIKeyNotFound
	}
	cp := *k
	return &cp, nil
}

// UnitOfWork runs fn without a real transaction
type UnitOfWork struct{}

// WithinTx calls fn with ctx unchanged
func (UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
