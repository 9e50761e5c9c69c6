package app_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aidar/orgteams/internal/handler"
	"github.com/aidar/orgteams/internal/service"
)

const testPassword = "correct horse battery staple"

type e2eFixture struct {
	owner, member, root int64
	acme, other         int64
	backend, ops        int64
}

func seedE2E(t *testing.T, env *TestEnvironment) e2eFixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	var f e2eFixture
	addUser := func(username string, superuser bool) int64 {
		return env.InsertID(t,
			`INSERT INTO users (username, password_hash, is_superuser) VALUES ($1, $2, $3) RETURNING id`,
			username, string(hash), superuser)
	}

	f.owner = addUser("owner", false)
	f.member = addUser("member", false)
	f.root = addUser("root", true)
	outsider := addUser("outsider", false)

	f.acme = env.InsertID(t, `INSERT INTO organizations (name, slug, owner_id) VALUES ('Acme', 'acme', $1) RETURNING id`, f.owner)
	f.other = env.InsertID(t, `INSERT INTO organizations (name, slug, owner_id) VALUES ('Other', 'other', $1) RETURNING id`, outsider)
	env.Exec(t, `INSERT INTO organization_members (organization_id, user_id, has_global_access) VALUES ($1, $2, FALSE)`, f.acme, f.member)

	f.backend = env.InsertID(t, `INSERT INTO teams (name, slug, organization_id, owner_id) VALUES ('Backend', 'backend', $1, $2) RETURNING id`, f.acme, f.owner)
	env.Exec(t, `INSERT INTO teams (name, slug, organization_id, owner_id) VALUES ('Frontend', 'frontend', $1, $2)`, f.acme, f.owner)
	f.ops = env.InsertID(t, `INSERT INTO teams (name, slug, organization_id, owner_id) VALUES ('Ops', 'ops', $1, $2) RETURNING id`, f.other, outsider)
	env.Exec(t, `INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`, f.backend, f.member)

	addKey := func(rawKey string, teamID int64) {
		projectID := env.InsertID(t, `INSERT INTO projects (name, slug, team_id) VALUES ($1, $1, $2) RETURNING id`, rawKey, teamID)
		env.Exec(t, `INSERT INTO project_keys (key_hash, project_id, user_id) VALUES ($1, $2, $3)`,
			service.HashAPIKey(rawKey), projectID, f.owner)
	}
	addKey("backend-key", f.backend)
	addKey("ops-key", f.ops)

	return f
}

func login(t *testing.T, env *TestEnvironment, username string) string {
	t.Helper()

	body, err := json.Marshal(handler.LoginRequest{Username: username, Password: testPassword})
	require.NoError(t, err)

	resp := env.MakeRequest(t, http.MethodPost, "/auth/login", bytes.NewReader(body), "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out handler.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return "Bearer " + out.Token
}

func apiKey(rawKey string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(rawKey+":"))
}

func teamsPath(orgID int64) string {
	return fmt.Sprintf("/organizations/%d/teams/", orgID)
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return data
}

// TestE2E_OrganizationTeams проверяет эндпоинт команд организации через HTTP и PostgreSQL
func TestE2E_OrganizationTeams(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := SetupTestEnvironment(t, true)
	f := seedE2E(t, env)

	ownerAuth := login(t, env, "owner")
	memberAuth := login(t, env, "Member")
	rootAuth := login(t, env, "root")

	t.Run("login with wrong password", func(t *testing.T) {
		body := `{"username":"owner","password":"nope"}`
		resp := env.MakeRequest(t, http.MethodPost, "/auth/login", strings.NewReader(body), "")
		readBody(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, teamsPath(f.acme), nil, "")
		readBody(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invisible organization", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, teamsPath(f.other), nil, memberAuth)
		assert.Empty(t, readBody(t, resp))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("member lists accessible teams", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, teamsPath(f.acme), nil, memberAuth)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var teams []handler.TeamResponse
		require.NoError(t, json.Unmarshal(readBody(t, resp), &teams))
		require.Len(t, teams, 1)
		assert.Equal(t, strconv.FormatInt(f.backend, 10), teams[0].ID)
		assert.Equal(t, "owner", teams[0].Owner)
		assert.False(t, teams[0].Permission.Admin)
	})

	t.Run("api key sees its project team", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, teamsPath(f.acme), nil, apiKey("backend-key"))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var teams []handler.TeamResponse
		require.NoError(t, json.Unmarshal(readBody(t, resp), &teams))
		require.Len(t, teams, 1)
		assert.Equal(t, "backend", teams[0].Slug)
	})

	t.Run("api key for a team of another organization", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, teamsPath(f.acme), nil, apiKey("ops-key"))
		assert.Empty(t, readBody(t, resp))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("create defaults owner to organization owner", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodPost, teamsPath(f.acme), strings.NewReader(`{"name":"Data Platform"}`), memberAuth)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var team handler.TeamResponse
		require.NoError(t, json.Unmarshal(readBody(t, resp), &team))
		assert.Equal(t, "data-platform", team.Slug)
		assert.Equal(t, "owner", team.Owner)
	})

	t.Run("create with derived slug collision", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodPost, teamsPath(f.acme), strings.NewReader(`{"name":"Data Platform"}`), ownerAuth)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var team handler.TeamResponse
		require.NoError(t, json.Unmarshal(readBody(t, resp), &team))
		assert.True(t, strings.HasPrefix(team.Slug, "data-platform-"), team.Slug)
	})

	t.Run("create with taken explicit slug", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodPost, teamsPath(f.acme), strings.NewReader(`{"name":"B2","slug":"backend"}`), ownerAuth)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"slug":["`+service.MsgSlugTaken+`"]}`, string(body))
	})

	t.Run("create without name", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodPost, teamsPath(f.acme), strings.NewReader(`{}`), ownerAuth)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"name":["This field is required."]}`, string(body))
	})

	t.Run("superuser assigns owner", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodPost, teamsPath(f.acme), strings.NewReader(`{"name":"Infra","owner":"MEMBER"}`), rootAuth)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var team handler.TeamResponse
		require.NoError(t, json.Unmarshal(readBody(t, resp), &team))
		assert.Equal(t, "member", team.Owner)
		assert.True(t, team.Permission.Admin)
	})

	t.Run("superuser with unknown owner", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodPost, teamsPath(f.acme), strings.NewReader(`{"name":"Ghost","owner":"nobody"}`), rootAuth)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"owner":["Unable to find user"]}`, string(body))

		var count int
		require.NoError(t, env.DB.QueryRow(t.Context(), `SELECT count(*) FROM teams WHERE name = 'Ghost'`).Scan(&count))
		assert.Zero(t, count)
	})

	t.Run("regular user owner field is ignored", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodPost, teamsPath(f.acme), strings.NewReader(`{"name":"Tools","owner":"root"}`), ownerAuth)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var team handler.TeamResponse
		require.NoError(t, json.Unmarshal(readBody(t, resp), &team))
		assert.Equal(t, "owner", team.Owner)
	})
}

// TestE2E_TeamCreationDisabled проверяет запрет создания команд обычными пользователями
func TestE2E_TeamCreationDisabled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := SetupTestEnvironment(t, false)
	f := seedE2E(t, env)

	resp := env.MakeRequest(t, http.MethodPost, teamsPath(f.acme), strings.NewReader(`{"name":"Blocked"}`), login(t, env, "owner"))
	assert.Empty(t, readBody(t, resp))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.MakeRequest(t, http.MethodPost, teamsPath(f.acme), strings.NewReader(`{"name":"Allowed"}`), login(t, env, "root"))
	readBody(t, resp)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
