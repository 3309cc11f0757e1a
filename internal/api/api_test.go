package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NebulaScout/TeamTrack/internal/authz"
	"github.com/NebulaScout/TeamTrack/internal/db"
	"github.com/NebulaScout/TeamTrack/internal/projects"
	"github.com/NebulaScout/TeamTrack/internal/roles"
	"github.com/NebulaScout/TeamTrack/internal/tasks"
)

const testMasterToken = "master-secret"

type testEnv struct {
	store     *db.DB
	api       *API
	bootstrap *db.User
	seed      *db.Project
}

// newTestEnv wires the full stack against an in-memory database, plus one
// bootstrap user owning a seed project that role grants can hang off.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := db.NewDB(db.CreateTestDB())
	registry := roles.Default()

	evaluator := authz.NewEvaluator(registry, store)
	projectService := projects.NewService(store, registry)
	taskService := tasks.NewService(store)

	api := NewAPI("", mux.NewRouter(), store, evaluator, projectService, taskService, testMasterToken)

	bootstrap := &db.User{Username: "bootstrap"}
	require.NoError(t, store.CreateUser(bootstrap))

	seed, err := projectService.CreateProject(bootstrap.ID, projects.CreateInput{Name: "Seed"})
	require.NoError(t, err)

	return &testEnv{store: store, api: api, bootstrap: bootstrap, seed: seed}
}

// createUser registers a user with an API token and, when role is non-empty,
// a membership in the seed project carrying that role.
func (e *testEnv) createUser(t *testing.T, username, role string) (*db.User, string) {
	t.Helper()

	user := &db.User{Username: username}
	require.NoError(t, e.store.CreateUser(user))

	token := username + "-token"
	require.NoError(t, e.store.CreateToken(&db.Token{Token: token, UserID: user.ID}))

	if role != "" {
		require.NoError(t, e.store.AddMember(&db.Membership{
			ProjectID: e.seed.ID,
			UserID:    user.ID,
			RoleName:  role,
		}))
	}

	return user, token
}

func (e *testEnv) addMember(t *testing.T, projectID uint, user *db.User, role string) {
	t.Helper()

	require.NoError(t, e.store.AddMember(&db.Membership{
		ProjectID: projectID,
		UserID:    user.ID,
		RoleName:  role,
	}))
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.api.Router().ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	return out
}

func (e *testEnv) createProject(t *testing.T, token, name string) projectResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/projects", token, map[string]string{
		"name":       name,
		"start_date": "2026-01-01",
		"end_date":   "2026-06-30",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	return decode[projectResponse](t, rec)
}

func (e *testEnv) createTask(t *testing.T, token string, projectID uint, title string) taskResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/tasks", projectID), token, map[string]string{
		"title": title,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	return decode[taskResponse](t, rec)
}

func TestShutdown(t *testing.T) {
	store := db.NewDB(db.CreateTestDB())
	registry := roles.Default()
	server := NewAPI(
		"127.0.0.1:0",
		mux.NewRouter(),
		store,
		authz.NewEvaluator(registry, store),
		projects.NewService(store, registry),
		tasks.NewService(store),
		testMasterToken,
	)

	done := make(chan error, 1)
	go func() { done <- server.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	assert.ErrorIs(t, <-done, http.ErrServerClosed)
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/projects", "", map[string]string{"name": "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/projects", "stranger", map[string]string{"name": "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAddToken(t *testing.T) {
	t.Run("requires the master token", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/tokens", "wrong", map[string]any{
			"token": "t1", "user_id": env.bootstrap.ID,
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("issued token authenticates requests", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/tokens", testMasterToken, map[string]any{
			"token": "fresh-token", "user_id": env.bootstrap.ID,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, http.MethodGet, fmt.Sprintf("/projects/%d", env.seed.ID), "fresh-token", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/tokens", testMasterToken, map[string]any{
			"token": "t1", "user_id": 999,
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProjectEndpoints(t *testing.T) {
	t.Run("manager creates and owns a project", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.createUser(t, "paula", roles.RoleProjectManager)

		project := env.createProject(t, token, "Apollo")
		assert.Equal(t, "Apollo", project.Name)
		assert.Equal(t, "2026-01-01", project.StartDate)

		rec := env.do(t, http.MethodGet, fmt.Sprintf("/projects/%d", project.ID), token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodDelete, fmt.Sprintf("/projects/%d", project.ID), token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, fmt.Sprintf("/projects/%d", project.ID), token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("guest cannot create projects", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.createUser(t, "gary", roles.RoleGuest)

		rec := env.do(t, http.MethodPost, "/projects", token, map[string]string{"name": "Apollo"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("user without memberships cannot create projects", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.createUser(t, "nobody", "")

		rec := env.do(t, http.MethodPost, "/projects", token, map[string]string{"name": "Apollo"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("non-member cannot read a project", func(t *testing.T) {
		env := newTestEnv(t)
		_, paulaToken := env.createUser(t, "paula", roles.RoleProjectManager)
		_, otherToken := env.createUser(t, "othello", roles.RoleProjectManager)

		project := env.createProject(t, paulaToken, "Apollo")

		rec := env.do(t, http.MethodGet, fmt.Sprintf("/projects/%d", project.ID), otherToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid date is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.createUser(t, "paula", roles.RoleProjectManager)

		rec := env.do(t, http.MethodPost, "/projects", token, map[string]string{
			"name": "Apollo", "start_date": "yesterday",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMemberEndpoints(t *testing.T) {
	t.Run("add, list and remove", func(t *testing.T) {
		env := newTestEnv(t)
		_, paulaToken := env.createUser(t, "paula", roles.RoleProjectManager)
		dave, _ := env.createUser(t, "dave", "")

		project := env.createProject(t, paulaToken, "Apollo")
		membersPath := fmt.Sprintf("/projects/%d/members", project.ID)

		rec := env.do(t, http.MethodPost, membersPath, paulaToken, map[string]any{
			"user_id": dave.ID, "role": roles.RoleDeveloper,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		member := decode[memberResponse](t, rec)
		assert.Equal(t, "dave", member.Username)
		assert.Equal(t, roles.RoleDeveloper, member.Role)

		rec = env.do(t, http.MethodGet, membersPath, paulaToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]memberResponse](t, rec), 2)

		rec = env.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", membersPath, dave.ID), paulaToken, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, membersPath, paulaToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]memberResponse](t, rec), 1)
	})

	t.Run("duplicate membership is a conflict", func(t *testing.T) {
		env := newTestEnv(t)
		_, paulaToken := env.createUser(t, "paula", roles.RoleProjectManager)
		dave, _ := env.createUser(t, "dave", "")

		project := env.createProject(t, paulaToken, "Apollo")
		membersPath := fmt.Sprintf("/projects/%d/members", project.ID)

		rec := env.do(t, http.MethodPost, membersPath, paulaToken, map[string]any{
			"user_id": dave.ID, "role": roles.RoleDeveloper,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, http.MethodPost, membersPath, paulaToken, map[string]any{
			"user_id": dave.ID, "role": roles.RoleGuest,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown role is a bad request", func(t *testing.T) {
		env := newTestEnv(t)
		_, paulaToken := env.createUser(t, "paula", roles.RoleProjectManager)
		dave, _ := env.createUser(t, "dave", "")

		project := env.createProject(t, paulaToken, "Apollo")

		rec := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/members", project.ID), paulaToken, map[string]any{
			"user_id": dave.ID, "role": "Intern",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("developer cannot manage members", func(t *testing.T) {
		env := newTestEnv(t)
		_, paulaToken := env.createUser(t, "paula", roles.RoleProjectManager)
		dave, daveToken := env.createUser(t, "dave", "")

		project := env.createProject(t, paulaToken, "Apollo")
		env.addMember(t, project.ID, dave, roles.RoleDeveloper)

		rec := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/members", project.ID), daveToken, map[string]any{
			"user_id": env.bootstrap.ID, "role": roles.RoleGuest,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestTaskEndpoints(t *testing.T) {
	t.Run("create uses defaults", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.createUser(t, "paula", roles.RoleProjectManager)
		project := env.createProject(t, token, "Apollo")

		task := env.createTask(t, token, project.ID, "Write docs")
		assert.Equal(t, string(db.StatusToDo), task.Status)
		assert.Equal(t, string(db.PriorityMedium), task.Priority)
	})

	t.Run("developer updates status, log records it", func(t *testing.T) {
		env := newTestEnv(t)
		_, paulaToken := env.createUser(t, "paula", roles.RoleProjectManager)
		dave, daveToken := env.createUser(t, "dave", "")

		project := env.createProject(t, paulaToken, "Apollo")
		env.addMember(t, project.ID, dave, roles.RoleDeveloper)

		task := env.createTask(t, paulaToken, project.ID, "Write docs")

		rec := env.do(t, http.MethodPatch, fmt.Sprintf("/tasks/%d/status", task.ID), daveToken, map[string]string{
			"status": string(db.StatusInProgress),
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, string(db.StatusInProgress), decode[taskResponse](t, rec).Status)

		rec = env.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d/logs", task.ID), paulaToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		entries := decode[[]historyResponse](t, rec)
		require.Len(t, entries, 1)
		assert.Equal(t, string(db.FieldStatus), entries[0].Field)
		require.NotNil(t, entries[0].OldValue)
		assert.Equal(t, string(db.StatusToDo), *entries[0].OldValue)
		assert.Equal(t, string(db.StatusInProgress), entries[0].NewValue)
		assert.Equal(t, "dave", entries[0].ChangedBy)
	})

	t.Run("guest can read but not change", func(t *testing.T) {
		env := newTestEnv(t)
		_, paulaToken := env.createUser(t, "paula", roles.RoleProjectManager)
		gary, garyToken := env.createUser(t, "gary", "")

		project := env.createProject(t, paulaToken, "Apollo")
		env.addMember(t, project.ID, gary, roles.RoleGuest)

		task := env.createTask(t, paulaToken, project.ID, "Write docs")

		rec := env.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), garyToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodPatch, fmt.Sprintf("/tasks/%d/status", task.ID), garyToken, map[string]string{
			"status": string(db.StatusDone),
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d/logs", task.ID), garyToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("non-member cannot see the task", func(t *testing.T) {
		env := newTestEnv(t)
		_, paulaToken := env.createUser(t, "paula", roles.RoleProjectManager)
		_, otherToken := env.createUser(t, "othello", roles.RoleProjectManager)

		project := env.createProject(t, paulaToken, "Apollo")
		task := env.createTask(t, paulaToken, project.ID, "Write docs")

		rec := env.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), otherToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("assign records the username in the log", func(t *testing.T) {
		env := newTestEnv(t)
		_, paulaToken := env.createUser(t, "paula", roles.RoleProjectManager)
		dave, _ := env.createUser(t, "dave", "")

		project := env.createProject(t, paulaToken, "Apollo")
		env.addMember(t, project.ID, dave, roles.RoleDeveloper)

		task := env.createTask(t, paulaToken, project.ID, "Write docs")

		rec := env.do(t, http.MethodPatch, fmt.Sprintf("/tasks/%d/assign", task.ID), paulaToken, map[string]any{
			"assigned_to": dave.ID,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d/logs", task.ID), paulaToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		entries := decode[[]historyResponse](t, rec)
		require.Len(t, entries, 1)
		assert.Equal(t, string(db.FieldAssignedTo), entries[0].Field)
		assert.Nil(t, entries[0].OldValue)
		assert.Equal(t, "dave", entries[0].NewValue)
	})

	t.Run("invalid status is a bad request", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.createUser(t, "paula", roles.RoleProjectManager)
		project := env.createProject(t, token, "Apollo")
		task := env.createTask(t, token, project.ID, "Write docs")

		rec := env.do(t, http.MethodPatch, fmt.Sprintf("/tasks/%d/status", task.ID), token, map[string]string{
			"status": "SOMEDAY",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("patch with several fields", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.createUser(t, "paula", roles.RoleProjectManager)
		project := env.createProject(t, token, "Apollo")
		task := env.createTask(t, token, project.ID, "Write docs")

		rec := env.do(t, http.MethodPatch, fmt.Sprintf("/tasks/%d", task.ID), token, map[string]string{
			"priority": string(db.PriorityHigh),
			"due_date": "2026-10-15",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		updated := decode[taskResponse](t, rec)
		assert.Equal(t, string(db.PriorityHigh), updated.Priority)
		assert.Equal(t, "2026-10-15", updated.DueDate)

		rec = env.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d/logs", task.ID), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]historyResponse](t, rec), 2)
	})

	t.Run("deleted task is gone", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.createUser(t, "paula", roles.RoleProjectManager)
		project := env.createProject(t, token, "Apollo")
		task := env.createTask(t, token, project.ID, "Write docs")

		rec := env.do(t, http.MethodDelete, fmt.Sprintf("/tasks/%d", task.ID), token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCommentEndpoints(t *testing.T) {
	t.Run("developer comments, guest reads", func(t *testing.T) {
		env := newTestEnv(t)
		_, paulaToken := env.createUser(t, "paula", roles.RoleProjectManager)
		dave, daveToken := env.createUser(t, "dave", "")
		gary, garyToken := env.createUser(t, "gary", "")

		project := env.createProject(t, paulaToken, "Apollo")
		env.addMember(t, project.ID, dave, roles.RoleDeveloper)
		env.addMember(t, project.ID, gary, roles.RoleGuest)

		task := env.createTask(t, paulaToken, project.ID, "Write docs")
		commentsPath := fmt.Sprintf("/tasks/%d/comments", task.ID)

		rec := env.do(t, http.MethodPost, commentsPath, daveToken, map[string]string{"content": "on it"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, http.MethodGet, commentsPath, garyToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		comments := decode[[]commentResponse](t, rec)
		require.Len(t, comments, 1)
		assert.Equal(t, "on it", comments[0].Content)
		require.NotNil(t, comments[0].Author)
		assert.Equal(t, "dave", *comments[0].Author)
	})

	t.Run("guest cannot comment", func(t *testing.T) {
		env := newTestEnv(t)
		_, paulaToken := env.createUser(t, "paula", roles.RoleProjectManager)
		gary, garyToken := env.createUser(t, "gary", "")

		project := env.createProject(t, paulaToken, "Apollo")
		env.addMember(t, project.ID, gary, roles.RoleGuest)

		task := env.createTask(t, paulaToken, project.ID, "Write docs")

		rec := env.do(t, http.MethodPost, fmt.Sprintf("/tasks/%d/comments", task.ID), garyToken, map[string]string{
			"content": "hi",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
