// Package api is the request-handling layer over the core services. Every
// protected route asks the evaluator first and only then touches a service;
// an evaluator "false" becomes a 403 before any mutation can run.
package api

import (
	"context"
	"net/http"

	"github.com/NebulaScout/TeamTrack/internal/authz"
	"github.com/NebulaScout/TeamTrack/internal/db"
	"github.com/NebulaScout/TeamTrack/internal/projects"
	"github.com/NebulaScout/TeamTrack/internal/tasks"
	"github.com/gorilla/mux"
)

type API struct {
	address string
	router  *mux.Router
	server  *http.Server
	db      *db.DB

	evaluator *authz.Evaluator
	projects  *projects.Service
	tasks     *tasks.Service

	masterToken string
}

func NewAPI(
	address string,
	router *mux.Router,
	database *db.DB,
	evaluator *authz.Evaluator,
	projectService *projects.Service,
	taskService *tasks.Service,
	masterToken string,
) *API {
	a := &API{
		address:     address,
		router:      router,
		server:      &http.Server{Addr: address, Handler: router},
		db:          database,
		evaluator:   evaluator,
		projects:    projectService,
		tasks:       taskService,
		masterToken: masterToken,
	}
	a.initRoutes()

	return a
}

func (a *API) initRoutes() {
	a.router.Use(a.requestLogMiddleware)

	a.router.HandleFunc("/tokens", a.handleAddToken).Methods(http.MethodPost)

	a.router.HandleFunc("/projects", a.handleCreateProject).Methods(http.MethodPost)
	a.router.HandleFunc("/projects/{id}", a.handleGetProject).Methods(http.MethodGet)
	a.router.HandleFunc("/projects/{id}", a.handleDeleteProject).Methods(http.MethodDelete)
	a.router.HandleFunc("/projects/{id}/members", a.handleListMembers).Methods(http.MethodGet)
	a.router.HandleFunc("/projects/{id}/members", a.handleAddMember).Methods(http.MethodPost)
	a.router.HandleFunc("/projects/{id}/members/{userID}", a.handleRemoveMember).Methods(http.MethodDelete)
	a.router.HandleFunc("/projects/{id}/tasks", a.handleCreateTask).Methods(http.MethodPost)
	a.router.HandleFunc("/projects/{id}/tasks", a.handleListTasks).Methods(http.MethodGet)

	a.router.HandleFunc("/tasks/{id}", a.handleGetTask).Methods(http.MethodGet)
	a.router.HandleFunc("/tasks/{id}", a.handleUpdateTask).Methods(http.MethodPatch)
	a.router.HandleFunc("/tasks/{id}", a.handleDeleteTask).Methods(http.MethodDelete)
	a.router.HandleFunc("/tasks/{id}/status", a.handleUpdateStatus).Methods(http.MethodPatch)
	a.router.HandleFunc("/tasks/{id}/priority", a.handleUpdatePriority).Methods(http.MethodPatch)
	a.router.HandleFunc("/tasks/{id}/assign", a.handleAssignTask).Methods(http.MethodPatch)
	a.router.HandleFunc("/tasks/{id}/logs", a.handleTaskLogs).Methods(http.MethodGet)
	a.router.HandleFunc("/tasks/{id}/comments", a.handleCreateComment).Methods(http.MethodPost)
	a.router.HandleFunc("/tasks/{id}/comments", a.handleListComments).Methods(http.MethodGet)
}

func (a *API) Start() error {
	return a.server.ListenAndServe()
}

// Shutdown stops accepting new connections and waits for in-flight requests
// to finish, bounded by the context. Start returns http.ErrServerClosed.
func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Router exposes the configured router for tests.
func (a *API) Router() *mux.Router {
	return a.router
}
