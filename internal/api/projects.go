package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/NebulaScout/TeamTrack/internal/authz"
	"github.com/NebulaScout/TeamTrack/internal/db"
	"github.com/NebulaScout/TeamTrack/internal/projects"
	"github.com/gorilla/mux"
)

type createProjectRequestBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type addMemberRequestBody struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New("invalid id: " + raw)
	}

	return uint(id), nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	return time.Parse(dateLayout, value)
}

func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actorFromRequest(r)
	if err != nil {
		a.unauthorized(w, err)
		return
	}

	allowed, err := a.evaluator.HasCollectionPermission(actor, authz.ActionCreate, authz.ResourceProjects)
	if err != nil {
		a.serviceError(w, err)
		return
	}
	if !allowed {
		a.forbidden(w)
		return
	}

	body := &createProjectRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	startDate, err := parseDate(body.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date", http.StatusBadRequest)
		return
	}
	endDate, err := parseDate(body.EndDate)
	if err != nil {
		http.Error(w, "invalid end_date", http.StatusBadRequest)
		return
	}

	project, err := a.projects.CreateProject(actor.ID, projects.CreateInput{
		Name:        body.Name,
		Description: body.Description,
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		a.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, projectView(project))
}

func (a *API) handleGetProject(w http.ResponseWriter, r *http.Request) {
	_, project, ok := a.authorizeProject(w, r, authz.ActionRetrieve)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, projectView(project))
}

func (a *API) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	_, project, ok := a.authorizeProject(w, r, authz.ActionDestroy)
	if !ok {
		return
	}

	if err := a.projects.DeleteProject(project.ID); err != nil {
		a.serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListMembers(w http.ResponseWriter, r *http.Request) {
	_, project, ok := a.authorizeProject(w, r, authz.ActionRetrieve)
	if !ok {
		return
	}

	memberships, err := a.projects.Members(project.ID)
	if err != nil {
		a.serviceError(w, err)
		return
	}

	views := make([]memberResponse, 0, len(memberships))
	for i := range memberships {
		views = append(views, memberView(&memberships[i]))
	}

	writeJSON(w, http.StatusOK, views)
}

func (a *API) handleAddMember(w http.ResponseWriter, r *http.Request) {
	_, project, ok := a.authorizeProject(w, r, authz.ActionAddMembers)
	if !ok {
		return
	}

	body := &addMemberRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil || body.UserID == 0 || body.Role == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	membership, err := a.projects.AddMember(project.ID, body.UserID, body.Role)
	if err != nil {
		a.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, memberView(membership))
}

func (a *API) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	_, project, ok := a.authorizeProject(w, r, authz.ActionAddMembers)
	if !ok {
		return
	}

	userID, err := pathID(r, "userID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.projects.RemoveMember(project.ID, userID); err != nil {
		a.serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizeProject runs the collection check, loads the project and runs the
// object check. Writes the failure response itself; callers bail when ok is
// false.
func (a *API) authorizeProject(w http.ResponseWriter, r *http.Request, action authz.Action) (authz.Actor, *db.Project, bool) {
	actor, err := a.actorFromRequest(r)
	if err != nil {
		a.unauthorized(w, err)
		return authz.Actor{}, nil, false
	}

	projectID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return authz.Actor{}, nil, false
	}

	project, err := a.projects.GetProject(projectID)
	if err != nil {
		a.serviceError(w, err)
		return authz.Actor{}, nil, false
	}

	allowed, err := a.evaluator.HasObjectPermission(actor, action, authz.ResourceProjects, authz.ObjectRef{
		CreatorID: project.CreatorID,
		ProjectID: project.ID,
	})
	if err != nil {
		a.serviceError(w, err)
		return authz.Actor{}, nil, false
	}
	if !allowed {
		a.forbidden(w)
		return authz.Actor{}, nil, false
	}

	return actor, project, true
}
