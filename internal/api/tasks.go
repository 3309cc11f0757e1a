package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/NebulaScout/TeamTrack/internal/authz"
	"github.com/NebulaScout/TeamTrack/internal/db"
	"github.com/NebulaScout/TeamTrack/internal/tasks"
)

type createTaskRequestBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	AssigneeID  *uint  `json:"assigned_to"`
}

type updateTaskRequestBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

type updateStatusRequestBody struct {
	Status string `json:"status"`
}

type updatePriorityRequestBody struct {
	Priority string `json:"priority"`
}

type assignTaskRequestBody struct {
	AssignedTo uint `json:"assigned_to"`
}

type createCommentRequestBody struct {
	Content string `json:"content"`
}

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	actor, project, ok := a.authorizeProjectScoped(w, r, authz.ActionCreate, authz.ResourceTasks)
	if !ok {
		return
	}

	body := &createTaskRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	dueDate, err := parseDate(body.DueDate)
	if err != nil {
		http.Error(w, "invalid due_date", http.StatusBadRequest)
		return
	}

	task, err := a.tasks.CreateTask(actor.ID, project.ID, tasks.CreateInput{
		Title:       body.Title,
		Description: body.Description,
		Status:      db.TaskStatus(body.Status),
		Priority:    db.TaskPriority(body.Priority),
		DueDate:     dueDate,
		AssigneeID:  body.AssigneeID,
	})
	if err != nil {
		a.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, taskView(task))
}

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	_, project, ok := a.authorizeProjectScoped(w, r, authz.ActionList, authz.ResourceTasks)
	if !ok {
		return
	}

	items, err := a.db.ListTasksByProject(project.ID)
	if err != nil {
		a.serviceError(w, err)
		return
	}

	views := make([]taskResponse, 0, len(items))
	for i := range items {
		views = append(views, taskView(&items[i]))
	}

	writeJSON(w, http.StatusOK, views)
}

func (a *API) handleGetTask(w http.ResponseWriter, r *http.Request) {
	_, task, ok := a.authorizeTask(w, r, authz.ActionRetrieve)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, taskView(task))
}

func (a *API) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, task, ok := a.authorizeTask(w, r, authz.ActionUpdate)
	if !ok {
		return
	}

	body := &updateTaskRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	changes := tasks.Changes{
		Title:       body.Title,
		Description: body.Description,
	}
	if body.Status != nil {
		status := db.TaskStatus(*body.Status)
		changes.Status = &status
	}
	if body.Priority != nil {
		priority := db.TaskPriority(*body.Priority)
		changes.Priority = &priority
	}
	if body.DueDate != nil {
		dueDate, err := time.Parse(dateLayout, *body.DueDate)
		if err != nil {
			http.Error(w, "invalid due_date", http.StatusBadRequest)
			return
		}
		changes.DueDate = &dueDate
	}

	updated, err := a.tasks.UpdateTask(actor.ID, task.ID, changes)
	if err != nil {
		a.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskView(updated))
}

func (a *API) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, task, ok := a.authorizeTask(w, r, authz.ActionUpdateStatus)
	if !ok {
		return
	}

	body := &updateStatusRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil || body.Status == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	updated, err := a.tasks.UpdateStatus(actor.ID, task.ID, db.TaskStatus(body.Status))
	if err != nil {
		a.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskView(updated))
}

func (a *API) handleUpdatePriority(w http.ResponseWriter, r *http.Request) {
	actor, task, ok := a.authorizeTask(w, r, authz.ActionUpdatePriority)
	if !ok {
		return
	}

	body := &updatePriorityRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil || body.Priority == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	updated, err := a.tasks.UpdatePriority(actor.ID, task.ID, db.TaskPriority(body.Priority))
	if err != nil {
		a.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskView(updated))
}

func (a *API) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	actor, task, ok := a.authorizeTask(w, r, authz.ActionAssign)
	if !ok {
		return
	}

	body := &assignTaskRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil || body.AssignedTo == 0 {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	updated, err := a.tasks.Assign(actor.ID, task.ID, body.AssignedTo)
	if err != nil {
		a.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskView(updated))
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	_, task, ok := a.authorizeTask(w, r, authz.ActionDestroy)
	if !ok {
		return
	}

	if err := a.tasks.DeleteTask(task.ID); err != nil {
		a.serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleTaskLogs(w http.ResponseWriter, r *http.Request) {
	_, task, ok := a.authorizeTask(w, r, authz.ActionLogs)
	if !ok {
		return
	}

	entries, err := a.tasks.History(task.ID)
	if err != nil {
		a.serviceError(w, err)
		return
	}

	views := make([]historyResponse, 0, len(entries))
	for i := range entries {
		views = append(views, historyView(&entries[i]))
	}

	writeJSON(w, http.StatusOK, views)
}

func (a *API) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	actor, task, ok := a.authorizeTaskComment(w, r, authz.ActionCreate)
	if !ok {
		return
	}

	body := &createCommentRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	comment, err := a.tasks.CreateComment(actor.ID, task.ID, body.Content)
	if err != nil {
		a.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, commentView(comment))
}

func (a *API) handleListComments(w http.ResponseWriter, r *http.Request) {
	_, task, ok := a.authorizeTaskComment(w, r, authz.ActionList)
	if !ok {
		return
	}

	comments, err := a.tasks.Comments(task.ID)
	if err != nil {
		a.serviceError(w, err)
		return
	}

	views := make([]commentResponse, 0, len(comments))
	for i := range comments {
		views = append(views, commentView(&comments[i]))
	}

	writeJSON(w, http.StatusOK, views)
}
