package api

import (
	"time"

	"github.com/NebulaScout/TeamTrack/internal/db"
)

const dateLayout = "2006-01-02"

type projectResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func projectView(p *db.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate.Format(dateLayout),
		EndDate:     p.EndDate.Format(dateLayout),
		CreatedBy:   p.CreatorID,
		CreatedAt:   p.CreatedAt,
	}
}

type memberResponse struct {
	ProjectID uint   `json:"project_id"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

func memberView(m *db.Membership) memberResponse {
	return memberResponse{
		ProjectID: m.ProjectID,
		UserID:    m.UserID,
		Username:  m.User.Username,
		Role:      m.RoleName,
	}
}

type taskResponse struct {
	ID          uint      `json:"id"`
	ProjectID   uint      `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     string    `json:"due_date"`
	AssigneeID  *uint     `json:"assigned_to"`
	CreatedBy   *uint     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func taskView(t *db.Task) taskResponse {
	dueDate := ""
	if !t.DueDate.IsZero() {
		dueDate = t.DueDate.Format(dateLayout)
	}

	return taskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     dueDate,
		AssigneeID:  t.AssigneeID,
		CreatedBy:   t.CreatorID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type historyResponse struct {
	ID        uint      `json:"id"`
	TaskID    *uint     `json:"task_id"`
	Field     string    `json:"field"`
	OldValue  *string   `json:"old_value"`
	NewValue  string    `json:"new_value"`
	ChangedBy string    `json:"changed_by"`
	Timestamp time.Time `json:"timestamp"`
}

func historyView(h *db.TaskHistory) historyResponse {
	return historyResponse{
		ID:        h.ID,
		TaskID:    h.TaskID,
		Field:     string(h.Field),
		OldValue:  h.OldValue,
		NewValue:  h.NewValue,
		ChangedBy: h.Actor.Username,
		Timestamp: h.CreatedAt,
	}
}

type commentResponse struct {
	ID        uint      `json:"id"`
	TaskID    uint      `json:"task_id"`
	Author    *string   `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func commentView(c *db.Comment) commentResponse {
	var author *string
	if c.Author != nil {
		author = &c.Author.Username
	}

	return commentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		Author:    author,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}
