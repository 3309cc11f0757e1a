// Package tasks implements the task mutation pipeline: creation, tracked
// field updates and assignment. Every change to a tracked field writes one
// history entry in the same transaction that persists the new value.
package tasks

import (
	"time"

	"github.com/NebulaScout/TeamTrack/internal/db"
)

// ChangeHook observes committed tracked-field changes, one call per history
// entry. Hooks run after the transaction commits; they cannot veto or roll
// back a change.
type ChangeHook func(task *db.Task, entry *db.TaskHistory)

type Service struct {
	db       *db.DB
	onChange ChangeHook
}

func NewService(d *db.DB) *Service {
	return &Service{db: d}
}

func (s *Service) SetChangeHook(hook ChangeHook) {
	s.onChange = hook
}

type CreateInput struct {
	Title       string
	Description string
	Status      db.TaskStatus
	Priority    db.TaskPriority
	DueDate     time.Time
	AssigneeID  *uint
}

// CreateTask persists a new task in the project, stamped with the actor as
// creator. Creation writes no history: the log tracks post-creation changes
// only.
func (s *Service) CreateTask(actorID, projectID uint, input CreateInput) (*db.Task, error) {
	if input.Title == "" {
		return nil, db.NewValidationError("title is required")
	}

	status := input.Status
	if status == "" {
		status = db.StatusToDo
	}
	priority := input.Priority
	if priority == "" {
		priority = db.PriorityMedium
	}
	if !validStatus(status) {
		return nil, db.NewValidationError("invalid status: " + string(status))
	}
	if !validPriority(priority) {
		return nil, db.NewValidationError("invalid priority: " + string(priority))
	}

	task := &db.Task{}
	err := s.db.Transaction(func(tx *db.DB) error {
		project, err := tx.GetProjectByID(projectID)
		if err != nil {
			return err
		}

		if input.AssigneeID != nil {
			if _, err := tx.GetUserByID(*input.AssigneeID); err != nil {
				return err
			}
		}

		actor := actorID
		task = &db.Task{
			ProjectID:   project.ID,
			Title:       input.Title,
			Description: input.Description,
			Status:      status,
			Priority:    priority,
			DueDate:     input.DueDate,
			AssigneeID:  input.AssigneeID,
			CreatorID:   &actor,
		}

		return tx.CreateTask(task)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// Changes lists the tracked fields a single update call may touch. Nil
// means "leave alone". Each set field is diffed against the current value
// independently; unchanged values are silent no-ops.
type Changes struct {
	Title       *string
	Description *string
	Status      *db.TaskStatus
	Priority    *db.TaskPriority
	DueDate     *time.Time
	AssigneeID  *uint
}

// UpdateTask applies the changes to the task under a row lock, appending one
// history entry per field whose value actually changed. The history writes
// and the field updates commit together or not at all.
func (s *Service) UpdateTask(actorID, taskID uint, changes Changes) (*db.Task, error) {
	if changes.Status != nil && !validStatus(*changes.Status) {
		return nil, db.NewValidationError("invalid status: " + string(*changes.Status))
	}
	if changes.Priority != nil && !validPriority(*changes.Priority) {
		return nil, db.NewValidationError("invalid priority: " + string(*changes.Priority))
	}

	task := &db.Task{}
	applied := []db.TaskHistory{}
	err := s.db.Transaction(func(tx *db.DB) error {
		locked, err := tx.GetTaskForUpdate(taskID)
		if err != nil {
			return err
		}

		diffs, err := diff(tx, locked, changes)
		if err != nil {
			return err
		}

		applied = applied[:0]
		for _, d := range diffs {
			entry := &db.TaskHistory{
				TaskID:   &locked.ID,
				Field:    d.field,
				OldValue: d.oldValue,
				NewValue: d.newValue,
				ActorID:  actorID,
			}
			if err := tx.AppendHistory(entry); err != nil {
				return err
			}

			applied = append(applied, *entry)
			d.apply(locked)
		}

		if len(diffs) > 0 {
			if err := tx.SaveTask(locked); err != nil {
				return err
			}
		}

		task = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.onChange != nil {
		for i := range applied {
			s.onChange(task, &applied[i])
		}
	}

	return task, nil
}

// Assign points the task at a new assignee. A reassignment to the current
// assignee is a no-op; an unknown user aborts before anything is written.
func (s *Service) Assign(actorID, taskID, assigneeID uint) (*db.Task, error) {
	return s.UpdateTask(actorID, taskID, Changes{AssigneeID: &assigneeID})
}

func (s *Service) UpdateStatus(actorID, taskID uint, status db.TaskStatus) (*db.Task, error) {
	return s.UpdateTask(actorID, taskID, Changes{Status: &status})
}

func (s *Service) UpdatePriority(actorID, taskID uint, priority db.TaskPriority) (*db.Task, error) {
	return s.UpdateTask(actorID, taskID, Changes{Priority: &priority})
}

func (s *Service) GetTask(taskID uint) (*db.Task, error) {
	return s.db.GetTaskByID(taskID)
}

func (s *Service) History(taskID uint) ([]db.TaskHistory, error) {
	if _, err := s.db.GetTaskByID(taskID); err != nil {
		return nil, err
	}

	return s.db.HistoryForTask(taskID)
}

// DeleteTask removes the task; its history survives with the task reference
// nulled.
func (s *Service) DeleteTask(taskID uint) error {
	return s.db.DeleteTask(taskID)
}

func (s *Service) CreateComment(actorID, taskID uint, content string) (*db.Comment, error) {
	if content == "" {
		return nil, db.NewValidationError("content is required")
	}

	if _, err := s.db.GetTaskByID(taskID); err != nil {
		return nil, err
	}

	author := actorID
	comment := &db.Comment{
		TaskID:   taskID,
		AuthorID: &author,
		Content:  content,
	}
	if err := s.db.CreateComment(comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *Service) Comments(taskID uint) ([]db.Comment, error) {
	if _, err := s.db.GetTaskByID(taskID); err != nil {
		return nil, err
	}

	return s.db.CommentsForTask(taskID)
}

func validStatus(s db.TaskStatus) bool {
	switch s {
	case db.StatusToDo, db.StatusInProgress, db.StatusInReview, db.StatusDone:
		return true
	}
	return false
}

func validPriority(p db.TaskPriority) bool {
	switch p {
	case db.PriorityLow, db.PriorityMedium, db.PriorityHigh:
		return true
	}
	return false
}
