package tasks

import (
	"github.com/NebulaScout/TeamTrack/internal/db"
)

const dueDateLayout = "2006-01-02"

// fieldDiff is one tracked-field transition: the history values to record
// and the mutation to apply once the entry is written.
type fieldDiff struct {
	field    db.TrackedField
	oldValue *string
	newValue string
	apply    func(t *db.Task)
}

// diff compares the requested changes against the locked task, one tracked
// field at a time. Value-equal changes produce nothing. Assignee changes
// resolve both user ids to usernames for the history record, failing the
// whole update if the new assignee does not exist.
func diff(tx *db.DB, task *db.Task, changes Changes) ([]fieldDiff, error) {
	diffs := []fieldDiff{}

	if changes.Title != nil && *changes.Title != task.Title {
		old := task.Title
		next := *changes.Title
		diffs = append(diffs, fieldDiff{
			field:    db.FieldTitle,
			oldValue: &old,
			newValue: next,
			apply:    func(t *db.Task) { t.Title = next },
		})
	}

	if changes.Description != nil && *changes.Description != task.Description {
		old := task.Description
		next := *changes.Description
		diffs = append(diffs, fieldDiff{
			field:    db.FieldDescription,
			oldValue: &old,
			newValue: next,
			apply:    func(t *db.Task) { t.Description = next },
		})
	}

	if changes.Status != nil && *changes.Status != task.Status {
		old := string(task.Status)
		next := *changes.Status
		diffs = append(diffs, fieldDiff{
			field:    db.FieldStatus,
			oldValue: &old,
			newValue: string(next),
			apply:    func(t *db.Task) { t.Status = next },
		})
	}

	if changes.Priority != nil && *changes.Priority != task.Priority {
		old := string(task.Priority)
		next := *changes.Priority
		diffs = append(diffs, fieldDiff{
			field:    db.FieldPriority,
			oldValue: &old,
			newValue: string(next),
			apply:    func(t *db.Task) { t.Priority = next },
		})
	}

	if changes.DueDate != nil && !changes.DueDate.Equal(task.DueDate) {
		var old *string
		if !task.DueDate.IsZero() {
			v := task.DueDate.Format(dueDateLayout)
			old = &v
		}
		next := *changes.DueDate
		diffs = append(diffs, fieldDiff{
			field:    db.FieldDueDate,
			oldValue: old,
			newValue: next.Format(dueDateLayout),
			apply:    func(t *db.Task) { t.DueDate = next },
		})
	}

	if changes.AssigneeID != nil && (task.AssigneeID == nil || *task.AssigneeID != *changes.AssigneeID) {
		assignee, err := tx.GetUserByID(*changes.AssigneeID)
		if err != nil {
			return nil, err
		}

		// A dangling previous assignee reads as unset; anything else
		// fails the update.
		var old *string
		if task.AssigneeID != nil {
			previous, err := tx.GetUserByID(*task.AssigneeID)
			if err != nil && !db.IsNotFound(err) {
				return nil, err
			}
			if err == nil {
				old = &previous.Username
			}
		}

		next := *changes.AssigneeID
		diffs = append(diffs, fieldDiff{
			field:    db.FieldAssignedTo,
			oldValue: old,
			newValue: assignee.Username,
			apply:    func(t *db.Task) { t.AssigneeID = &next },
		})
	}

	return diffs, nil
}
