package db

import (
	"gorm.io/gorm/clause"
)

func (d *DB) CreateTask(task *Task) error {
	return d.db.Create(task).Error
}

func (d *DB) GetTaskByID(id uint) (*Task, error) {
	task := &Task{}

	if err := d.db.Preload("Creator").Preload("Assignee").First(task, id).Error; err != nil {
		return nil, wrapNotFound(err, "task", id)
	}

	return task, nil
}

// GetTaskForUpdate fetches the task under a row lock so that concurrent
// read-diff-write sequences on the same task serialize. Only meaningful
// inside a Transaction.
func (d *DB) GetTaskForUpdate(id uint) (*Task, error) {
	task := &Task{}

	err := d.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(task, id).Error
	if err != nil {
		return nil, wrapNotFound(err, "task", id)
	}

	return task, nil
}

func (d *DB) SaveTask(task *Task) error {
	return d.db.Save(task).Error
}

// DeleteTask removes the task and its comments. History entries are kept
// with their task reference nulled.
func (d *DB) DeleteTask(id uint) error {
	return d.Transaction(func(tx *DB) error {
		if _, err := tx.GetTaskByID(id); err != nil {
			return err
		}

		if err := tx.db.Model(&TaskHistory{}).Where("task_id = ?", id).Update("task_id", nil).Error; err != nil {
			return err
		}
		if err := tx.db.Where("task_id = ?", id).Unscoped().Delete(&Comment{}).Error; err != nil {
			return err
		}

		return tx.db.Unscoped().Delete(&Task{}, id).Error
	})
}

func (d *DB) ListTasksByProject(projectID uint) ([]Task, error) {
	tasks := make([]Task, 0)

	err := d.db.Preload("Creator").Preload("Assignee").
		Where("project_id = ?", projectID).Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// AppendHistory records one tracked-field transition. Entries are never
// updated or removed afterwards.
func (d *DB) AppendHistory(entry *TaskHistory) error {
	return d.db.Create(entry).Error
}

func (d *DB) HistoryForTask(taskID uint) ([]TaskHistory, error) {
	entries := make([]TaskHistory, 0)

	err := d.db.Preload("Actor").Where("task_id = ?", taskID).
		Order("id ASC").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (d *DB) CreateComment(comment *Comment) error {
	return d.db.Create(comment).Error
}

func (d *DB) CommentsForTask(taskID uint) ([]Comment, error) {
	comments := make([]Comment, 0)

	err := d.db.Preload("Author").Where("task_id = ?", taskID).
		Order("id ASC").Find(&comments).Error
	if err != nil {
		return nil, err
	}

	return comments, nil
}
