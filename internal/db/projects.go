package db

import (
	"errors"

	"gorm.io/gorm"
)

func (d *DB) CreateProject(project *Project) error {
	return d.db.Create(project).Error
}

func (d *DB) GetProjectByID(id uint) (*Project, error) {
	project := &Project{}

	if err := d.db.Preload("Creator").First(project, id).Error; err != nil {
		return nil, wrapNotFound(err, "project", id)
	}

	return project, nil
}

// DeleteProject removes the project and everything it owns: memberships,
// tasks, task comments. History rows of the deleted tasks survive with their
// task reference nulled. The cascade runs in the store rather than relying
// on database-level foreign keys, which sqlite leaves off by default.
func (d *DB) DeleteProject(id uint) error {
	return d.Transaction(func(tx *DB) error {
		if _, err := tx.GetProjectByID(id); err != nil {
			return err
		}

		taskIDs := []uint{}
		if err := tx.db.Model(&Task{}).Where("project_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			if err := tx.db.Model(&TaskHistory{}).Where("task_id IN ?", taskIDs).Update("task_id", nil).Error; err != nil {
				return err
			}
			if err := tx.db.Where("task_id IN ?", taskIDs).Unscoped().Delete(&Comment{}).Error; err != nil {
				return err
			}
			if err := tx.db.Where("project_id = ?", id).Unscoped().Delete(&Task{}).Error; err != nil {
				return err
			}
		}

		if err := tx.db.Where("project_id = ?", id).Delete(&Membership{}).Error; err != nil {
			return err
		}

		return tx.db.Unscoped().Delete(&Project{}, id).Error
	})
}

// AddMember inserts a membership, rejecting a second row for the same
// (project, user) pair. The existence check and insert run in one
// transaction; the unique index covers the remaining race window.
func (d *DB) AddMember(membership *Membership) error {
	return d.Transaction(func(tx *DB) error {
		existing := &Membership{}
		err := tx.db.Where("project_id = ? AND user_id = ?", membership.ProjectID, membership.UserID).
			First(existing).Error
		if err == nil {
			return &DuplicateMembershipError{ProjectID: membership.ProjectID, UserID: membership.UserID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.db.Create(membership).Error
	})
}

// RoleOf reports the role the user holds in the project, if any.
func (d *DB) RoleOf(projectID, userID uint) (string, bool, error) {
	membership := &Membership{}

	err := d.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return membership.RoleName, true, nil
}

func (d *DB) RemoveMember(projectID, userID uint) error {
	result := d.db.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&Membership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Kind: "membership", ID: userID}
	}

	return nil
}

func (d *DB) ListMembers(projectID uint) ([]Membership, error) {
	memberships := make([]Membership, 0)

	if err := d.db.Preload("User").Where("project_id = ?", projectID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	return memberships, nil
}

// RoleNamesOf returns the distinct role names the user holds across all
// project memberships, the flat set collection-level checks evaluate.
func (d *DB) RoleNamesOf(userID uint) ([]string, error) {
	names := []string{}

	err := d.db.Model(&Membership{}).Distinct("role_name").
		Where("user_id = ?", userID).Pluck("role_name", &names).Error
	if err != nil {
		return nil, err
	}

	return names, nil
}
