package db

func (d *DB) CreateUser(user *User) error {
	return d.db.Create(user).Error
}

func (d *DB) GetUserByID(id uint) (*User, error) {
	user := &User{}

	if err := d.db.First(user, id).Error; err != nil {
		return nil, wrapNotFound(err, "user", id)
	}

	return user, nil
}

func (d *DB) GetUserByUsername(username string) (*User, error) {
	user := &User{}

	if err := d.db.Where("username = ?", username).First(user).Error; err != nil {
		return nil, wrapNotFound(err, "user", 0)
	}

	return user, nil
}

// DeleteUser removes the user and nulls out every reference to them: task
// assignments, task creator stamps, comment authorship. Memberships are
// removed outright. History rows keep their actor so the audit trail stays
// attributable; sqlite does not enforce the SET NULL constraints in tests,
// so the store does it explicitly.
func (d *DB) DeleteUser(id uint) error {
	return d.Transaction(func(tx *DB) error {
		if _, err := tx.GetUserByID(id); err != nil {
			return err
		}

		if err := tx.db.Model(&Task{}).Where("assignee_id = ?", id).Update("assignee_id", nil).Error; err != nil {
			return err
		}
		if err := tx.db.Model(&Task{}).Where("creator_id = ?", id).Update("creator_id", nil).Error; err != nil {
			return err
		}
		if err := tx.db.Model(&Comment{}).Where("author_id = ?", id).Update("author_id", nil).Error; err != nil {
			return err
		}
		if err := tx.db.Where("user_id = ?", id).Delete(&Membership{}).Error; err != nil {
			return err
		}
		if err := tx.db.Where("user_id = ?", id).Unscoped().Delete(&Token{}).Error; err != nil {
			return err
		}

		return tx.db.Unscoped().Delete(&User{}, id).Error
	})
}
