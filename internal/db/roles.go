package db

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsurePermissions seeds the permission catalog with the given codes.
// Existing rows are left alone, so re-running is safe.
func (d *DB) EnsurePermissions(codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	permissions := make([]Permission, 0, len(codes))
	for _, code := range codes {
		permissions = append(permissions, Permission{Code: code})
	}

	return d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&permissions).Error
}

// PermissionsByCode resolves codes against the catalog. Codes without a
// catalog row are simply absent from the result; the caller decides whether
// that is fatal.
func (d *DB) PermissionsByCode(codes []string) ([]Permission, error) {
	permissions := make([]Permission, 0, len(codes))

	if err := d.db.Where("code IN ?", codes).Find(&permissions).Error; err != nil {
		return nil, err
	}

	return permissions, nil
}

// UpsertRole creates the role if needed and replaces its permission set.
func (d *DB) UpsertRole(name string, permissions []Permission) error {
	role := &Role{}

	err := d.db.Where("name = ?", name).First(role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = &Role{Name: name}
		if err := d.db.Create(role).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return d.db.Model(role).Association("Permissions").Replace(permissions)
}

func (d *DB) GetRoleByName(name string) (*Role, error) {
	role := &Role{}

	if err := d.db.Preload("Permissions").Where("name = ?", name).First(role).Error; err != nil {
		return nil, wrapNotFound(err, "role", 0)
	}

	return role, nil
}
