package db

import "gorm.io/gorm"

type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Transaction runs fn against a DB bound to a single database transaction.
// Returning an error rolls everything back.
func (d *DB) Transaction(fn func(tx *DB) error) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		return fn(&DB{db: tx})
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Project{},
		&Membership{},
		&Task{},
		&TaskHistory{},
		&Comment{},
		&Role{},
		&Permission{},
		&Token{},
	)
}
