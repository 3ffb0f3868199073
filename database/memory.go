package database

import "gorm.io/gorm"

// OpenMemory returns a migrated in-memory SQLite database for tests.
func OpenMemory() (*gorm.DB, error) {
	db, err := Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
