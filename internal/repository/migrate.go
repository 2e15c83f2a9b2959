package repository

import "gorm.io/gorm"

// Migrate creates the schema and the double-booking guard: a partial unique
// index on (location, date, time_slot) restricted to non-terminal statuses.
// The index is what turns concurrent submissions for one slot into a
// single-writer-wins outcome; application-level occupancy checks are only a
// fast path. Supported by both PostgreSQL and SQLite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel{},
		&locationModel{},
		&rentalRequestModel{},
	); err != nil {
		return err
	}

	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_no_double_booking
		 ON rental_requests (location, date, time_slot)
		 WHERE status IN ('pending', 'approved')`,
	).Error
}
