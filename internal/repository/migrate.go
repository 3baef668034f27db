package repository

import (
	"log"

	"gorm.io/gorm"
)

// AutoMigrate creates the schema. On PostgreSQL it additionally installs
// a daterange exclusion constraint over active reservations, so the
// no-overlap invariant holds at the database level even if a write path
// bypasses the locked check-then-insert in Reserve.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userModel{}, &equipmentModel{}, &reservationModel{}); err != nil {
		return err
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		log.Printf("btree_gist extension unavailable, skipping exclusion constraint: %v", err)
		return nil
	}

	var cnt int64
	if err := db.Raw(
		`SELECT COUNT(1) FROM pg_constraint WHERE conname = 'reservations_no_overlap'`,
	).Scan(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return nil
	}

	return db.Exec(`
ALTER TABLE reservations ADD CONSTRAINT reservations_no_overlap
EXCLUDE USING gist (
	equipment_id WITH =,
	daterange(start_date::date, end_date::date, '[]') WITH &&
) WHERE (NOT finalized)
`).Error
}
