package db

import (
	"log"

	"github.com/mindsettle/therapy-app/models"
	"gorm.io/gorm"
)

// bookingHoldIndex is the arbiter for double-booking: at most one
// pending or confirmed booking may exist per (slot, date, start time).
// Postgres checks it inside the insert, so two concurrent reservations
// for the same tuple linearize at the store and exactly one wins.
const bookingHoldIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_hold
ON bookings (availability_slot_id, date, start_time)
WHERE status IN ('pending', 'confirmed') AND deleted_at IS NULL
`

func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.AvailabilitySlot{},
		&models.Booking{},
		&models.OutboxEvent{},
	)
	if err != nil {
		return err
	}

	if err := gdb.Exec(bookingHoldIndex).Error; err != nil {
		return err
	}

	seedRoles(gdb)
	log.Println("✅ Migrations applied successfully!")
	return nil
}

func seedRoles(gdb *gorm.DB) {
	roles := []models.Role{
		{Name: models.RoleAdmin, Description: "Administrator with full access"},
		{Name: models.RoleTherapist, Description: "Therapist who publishes availability and holds sessions"},
		{Name: models.RoleCustomer, Description: "Customer who books sessions"},
	}
	for _, role := range roles {
		var existing models.Role
		if gdb.Where("name = ?", role.Name).First(&existing).RowsAffected == 0 {
			gdb.Create(&role)
		}
	}
}
