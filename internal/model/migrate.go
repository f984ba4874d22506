package model

import "gorm.io/gorm"

// AutoMigrate migrates every entity of the rental core.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Customer{},
		&Employee{},
		&Vehicle{},
		&Category{},
		&CatalogItem{},
		&Event{},
		&EventItem{},
		&EventTeamMember{},
		&AuditEntry{},
	)
}
