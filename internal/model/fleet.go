package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// vehicles: fleet. Its cost parameters are read live on every
// recalculation, so editing them moves the transport cost of every event
// that still references the vehicle.
type Vehicle struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name         string `gorm:"type:varchar(255);not null"`
	LicensePlate string `gorm:"type:varchar(16);not null"`

	KmPerLiter           decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	AvgFuelPrice         decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	MaintenanceCostPerKm decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	Active bool `gorm:"not null;default:true;index"`
}

func (v *Vehicle) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
