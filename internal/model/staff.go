package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// employees: team members that can be assigned to events.
type Employee struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name  string `gorm:"type:varchar(255);not null"`
	Phone string `gorm:"type:varchar(32)"`
	Role  string `gorm:"type:varchar(64);not null"`

	// Per-event payment and the cost of getting there on their own.
	BasePayment             decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	IndividualTransportCost decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	Active bool `gorm:"not null;default:true;index"`
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
