package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// users: administrators of the back office.
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Name         string `gorm:"type:varchar(255);not null"`

	CreatedAt time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// customers
type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name    string `gorm:"type:varchar(255);not null;index"`
	Phone   string `gorm:"type:varchar(32);index"`
	Email   string `gorm:"type:varchar(255)"`
	Address string `gorm:"type:text"`
	Notes   string `gorm:"type:text"`

	Active bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Events []Event `gorm:"foreignKey:CustomerID"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// ids are generated client side so the schema stays portable between
// postgres and sqlite.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
