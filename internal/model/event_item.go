package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// event_items: catalog item booked for an event. Price and cost are
// copied from the catalog at attach time and never rewritten.
type EventItem struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CatalogItemID uuid.UUID `gorm:"type:uuid;not null;index"`

	Quantity int `gorm:"not null"`

	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	UnitCostSnapshot  decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	Event       *Event       `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CatalogItem *CatalogItem `gorm:"foreignKey:CatalogItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (i *EventItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// event_team: employee working an event, with payment and transport cost
// frozen at attach time.
type EventTeamMember struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventID    uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`

	PaymentSnapshot       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	TransportCostSnapshot decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	Event    *Event    `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Employee *Employee `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (EventTeamMember) TableName() string { return "event_team" }

func (m *EventTeamMember) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
