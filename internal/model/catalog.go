package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CatalogItemType string

const (
	CatalogItemProduct CatalogItemType = "PRODUCT"
	CatalogItemService CatalogItemType = "SERVICE"
)

func (t CatalogItemType) Valid() bool {
	return t == CatalogItemProduct || t == CatalogItemService
}

// categories
type Category struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name string `gorm:"type:varchar(255);not null;uniqueIndex"`

	Active bool `gorm:"not null;default:true;index"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// catalog_items: products and services offered to clients.
type CatalogItem struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	CategoryID *uuid.UUID `gorm:"type:uuid;index"`

	Name        string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:text"`
	Type        CatalogItemType `gorm:"type:varchar(16);not null"`

	// Current prices. Events keep their own copies in event_items.
	PriceClient  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	InternalCost decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	StockQuantity int `gorm:"not null;default:0"`

	Active bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (i *CatalogItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
