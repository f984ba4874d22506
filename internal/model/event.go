package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// How equipment and staff get to the venue.
type TransportType string

const (
	TransportNone       TransportType = "NO_TRANSPORT"
	TransportFleet      TransportType = "FLEET_VEHICLE"
	TransportIndividual TransportType = "INDIVIDUAL_TRANSPORT"
)

func (t TransportType) Valid() bool {
	switch t {
	case TransportNone, TransportFleet, TransportIndividual:
		return true
	}
	return false
}

type EventStatus string

const (
	EventStatusPending   EventStatus = "PENDING"
	EventStatusConfirmed EventStatus = "CONFIRMED"
	EventStatusDone      EventStatus = "DONE"
	EventStatusCanceled  EventStatus = "CANCELED"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusConfirmed, EventStatusDone, EventStatusCanceled:
		return true
	}
	return false
}

type FinancialStatus string

const (
	FinancialStatusUnpaid  FinancialStatus = "UNPAID"
	FinancialStatusPartial FinancialStatus = "PARTIAL"
	FinancialStatusPaid    FinancialStatus = "PAID"
)

func (s FinancialStatus) Valid() bool {
	switch s {
	case FinancialStatusUnpaid, FinancialStatusPartial, FinancialStatusPaid:
		return true
	}
	return false
}

// events: a booking engagement together with its derived financials.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	CustomerID *uuid.UUID `gorm:"type:uuid;index"`

	ClientName    string `gorm:"type:varchar(255);not null"`
	ClientPhone   string `gorm:"type:varchar(32)"`
	ClientEmail   string `gorm:"type:varchar(255)"`
	ClientAddress string `gorm:"type:text"`

	// Venue.
	Address   string    `gorm:"type:text;not null"`
	EventDate time.Time `gorm:"not null;index"`

	// Round trip, already doubled by the caller.
	DistanceKm  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	GuestAdults int             `gorm:"not null;default:0"`
	GuestKids   int             `gorm:"not null;default:0"`

	TransportType TransportType `gorm:"type:varchar(32);not null"`
	VehicleID     *uuid.UUID    `gorm:"type:uuid;index"`

	Status          EventStatus     `gorm:"type:varchar(32);not null;default:'PENDING';index"`
	FinancialStatus FinancialStatus `gorm:"type:varchar(32);not null;default:'UNPAID'"`
	Notes           string          `gorm:"type:text"`

	ExtraExpenses decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	// Derived by the recalculation engine, never written by callers.
	TotalRevenue       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalCostItems     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalCostLabor     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalCostTransport decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	NetProfit          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	ProfitMargin       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`

	Active bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Navigation fields for Preload.
	Customer *Customer         `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Vehicle  *Vehicle          `gorm:"foreignKey:VehicleID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Items    []EventItem       `gorm:"foreignKey:EventID"`
	Team     []EventTeamMember `gorm:"foreignKey:EventID"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// Financials: the six derived fields persisted by a recalculation.
type Financials struct {
	TotalRevenue       decimal.Decimal
	TotalCostItems     decimal.Decimal
	TotalCostLabor     decimal.Decimal
	TotalCostTransport decimal.Decimal
	NetProfit          decimal.Decimal
	ProfitMargin       decimal.Decimal
}

// Financials returns the derived fields currently stored on the event.
func (e *Event) Financials() Financials {
	return Financials{
		TotalRevenue:       e.TotalRevenue,
		TotalCostItems:     e.TotalCostItems,
		TotalCostLabor:     e.TotalCostLabor,
		TotalCostTransport: e.TotalCostTransport,
		NetProfit:          e.NetProfit,
		ProfitMargin:       e.ProfitMargin,
	}
}
