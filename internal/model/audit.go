package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Kind of audit record.
type AuditEntryType string

const (
	AuditEventCreated           AuditEntryType = "event_created"
	AuditEventUpdated           AuditEntryType = "event_updated"
	AuditEventDeleted           AuditEntryType = "event_deleted"
	AuditItemAttached           AuditEntryType = "item_attached"
	AuditItemDetached           AuditEntryType = "item_detached"
	AuditTeamAttached           AuditEntryType = "team_attached"
	AuditTeamDetached           AuditEntryType = "team_detached"
	AuditFinancialsRecalculated AuditEntryType = "financials_recalculated"
	AuditRecalculationFailed    AuditEntryType = "recalculation_failed"
)

// audit_entries: history of event mutations and recalculations.
type AuditEntry struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EntryType AuditEntryType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"index"`

	EventID *uuid.UUID `gorm:"type:uuid;index"`
	UserID  *uuid.UUID `gorm:"type:uuid;index"`

	// Arbitrary payload: computed breakdown, error text, changed fields.
	Details datatypes.JSON `gorm:"type:jsonb"`
}

func (a *AuditEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
