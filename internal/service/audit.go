package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/betinha/rental-core/internal/finance"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/repository"
)

func writeAudit(ctx context.Context, store repository.Store, kind model.AuditEntryType, eventID uuid.UUID, details map[string]any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return internalError("encode audit details", err)
	}
	entry := &model.AuditEntry{
		EntryType: kind,
		EventID:   &eventID,
		Details:   datatypes.JSON(raw),
	}
	if uid, ok := UserIDFrom(ctx); ok {
		entry.UserID = &uid
	}
	if err := store.Audit().Create(ctx, entry); err != nil {
		return internalError("write audit entry", err)
	}
	return nil
}

func breakdownDetails(b finance.Breakdown) map[string]any {
	return map[string]any{
		"totalRevenue":       finance.Format(b.TotalRevenue),
		"totalCostItems":     finance.Format(b.TotalCostItems),
		"totalCostLabor":     finance.Format(b.TotalCostLabor),
		"fuelCost":           finance.Format(b.FuelCost),
		"maintenanceCost":    finance.Format(b.MaintenanceCost),
		"totalCostTransport": finance.Format(b.TotalCostTransport),
		"extraExpenses":      finance.Format(b.ExtraExpenses),
		"netProfit":          finance.Format(b.NetProfit),
		"profitMargin":       finance.Format(b.ProfitMargin),
	}
}

// AuditTrail returns the newest audit entries of an event, deleted events
// included.
func (s *EventService) AuditTrail(ctx context.Context, eventID string, limit int) ([]model.AuditEntry, error) {
	id, err := parseID("eventId", eventID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Audit().ListByEvent(ctx, id, limit)
	if err != nil {
		return nil, internalError("list audit entries", err)
	}
	return entries, nil
}
