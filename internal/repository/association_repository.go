package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/betinha/rental-core/internal/model"
)

// AssociationRepository manages the event_items and event_team rows.
// Deletes are scoped by association id AND event id and report how many
// rows matched, so callers can treat a miss as a no-op.
type AssociationRepository interface {
	InsertItem(ctx context.Context, item *model.EventItem) error
	InsertTeamMember(ctx context.Context, member *model.EventTeamMember) error
	DeleteItem(ctx context.Context, eventID, itemID uuid.UUID) (int64, error)
	DeleteTeamMember(ctx context.Context, eventID, teamID uuid.UUID) (int64, error)
	HasCatalogItem(ctx context.Context, eventID, catalogItemID uuid.UUID) (bool, error)
	HasEmployee(ctx context.Context, eventID, employeeID uuid.UUID) (bool, error)
}

type GormAssociationRepository struct {
	db *gorm.DB
}

func NewGormAssociationRepository(db *gorm.DB) *GormAssociationRepository {
	return &GormAssociationRepository{db: db}
}

func (r *GormAssociationRepository) InsertItem(ctx context.Context, item *model.EventItem) error {
	return r.db.WithContext(ctx).Omit("Event", "CatalogItem").Create(item).Error
}

func (r *GormAssociationRepository) InsertTeamMember(ctx context.Context, member *model.EventTeamMember) error {
	return r.db.WithContext(ctx).Omit("Event", "Employee").Create(member).Error
}

func (r *GormAssociationRepository) DeleteItem(ctx context.Context, eventID, itemID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", itemID, eventID).
		Delete(&model.EventItem{})
	return res.RowsAffected, res.Error
}

func (r *GormAssociationRepository) DeleteTeamMember(ctx context.Context, eventID, teamID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", teamID, eventID).
		Delete(&model.EventTeamMember{})
	return res.RowsAffected, res.Error
}

func (r *GormAssociationRepository) HasCatalogItem(ctx context.Context, eventID, catalogItemID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.EventItem{}).
		Where("event_id = ? AND catalog_item_id = ?", eventID, catalogItemID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormAssociationRepository) HasEmployee(ctx context.Context, eventID, employeeID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.EventTeamMember{}).
		Where("event_id = ? AND employee_id = ?", eventID, employeeID).
		Count(&n).Error
	return n > 0, err
}
