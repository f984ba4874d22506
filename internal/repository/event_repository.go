package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/betinha/rental-core/internal/model"
)

// EventFilter narrows event listings. Zero values mean "no filter".
type EventFilter struct {
	Status     model.EventStatus
	CustomerID *uuid.UUID
	From, To   time.Time
	Limit      int
	Offset     int
}

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	// GetByID returns an active event without associations.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	// FindWithAssociations preloads items, team, vehicle and customer.
	// The vehicle is loaded even when it was soft-deleted.
	FindWithAssociations(ctx context.Context, id uuid.UUID) (*model.Event, error)
	// LockForUpdate takes a row lock on an active event for the rest of
	// the surrounding transaction.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateFinancials(ctx context.Context, id uuid.UUID, f model.Financials) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, f EventFilter) ([]model.Event, int64, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error
}

func (r *GormEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var e model.Event
	if err := r.db.WithContext(ctx).First(&e, "id = ? AND active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormEventRepository) FindWithAssociations(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var e model.Event
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.CatalogItem").
		Preload("Team").
		Preload("Team.Employee").
		Preload("Vehicle").
		Preload("Customer").
		First(&e, "id = ? AND active = ?", id, true).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormEventRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var e model.Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND active = ?", id, true).
		Take(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormEventRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ? AND active = ?", id, true).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormEventRepository) UpdateFinancials(ctx context.Context, id uuid.UUID, f model.Financials) error {
	return r.Update(ctx, id, map[string]any{
		"total_revenue":        f.TotalRevenue,
		"total_cost_items":     f.TotalCostItems,
		"total_cost_labor":     f.TotalCostLabor,
		"total_cost_transport": f.TotalCostTransport,
		"net_profit":           f.NetProfit,
		"profit_margin":        f.ProfitMargin,
	})
}

func (r *GormEventRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List returns active events ordered by date, newest first. A zero Limit
// returns every match.
func (r *GormEventRepository) List(ctx context.Context, f EventFilter) ([]model.Event, int64, error) {
	var (
		events []model.Event
		total  int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("active = ?", true)

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if !f.From.IsZero() {
		q = q.Where("event_date >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("event_date <= ?", f.To)
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := q.Preload("Vehicle").Order("event_date DESC")
	if f.Limit > 0 {
		page = page.Limit(f.Limit).Offset(f.Offset)
	}
	if err := page.Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
