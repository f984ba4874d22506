package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListQuery pages through reference data.
type ListQuery struct {
	IncludeInactive bool
	Limit           int
	Offset          int
}

// ReferenceRepository is the CRUD shape shared by the simple soft-deleted
// entities: categories, catalog items, employees and vehicles.
type ReferenceRepository[T any] interface {
	// GetByID returns gorm.ErrRecordNotFound for unknown ids and, unless
	// includeInactive is set, for soft-deleted rows.
	GetByID(ctx context.Context, id uuid.UUID, includeInactive bool) (*T, error)
	List(ctx context.Context, q ListQuery) ([]T, int64, error)
	Create(ctx context.Context, entity *T) error
	// Update applies column updates to an active row.
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	// SoftDelete marks the row inactive; false when no active row matched.
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
}

type gormReferenceRepository[T any] struct {
	db       *gorm.DB
	orderBy  string
	preloads []string
}

func newReferenceRepository[T any](db *gorm.DB, orderBy string, preloads ...string) *gormReferenceRepository[T] {
	return &gormReferenceRepository[T]{db: db, orderBy: orderBy, preloads: preloads}
}

// query returns a reusable base query; preloads are added by withPreloads
// right before Find so Count stays a plain aggregate.
func (r *gormReferenceRepository[T]) query(ctx context.Context, includeInactive bool) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(T))
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	return q.Session(&gorm.Session{})
}

func (r *gormReferenceRepository[T]) withPreloads(q *gorm.DB) *gorm.DB {
	for _, p := range r.preloads {
		q = q.Preload(p)
	}
	return q
}

func (r *gormReferenceRepository[T]) GetByID(ctx context.Context, id uuid.UUID, includeInactive bool) (*T, error) {
	var out T
	if err := r.withPreloads(r.query(ctx, includeInactive)).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *gormReferenceRepository[T]) List(ctx context.Context, lq ListQuery) ([]T, int64, error) {
	q := r.query(ctx, lq.IncludeInactive)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if lq.Limit <= 0 {
		lq.Limit = 50
	}
	if lq.Offset < 0 {
		lq.Offset = 0
	}

	var items []T
	if err := r.withPreloads(q).Order(r.orderBy).Limit(lq.Limit).Offset(lq.Offset).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *gormReferenceRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *gormReferenceRepository[T]) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		_, err := r.GetByID(ctx, id, false)
		return err
	}
	res := r.db.WithContext(ctx).
		Model(new(T)).
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

func (r *gormReferenceRepository[T]) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
