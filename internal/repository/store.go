package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/betinha/rental-core/internal/model"
)

// Store is the persistence boundary of the rental core. Every method of
// every repository takes a context; a Store obtained inside Transaction is
// bound to that transaction.
type Store interface {
	Events() EventRepository
	Associations() AssociationRepository
	Categories() ReferenceRepository[model.Category]
	CatalogItems() ReferenceRepository[model.CatalogItem]
	Employees() ReferenceRepository[model.Employee]
	Vehicles() ReferenceRepository[model.Vehicle]
	Customers() CustomerRepository
	Users() UserRepository
	Audit() AuditRepository

	// Transaction runs fn atomically. Calling it on a transactional Store
	// opens a savepoint, so an inner failure can be rolled back alone.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore implements Store on top of a *gorm.DB (or a transaction).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Events() EventRepository {
	return NewGormEventRepository(s.db)
}

func (s *GormStore) Associations() AssociationRepository {
	return NewGormAssociationRepository(s.db)
}

func (s *GormStore) Categories() ReferenceRepository[model.Category] {
	return newReferenceRepository[model.Category](s.db, "name ASC")
}

func (s *GormStore) CatalogItems() ReferenceRepository[model.CatalogItem] {
	return newReferenceRepository[model.CatalogItem](s.db, "name ASC", "Category")
}

func (s *GormStore) Employees() ReferenceRepository[model.Employee] {
	return newReferenceRepository[model.Employee](s.db, "name ASC")
}

func (s *GormStore) Vehicles() ReferenceRepository[model.Vehicle] {
	return newReferenceRepository[model.Vehicle](s.db, "name ASC")
}

func (s *GormStore) Customers() CustomerRepository {
	return NewGormCustomerRepository(s.db)
}

func (s *GormStore) Users() UserRepository {
	return NewGormUserRepository(s.db)
}

func (s *GormStore) Audit() AuditRepository {
	return NewGormAuditRepository(s.db)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
