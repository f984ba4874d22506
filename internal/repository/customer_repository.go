package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/betinha/rental-core/internal/model"
)

// CustomerRepository adds phone lookup on top of the reference CRUD.
type CustomerRepository interface {
	ReferenceRepository[model.Customer]
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
}

type GormCustomerRepository struct {
	*gormReferenceRepository[model.Customer]
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{newReferenceRepository[model.Customer](db, "name ASC")}
}

// NormalizePhone keeps only digits; formatting characters are ignored.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	b := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c >= '0' && c <= '9' {
			b = append(b, c)
		}
	}
	return string(b)
}

func (r *GormCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	c.Phone = NormalizePhone(c.Phone)
	return r.gormReferenceRepository.Create(ctx, c)
}

// FindByPhone looks up an active customer. The raw value is tried too in
// case older rows were stored unnormalized.
func (r *GormCustomerRepository) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	n := NormalizePhone(phone)
	if n == "" {
		return nil, gorm.ErrRecordNotFound
	}

	raw := strings.TrimSpace(phone)
	phones := []string{n}
	if raw != n {
		phones = append(phones, raw)
	}

	var c model.Customer
	err := r.db.WithContext(ctx).
		Where("active = ? AND phone IN ?", true, phones).
		Order("created_at ASC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}
