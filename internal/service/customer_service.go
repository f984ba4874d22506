package service

import (
	"context"

	"github.com/betinha/rental-core/internal/calendar"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/repository"
)

type CustomerService struct {
	store repository.Store
}

func NewCustomerService(store repository.Store) *CustomerService {
	return &CustomerService{store: store}
}

type CustomerFields struct {
	Name    *string
	Phone   *string
	Email   *string
	Address *string
	Notes   *string
}

func (s *CustomerService) Create(ctx context.Context, in CustomerFields) (*model.Customer, error) {
	if in.Name == nil {
		return nil, validationError("name", "name is required")
	}
	c := &model.Customer{Active: true}
	f := newFieldSet()
	applyCustomer(c, in, f)
	if f.err != nil {
		return nil, f.err
	}
	if err := s.store.Customers().Create(ctx, c); err != nil {
		return nil, repoError(err, "customer", "create customer")
	}
	return c, nil
}

func (s *CustomerService) Update(ctx context.Context, id string, in CustomerFields) (*model.Customer, error) {
	return updateReference[model.Customer](ctx, s.store.Customers(), "customer", "customerId", id, func(c *model.Customer, f *fieldSet) {
		applyCustomer(c, in, f)
	})
}

func applyCustomer(c *model.Customer, in CustomerFields, f *fieldSet) {
	if in.Phone != nil {
		p := repository.NormalizePhone(*in.Phone)
		in.Phone = &p
	}
	f.text("name", "name", in.Name, true, &c.Name)
	f.text("phone", "phone", in.Phone, false, &c.Phone)
	f.text("email", "email", in.Email, false, &c.Email)
	f.text("address", "address", in.Address, false, &c.Address)
	f.text("notes", "notes", in.Notes, false, &c.Notes)
}

func (s *CustomerService) Get(ctx context.Context, id string) (*model.Customer, error) {
	return getReference[model.Customer](ctx, s.store.Customers(), "customer", "customerId", id)
}

func (s *CustomerService) List(ctx context.Context, p ListParams) (calendar.Page[model.Customer], error) {
	return listReference[model.Customer](ctx, s.store.Customers(), "customers", p)
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	return deleteReference[model.Customer](ctx, s.store.Customers(), "customer", "customerId", id)
}

// Events lists the active events booked by a customer, newest first.
func (s *CustomerService) Events(ctx context.Context, id string, page, pageSize int) (calendar.Page[model.Event], error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return calendar.Page[model.Event]{}, err
	}
	p, size, limit, offset := calendar.Window(page, pageSize)
	events, total, err := s.store.Events().List(ctx, repository.EventFilter{CustomerID: &c.ID, Limit: limit, Offset: offset})
	if err != nil {
		return calendar.Page[model.Event]{}, internalError("list customer events", err)
	}
	return calendar.NewPage(events, p, size, total), nil
}
