package service

import (
	"context"

	"github.com/betinha/rental-core/internal/calendar"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/repository"
)

type StaffService struct {
	store repository.Store
}

func NewStaffService(store repository.Store) *StaffService {
	return &StaffService{store: store}
}

type EmployeeFields struct {
	Name                    *string
	Phone                   *string
	Role                    *string
	BasePayment             *string
	IndividualTransportCost *string
}

func (s *StaffService) Create(ctx context.Context, in EmployeeFields) (*model.Employee, error) {
	for field, v := range map[string]*string{"name": in.Name, "role": in.Role, "basePayment": in.BasePayment} {
		if v == nil {
			return nil, validationError(field, "%s is required", field)
		}
	}
	e := &model.Employee{Active: true}
	f := newFieldSet()
	applyEmployee(e, in, f)
	if f.err != nil {
		return nil, f.err
	}
	if err := createReference(ctx, s.store.Employees(), "employee", e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *StaffService) Update(ctx context.Context, id string, in EmployeeFields) (*model.Employee, error) {
	return updateReference(ctx, s.store.Employees(), "employee", "employeeId", id, func(e *model.Employee, f *fieldSet) {
		applyEmployee(e, in, f)
	})
}

func applyEmployee(e *model.Employee, in EmployeeFields, f *fieldSet) {
	if in.Phone != nil {
		p := repository.NormalizePhone(*in.Phone)
		in.Phone = &p
	}
	f.text("name", "name", in.Name, true, &e.Name)
	f.text("phone", "phone", in.Phone, false, &e.Phone)
	f.text("role", "role", in.Role, true, &e.Role)
	f.amount("base_payment", "basePayment", in.BasePayment, &e.BasePayment)
	f.amount("individual_transport_cost", "individualTransportCost", in.IndividualTransportCost, &e.IndividualTransportCost)
}

func (s *StaffService) Get(ctx context.Context, id string) (*model.Employee, error) {
	return getReference(ctx, s.store.Employees(), "employee", "employeeId", id)
}

func (s *StaffService) List(ctx context.Context, p ListParams) (calendar.Page[model.Employee], error) {
	return listReference(ctx, s.store.Employees(), "employees", p)
}

func (s *StaffService) Delete(ctx context.Context, id string) error {
	return deleteReference(ctx, s.store.Employees(), "employee", "employeeId", id)
}
