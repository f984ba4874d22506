package service

import (
	"context"
	"strings"

	"github.com/betinha/rental-core/internal/calendar"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/repository"
)

// FleetService manages vehicles. Cost parameters are read live by every
// recalculation, so an update here moves the transport cost of events on
// their next recalculation.
type FleetService struct {
	store repository.Store
}

func NewFleetService(store repository.Store) *FleetService {
	return &FleetService{store: store}
}

type VehicleFields struct {
	Name                 *string
	LicensePlate         *string
	KmPerLiter           *string
	AvgFuelPrice         *string
	MaintenanceCostPerKm *string
}

func (s *FleetService) Create(ctx context.Context, in VehicleFields) (*model.Vehicle, error) {
	for field, v := range map[string]*string{"name": in.Name, "licensePlate": in.LicensePlate, "kmPerLiter": in.KmPerLiter, "avgFuelPrice": in.AvgFuelPrice} {
		if v == nil {
			return nil, validationError(field, "%s is required", field)
		}
	}
	v := &model.Vehicle{Active: true}
	f := newFieldSet()
	applyVehicle(v, in, f)
	if f.err != nil {
		return nil, f.err
	}
	if err := createReference(ctx, s.store.Vehicles(), "vehicle", v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *FleetService) Update(ctx context.Context, id string, in VehicleFields) (*model.Vehicle, error) {
	return updateReference(ctx, s.store.Vehicles(), "vehicle", "vehicleId", id, func(v *model.Vehicle, f *fieldSet) {
		applyVehicle(v, in, f)
	})
}

func applyVehicle(v *model.Vehicle, in VehicleFields, f *fieldSet) {
	if in.LicensePlate != nil {
		p := strings.ToUpper(strings.TrimSpace(*in.LicensePlate))
		in.LicensePlate = &p
	}
	f.text("name", "name", in.Name, true, &v.Name)
	f.text("license_plate", "licensePlate", in.LicensePlate, true, &v.LicensePlate)
	f.amount("km_per_liter", "kmPerLiter", in.KmPerLiter, &v.KmPerLiter)
	f.amount("avg_fuel_price", "avgFuelPrice", in.AvgFuelPrice, &v.AvgFuelPrice)
	f.amount("maintenance_cost_per_km", "maintenanceCostPerKm", in.MaintenanceCostPerKm, &v.MaintenanceCostPerKm)
}

func (s *FleetService) Get(ctx context.Context, id string) (*model.Vehicle, error) {
	return getReference(ctx, s.store.Vehicles(), "vehicle", "vehicleId", id)
}

func (s *FleetService) List(ctx context.Context, p ListParams) (calendar.Page[model.Vehicle], error) {
	return listReference(ctx, s.store.Vehicles(), "vehicles", p)
}

func (s *FleetService) Delete(ctx context.Context, id string) error {
	return deleteReference(ctx, s.store.Vehicles(), "vehicle", "vehicleId", id)
}
