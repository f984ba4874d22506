package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/betinha/rental-core/internal/config"
	"github.com/betinha/rental-core/internal/db"
	"github.com/betinha/rental-core/internal/finance"
	"github.com/betinha/rental-core/internal/lock"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/repository"
)

func newTestStore(t *testing.T) *repository.GormStore {
	t.Helper()
	gdb, err := db.NewGormDB(&config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewGormStore(gdb)
}

type fixture struct {
	store    repository.Store
	events   *EventService
	catalog  *CatalogService
	staff    *StaffService
	fleet    *FleetService
	customer *CustomerService
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, newTestStore(t))
}

func newFixtureWithStore(t *testing.T, store repository.Store) *fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	return &fixture{
		store:    store,
		events:   NewEventService(store, lock.NewLocalLocker(), log.New(logs, "", 0)),
		catalog:  NewCatalogService(store),
		staff:    NewStaffService(store),
		fleet:    NewFleetService(store),
		customer: NewCustomerService(store),
		logs:     logs,
	}
}

func str(s string) *string { return &s }

func (f *fixture) van(t *testing.T) *model.Vehicle {
	t.Helper()
	v, err := f.fleet.Create(context.Background(), VehicleFields{
		Name:                 str("Fiorino"),
		LicensePlate:         str("abc1d23"),
		KmPerLiter:           str("8.5"),
		AvgFuelPrice:         str("5.90"),
		MaintenanceCostPerKm: str("0.50"),
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return v
}

func (f *fixture) magicShow(t *testing.T) *model.CatalogItem {
	t.Helper()
	return f.item(t, "Show de mágica", "500.00", "100.00")
}

func (f *fixture) item(t *testing.T, name, price, cost string) *model.CatalogItem {
	t.Helper()
	it, err := f.catalog.CreateItem(context.Background(), CatalogItemFields{
		Name:         str(name),
		Type:         str("service"),
		PriceClient:  str(price),
		InternalCost: str(cost),
	})
	if err != nil {
		t.Fatalf("create catalog item: %v", err)
	}
	return it
}

func (f *fixture) monitor(t *testing.T) *model.Employee {
	t.Helper()
	e, err := f.staff.Create(context.Background(), EmployeeFields{
		Name:                    str("Carla"),
		Role:                    str("Monitora"),
		BasePayment:             str("150.00"),
		IndividualTransportCost: str("30.00"),
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return e
}

func (f *fixture) event(t *testing.T, transport model.TransportType, vehicle *model.Vehicle) *model.Event {
	t.Helper()
	in := EventInput{
		ClientName:    "Ana Souza",
		Address:       "Rua das Flores, 10",
		EventDate:     time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC),
		DistanceKm:    "25.00",
		GuestAdults:   30,
		GuestKids:     20,
		TransportType: transport,
	}
	if vehicle != nil {
		in.VehicleID = vehicle.ID.String()
	}
	ev, err := f.events.CreateEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return ev
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *model.Event {
	t.Helper()
	ev, err := f.events.GetEvent(context.Background(), id.String())
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	return ev
}

func (f *fixture) auditCount(t *testing.T, id uuid.UUID, kind model.AuditEntryType) int {
	t.Helper()
	entries, err := f.store.Audit().ListByEvent(context.Background(), id, 1000)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	n := 0
	for _, e := range entries {
		if e.EntryType == kind {
			n++
		}
	}
	return n
}

func assertAmount(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if finance.Format(got) != want {
		t.Fatalf("%s = %s, want %s", field, finance.Format(got), want)
	}
}

func assertFinancials(t *testing.T, ev *model.Event, revenue, items, labor, transport, profit, margin string) {
	t.Helper()
	assertAmount(t, "totalRevenue", ev.TotalRevenue, revenue)
	assertAmount(t, "totalCostItems", ev.TotalCostItems, items)
	assertAmount(t, "totalCostLabor", ev.TotalCostLabor, labor)
	assertAmount(t, "totalCostTransport", ev.TotalCostTransport, transport)
	assertAmount(t, "netProfit", ev.NetProfit, profit)
	assertAmount(t, "profitMargin", ev.ProfitMargin, margin)
}

func assertKind(t *testing.T, err error, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

// faultyStore fails every financials write, inside transactions too.
type faultyStore struct {
	repository.Store
}

func (s faultyStore) Events() repository.EventRepository {
	return faultyEvents{s.Store.Events()}
}

func (s faultyStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(faultyStore{tx})
	})
}

type faultyEvents struct {
	repository.EventRepository
}

func (faultyEvents) UpdateFinancials(context.Context, uuid.UUID, model.Financials) error {
	return errors.New("disk full")
}
