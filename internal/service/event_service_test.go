package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/betinha/rental-core/internal/model"
)

func TestEventService_NewEventHasZeroFinancials(t *testing.T) {
	f := newFixture(t)
	ev := f.event(t, model.TransportNone, nil)

	assertFinancials(t, ev, "0.00", "0.00", "0.00", "0.00", "0.00", "0.00")
	if ev.Status != model.EventStatusPending || ev.FinancialStatus != model.FinancialStatusUnpaid {
		t.Fatalf("unexpected defaults: %s / %s", ev.Status, ev.FinancialStatus)
	}
	if n := f.auditCount(t, ev.ID, model.AuditFinancialsRecalculated); n != 1 {
		t.Fatalf("create should recalculate once, got %d", n)
	}

	b, err := f.events.Recalculate(context.Background(), ev.ID.String())
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	assertAmount(t, "revenue", b.TotalRevenue, "0.00")
	assertAmount(t, "margin", b.ProfitMargin, "0.00")
	if n := f.auditCount(t, ev.ID, model.AuditFinancialsRecalculated); n != 2 {
		t.Fatalf("expected 2 recalculation entries, got %d", n)
	}
}

func TestEventService_CreateComputesFinancials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.van(t)

	ev, err := f.events.CreateEvent(ctx, EventInput{
		ClientName:    "Ana Souza",
		Address:       "Rua das Flores, 10",
		EventDate:     time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC),
		DistanceKm:    "25",
		ExtraExpenses: "100",
		TransportType: model.TransportFleet,
		VehicleID:     v.ID.String(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertFinancials(t, ev, "0.00", "0.00", "0.00", "29.85", "-129.85", "0.00")

	// an explicit recalculation finds nothing to change
	b, err := f.events.Recalculate(ctx, ev.ID.String())
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	assertAmount(t, "net profit", b.NetProfit, "-129.85")
	assertAmount(t, "stored net profit", f.reload(t, ev.ID).NetProfit, "-129.85")
}

func TestEventService_EnumCaseIsNormalized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ev, err := f.events.CreateEvent(ctx, EventInput{
		ClientName:      "Ana",
		Address:         "Rua 1",
		EventDate:       time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		TransportType:   "individual_transport",
		Status:          " pending",
		FinancialStatus: "Partial",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ev.TransportType != model.TransportIndividual || ev.Status != model.EventStatusPending || ev.FinancialStatus != model.FinancialStatusPartial {
		t.Fatalf("enums not normalized: %s %s %s", ev.TransportType, ev.Status, ev.FinancialStatus)
	}

	done := model.EventStatus("done")
	got, err := f.events.UpdateEvent(ctx, ev.ID.String(), EventPatch{Status: &done})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != model.EventStatusDone {
		t.Fatalf("status = %s", got.Status)
	}

	page, err := f.events.ListEvents(ctx, EventQuery{Status: "done"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("lowercase filter matched %d events", page.Total)
	}
}

func TestEventService_FleetScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.van(t)
	ev := f.event(t, model.TransportFleet, v)

	item, err := f.events.AttachItem(ctx, ev.ID.String(), f.magicShow(t).ID.String(), 1)
	if err != nil {
		t.Fatalf("attach item: %v", err)
	}
	assertAmount(t, "price snapshot", item.UnitPriceSnapshot, "500.00")
	assertAmount(t, "cost snapshot", item.UnitCostSnapshot, "100.00")

	got := f.reload(t, ev.ID)
	assertFinancials(t, got, "500.00", "100.00", "0.00", "29.85", "370.15", "74.03")

	if _, err := f.events.AttachTeamMember(ctx, ev.ID.String(), f.monitor(t).ID.String()); err != nil {
		t.Fatalf("attach team member: %v", err)
	}
	got = f.reload(t, ev.ID)
	assertFinancials(t, got, "500.00", "100.00", "150.00", "29.85", "220.15", "44.03")

	// switching to individual transport drops the vehicle and uses the
	// members' own transport cost
	individual := model.TransportIndividual
	got, err = f.events.UpdateEvent(ctx, ev.ID.String(), EventPatch{TransportType: &individual})
	if err != nil {
		t.Fatalf("update event: %v", err)
	}
	if got.VehicleID != nil {
		t.Fatalf("vehicle should be cleared for %s", individual)
	}
	assertFinancials(t, got, "500.00", "100.00", "150.00", "30.00", "220.00", "44.00")

	if n := f.auditCount(t, ev.ID, model.AuditFinancialsRecalculated); n != 4 {
		t.Fatalf("expected one recalculation per mutation, got %d", n)
	}
}

func TestEventService_CatalogPriceChangeKeepsSnapshots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(t, model.TransportNone, nil)
	show := f.magicShow(t)

	if _, err := f.events.AttachItem(ctx, ev.ID.String(), show.ID.String(), 2); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := f.catalog.UpdateItem(ctx, show.ID.String(), CatalogItemFields{PriceClient: str("900.00"), InternalCost: str("300.00")}); err != nil {
		t.Fatalf("update catalog item: %v", err)
	}

	got := f.reload(t, ev.ID)
	assertAmount(t, "revenue after price change", got.TotalRevenue, "1000.00")
	assertAmount(t, "snapshot", got.Items[0].UnitPriceSnapshot, "500.00")

	if _, err := f.events.Recalculate(ctx, ev.ID.String()); err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	got = f.reload(t, ev.ID)
	assertFinancials(t, got, "1000.00", "200.00", "0.00", "0.00", "800.00", "80.00")
	assertAmount(t, "catalog price", got.Items[0].CatalogItem.PriceClient, "900.00")
}

func TestEventService_VehicleParamsAreReadLive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.van(t)
	ev := f.event(t, model.TransportFleet, v)
	if _, err := f.events.AttachItem(ctx, ev.ID.String(), f.magicShow(t).ID.String(), 1); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if _, err := f.fleet.Update(ctx, v.ID.String(), VehicleFields{AvgFuelPrice: str("6.80")}); err != nil {
		t.Fatalf("update vehicle: %v", err)
	}
	// nothing moves until the next recalculation
	assertAmount(t, "transport before", f.reload(t, ev.ID).TotalCostTransport, "29.85")

	b, err := f.events.Recalculate(ctx, ev.ID.String())
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	assertAmount(t, "fuel", b.FuelCost, "20.00")
	assertAmount(t, "maintenance", b.MaintenanceCost, "12.50")
	assertAmount(t, "transport after", f.reload(t, ev.ID).TotalCostTransport, "32.50")
}

func TestEventService_InactiveVehicleStillCosts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.van(t)
	ev := f.event(t, model.TransportFleet, v)

	if err := f.fleet.Delete(ctx, v.ID.String()); err != nil {
		t.Fatalf("delete vehicle: %v", err)
	}
	b, err := f.events.Recalculate(ctx, ev.ID.String())
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	assertAmount(t, "transport", b.TotalCostTransport, "29.85")
	assertAmount(t, "net profit", b.NetProfit, "-29.85")
	assertAmount(t, "margin", b.ProfitMargin, "0.00")
}

func TestEventService_DetachTwiceIsSilent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(t, model.TransportIndividual, nil)

	item, err := f.events.AttachItem(ctx, ev.ID.String(), f.magicShow(t).ID.String(), 1)
	if err != nil {
		t.Fatalf("attach item: %v", err)
	}
	member, err := f.events.AttachTeamMember(ctx, ev.ID.String(), f.monitor(t).ID.String())
	if err != nil {
		t.Fatalf("attach member: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := f.events.DetachItem(ctx, ev.ID.String(), item.ID.String()); err != nil {
			t.Fatalf("detach item #%d: %v", i+1, err)
		}
		if err := f.events.DetachTeamMember(ctx, ev.ID.String(), member.ID.String()); err != nil {
			t.Fatalf("detach member #%d: %v", i+1, err)
		}
	}

	got := f.reload(t, ev.ID)
	if len(got.Items) != 0 || len(got.Team) != 0 {
		t.Fatalf("associations left: items=%d team=%d", len(got.Items), len(got.Team))
	}
	assertFinancials(t, got, "0.00", "0.00", "0.00", "0.00", "0.00", "0.00")
	if n := f.auditCount(t, ev.ID, model.AuditItemDetached); n != 1 {
		t.Fatalf("expected a single detach entry, got %d", n)
	}
}

func TestEventService_DetachIsScopedToEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(t, model.TransportNone, nil)
	other := f.event(t, model.TransportNone, nil)

	item, err := f.events.AttachItem(ctx, ev.ID.String(), f.magicShow(t).ID.String(), 1)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := f.events.DetachItem(ctx, other.ID.String(), item.ID.String()); err != nil {
		t.Fatalf("detach through other event: %v", err)
	}
	if got := f.reload(t, ev.ID); len(got.Items) != 1 {
		t.Fatalf("item removed through another event")
	}
}

func TestEventService_AttachErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(t, model.TransportNone, nil)
	show := f.magicShow(t)

	_, err := f.events.AttachItem(ctx, ev.ID.String(), show.ID.String(), 0)
	assertKind(t, err, ErrValidation)

	_, err = f.events.AttachItem(ctx, "not-a-uuid", show.ID.String(), 1)
	assertKind(t, err, ErrValidation)

	_, err = f.events.AttachItem(ctx, ev.ID.String(), uuid.NewString(), 1)
	assertKind(t, err, ErrNotFound)

	_, err = f.events.AttachItem(ctx, uuid.NewString(), show.ID.String(), 1)
	assertKind(t, err, ErrNotFound)

	_, err = f.events.AttachTeamMember(ctx, ev.ID.String(), uuid.NewString())
	assertKind(t, err, ErrNotFound)

	got := f.reload(t, ev.ID)
	if len(got.Items) != 0 || len(got.Team) != 0 {
		t.Fatalf("failed attach left rows behind")
	}
	// only the one written on create
	if n := f.auditCount(t, ev.ID, model.AuditFinancialsRecalculated); n != 1 {
		t.Fatalf("failed attach must not recalculate, got %d entries", n)
	}
}

func TestEventService_AttachRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(t, model.TransportNone, nil)
	show := f.magicShow(t)
	emp := f.monitor(t)

	if _, err := f.events.AttachItem(ctx, ev.ID.String(), show.ID.String(), 1); err != nil {
		t.Fatalf("attach: %v", err)
	}
	_, err := f.events.AttachItem(ctx, ev.ID.String(), show.ID.String(), 3)
	assertKind(t, err, ErrValidation)

	if _, err := f.events.AttachTeamMember(ctx, ev.ID.String(), emp.ID.String()); err != nil {
		t.Fatalf("attach member: %v", err)
	}
	_, err = f.events.AttachTeamMember(ctx, ev.ID.String(), emp.ID.String())
	assertKind(t, err, ErrValidation)
}

func TestEventService_AttachRequiresActiveReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(t, model.TransportNone, nil)
	show := f.magicShow(t)

	if err := f.catalog.DeleteItem(ctx, show.ID.String()); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	_, err := f.events.AttachItem(ctx, ev.ID.String(), show.ID.String(), 1)
	assertKind(t, err, ErrNotFound)
}

func TestEventService_DeletedEventIsGone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(t, model.TransportNone, nil)

	if err := f.events.DeleteEvent(ctx, ev.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertKind(t, f.events.DeleteEvent(ctx, ev.ID.String()), ErrNotFound)

	_, err := f.events.GetEvent(ctx, ev.ID.String())
	assertKind(t, err, ErrNotFound)
	_, err = f.events.Recalculate(ctx, ev.ID.String())
	assertKind(t, err, ErrNotFound)
	_, err = f.events.AttachItem(ctx, ev.ID.String(), f.magicShow(t).ID.String(), 1)
	assertKind(t, err, ErrNotFound)
	assertKind(t, f.events.DetachItem(ctx, ev.ID.String(), uuid.NewString()), ErrNotFound)

	page, err := f.events.ListEvents(ctx, EventQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("deleted event listed")
	}
	if n := f.auditCount(t, ev.ID, model.AuditEventDeleted); n != 1 {
		t.Fatalf("expected delete audit entry, got %d", n)
	}
}

func TestEventService_RecalculationFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	base := newTestStore(t)
	healthy := newFixtureWithStore(t, base)
	ev := healthy.event(t, model.TransportNone, nil)
	show := healthy.magicShow(t)

	f := newFixtureWithStore(t, faultyStore{base})
	item, err := f.events.AttachItem(ctx, ev.ID.String(), show.ID.String(), 1)
	if err != nil {
		t.Fatalf("attach must succeed despite recalculation failure: %v", err)
	}

	got := healthy.reload(t, ev.ID)
	if len(got.Items) != 1 || got.Items[0].ID != item.ID {
		t.Fatalf("attached item was not committed")
	}
	// financials stay stale
	assertAmount(t, "revenue", got.TotalRevenue, "0.00")

	if !strings.Contains(f.logs.String(), "recalculate financials of event "+ev.ID.String()) {
		t.Fatalf("failure not logged: %q", f.logs.String())
	}
	if n := healthy.auditCount(t, ev.ID, model.AuditRecalculationFailed); n != 1 {
		t.Fatalf("expected recalculation_failed entry, got %d", n)
	}
	if n := healthy.auditCount(t, ev.ID, model.AuditFinancialsRecalculated); n != 1 {
		t.Fatalf("rolled back recalculation left an entry")
	}

	// the explicit operation reports the failure instead
	_, err = f.events.Recalculate(ctx, ev.ID.String())
	assertKind(t, err, ErrInternal)
}

func TestEventService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	date := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

	cases := map[string]EventInput{
		"missing client":   {Address: "Rua 1", EventDate: date},
		"missing address":  {ClientName: "Ana", EventDate: date},
		"missing date":     {ClientName: "Ana", Address: "Rua 1"},
		"fleet no vehicle": {ClientName: "Ana", Address: "Rua 1", EventDate: date, TransportType: model.TransportFleet},
		"negative extra":   {ClientName: "Ana", Address: "Rua 1", EventDate: date, ExtraExpenses: "-10"},
		"bad distance":     {ClientName: "Ana", Address: "Rua 1", EventDate: date, DistanceKm: "abc"},
		"bad transport":    {ClientName: "Ana", Address: "Rua 1", EventDate: date, TransportType: "BIKE"},
		"negative guests":  {ClientName: "Ana", Address: "Rua 1", EventDate: date, GuestKids: -1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.events.CreateEvent(ctx, in)
			assertKind(t, err, ErrValidation)
		})
	}

	_, err := f.events.CreateEvent(ctx, EventInput{
		ClientName: "Ana", Address: "Rua 1", EventDate: date,
		TransportType: model.TransportFleet, VehicleID: uuid.NewString(),
	})
	assertKind(t, err, ErrNotFound)
}

func TestEventService_VehicleClearedForOtherTransport(t *testing.T) {
	f := newFixture(t)
	v := f.van(t)

	ev, err := f.events.CreateEvent(context.Background(), EventInput{
		ClientName:    "Ana",
		Address:       "Rua 1",
		EventDate:     time.Now().Add(24 * time.Hour),
		TransportType: model.TransportNone,
		VehicleID:     v.ID.String(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ev.VehicleID != nil {
		t.Fatalf("vehicle kept for %s", model.TransportNone)
	}
}

func TestEventService_ExtraExpensesUpdateRecalculates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(t, model.TransportNone, nil)
	if _, err := f.events.AttachItem(ctx, ev.ID.String(), f.magicShow(t).ID.String(), 1); err != nil {
		t.Fatalf("attach: %v", err)
	}

	got, err := f.events.UpdateEvent(ctx, ev.ID.String(), EventPatch{ExtraExpenses: str("45,50")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertFinancials(t, got, "500.00", "100.00", "0.00", "0.00", "354.50", "70.90")
	if n := f.auditCount(t, ev.ID, model.AuditEventUpdated); n != 1 {
		t.Fatalf("expected update audit entry, got %d", n)
	}
}

func TestEventService_CustomerLinking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c, err := f.customer.Create(ctx, CustomerFields{
		Name:    str("Maria Lima"),
		Phone:   str("(11) 97777-1234"),
		Email:   str("maria@example.com"),
		Address: str("Av. Central, 100"),
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	byID, err := f.events.CreateEvent(ctx, EventInput{
		CustomerID: c.ID.String(),
		Address:    "Salão de festas",
		EventDate:  time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create by customer id: %v", err)
	}
	if byID.ClientName != "Maria Lima" || byID.ClientEmail != "maria@example.com" {
		t.Fatalf("client fields not copied: %+v", byID)
	}

	byPhone, err := f.events.CreateEvent(ctx, EventInput{
		ClientName:  "Maria",
		ClientPhone: "11 97777 1234",
		Address:     "Salão de festas",
		EventDate:   time.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create by phone: %v", err)
	}
	if byPhone.CustomerID == nil || *byPhone.CustomerID != c.ID {
		t.Fatalf("event not linked by phone")
	}
	if byPhone.ClientName != "Maria" {
		t.Fatalf("explicit client name overwritten: %q", byPhone.ClientName)
	}

	page, err := f.customer.Events(ctx, c.ID.String(), 1, 10)
	if err != nil {
		t.Fatalf("customer events: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 customer events, got %d", page.Total)
	}

	_, err = f.events.CreateEvent(ctx, EventInput{CustomerID: uuid.NewString(), Address: "x", EventDate: time.Now()})
	assertKind(t, err, ErrNotFound)
}

func TestEventService_ListEventsFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(t, model.TransportNone, nil)
	confirmed := model.EventStatusConfirmed
	if _, err := f.events.UpdateEvent(ctx, ev.ID.String(), EventPatch{Status: &confirmed}); err != nil {
		t.Fatalf("update: %v", err)
	}
	f.event(t, model.TransportNone, nil)

	page, err := f.events.ListEvents(ctx, EventQuery{Status: "confirmed"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != ev.ID {
		t.Fatalf("status filter: total=%d", page.Total)
	}

	page, err = f.events.ListEvents(ctx, EventQuery{
		From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("date filter: total=%d", page.Total)
	}

	_, err = f.events.ListEvents(ctx, EventQuery{Status: "LOST"})
	assertKind(t, err, ErrValidation)
}

func TestEventService_ConcurrentAttachesKeepTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(t, model.TransportNone, nil)

	const n = 8
	items := make([]*model.CatalogItem, n)
	for i := range items {
		items[i] = f.item(t, "Item "+string(rune('A'+i)), "10.00", "4.00")
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, it := range items {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.events.AttachItem(ctx, ev.ID.String(), id, 1); err != nil {
				errs <- err
			}
		}(it.ID.String())
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("attach: %v", err)
	}

	got := f.reload(t, ev.ID)
	assertFinancials(t, got, "80.00", "32.00", "0.00", "0.00", "48.00", "60.00")
}
