package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/betinha/rental-core/internal/calendar"
	"github.com/betinha/rental-core/internal/finance"
	"github.com/betinha/rental-core/internal/lock"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/repository"
)

// EventService owns the event lifecycle: CRUD, item and team attachment
// with price snapshots, and the recalculation of derived financials.
type EventService struct {
	store  repository.Store
	locker lock.Locker
	logger *log.Logger
}

func NewEventService(store repository.Store, locker lock.Locker, logger *log.Logger) *EventService {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &EventService{store: store, locker: locker, logger: logger}
}

// EventInput carries a new event. Amounts are decimal strings.
type EventInput struct {
	CustomerID      string
	ClientName      string
	ClientPhone     string
	ClientEmail     string
	ClientAddress   string
	Address         string
	EventDate       time.Time
	DistanceKm      string
	GuestAdults     int
	GuestKids       int
	TransportType   model.TransportType
	VehicleID       string
	Status          model.EventStatus
	FinancialStatus model.FinancialStatus
	Notes           string
	ExtraExpenses   string
}

// EventPatch is a partial update; nil fields are left untouched. An empty
// CustomerID or VehicleID clears the link.
type EventPatch struct {
	CustomerID      *string
	ClientName      *string
	ClientPhone     *string
	ClientEmail     *string
	ClientAddress   *string
	Address         *string
	EventDate       *time.Time
	DistanceKm      *string
	GuestAdults     *int
	GuestKids       *int
	TransportType   *model.TransportType
	VehicleID       *string
	Status          *model.EventStatus
	FinancialStatus *model.FinancialStatus
	Notes           *string
	ExtraExpenses   *string
}

func (in EventInput) patch() EventPatch {
	return EventPatch{
		CustomerID:      &in.CustomerID,
		ClientName:      &in.ClientName,
		ClientPhone:     &in.ClientPhone,
		ClientEmail:     &in.ClientEmail,
		ClientAddress:   &in.ClientAddress,
		Address:         &in.Address,
		EventDate:       &in.EventDate,
		DistanceKm:      &in.DistanceKm,
		GuestAdults:     &in.GuestAdults,
		GuestKids:       &in.GuestKids,
		TransportType:   &in.TransportType,
		VehicleID:       &in.VehicleID,
		Status:          &in.Status,
		FinancialStatus: &in.FinancialStatus,
		Notes:           &in.Notes,
		ExtraExpenses:   &in.ExtraExpenses,
	}
}

// EventQuery filters ListEvents.
type EventQuery struct {
	Status     string
	CustomerID string
	From, To   time.Time
	Page       int
	PageSize   int
}

// CreateEvent stores a new event and computes its initial financials.
func (s *EventService) CreateEvent(ctx context.Context, in EventInput) (*model.Event, error) {
	ev := &model.Event{
		Active:        true,
		DistanceKm:    decimal.Zero,
		ExtraExpenses: decimal.Zero,
	}
	changed, err := applyPatch(ev, in.patch())
	if err != nil {
		return nil, err
	}
	if ev.TransportType == "" {
		ev.TransportType = model.TransportNone
	}
	if ev.Status == "" {
		ev.Status = model.EventStatusPending
	}
	if ev.FinancialStatus == "" {
		ev.FinancialStatus = model.FinancialStatusUnpaid
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := s.resolveLinks(ctx, tx, ev, changed); err != nil {
			return err
		}
		if err := validateEvent(ev); err != nil {
			return err
		}
		if err := tx.Events().Create(ctx, ev); err != nil {
			return internalError("create event", err)
		}
		if err := writeAudit(ctx, tx, model.AuditEventCreated, ev.ID, map[string]any{
			"clientName": ev.ClientName,
			"eventDate":  ev.EventDate,
		}); err != nil {
			return err
		}
		// Extra expenses and fleet cost apply before any item is attached.
		s.recalculateStep(ctx, tx, ev.ID)
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "create event")
	}
	return s.load(ctx, ev.ID)
}

// UpdateEvent applies patch and recalculates the event financials.
func (s *EventService) UpdateEvent(ctx context.Context, eventID string, patch EventPatch) (*model.Event, error) {
	id, err := parseID("eventId", eventID)
	if err != nil {
		return nil, err
	}

	err = s.mutate(ctx, id, func(tx repository.Store, ev *model.Event) error {
		changed, err := applyPatch(ev, patch)
		if err != nil {
			return err
		}
		if err := s.resolveLinks(ctx, tx, ev, changed); err != nil {
			return err
		}
		if err := validateEvent(ev); err != nil {
			return err
		}
		if len(changed) == 0 {
			return nil
		}
		if err := tx.Events().Update(ctx, id, editableColumns(ev)); err != nil {
			return repoError(err, "event", "update event")
		}
		return writeAudit(ctx, tx, model.AuditEventUpdated, id, map[string]any{"fields": changed})
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// DeleteEvent soft-deletes; the event disappears from listings and stats.
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	id, err := parseID("eventId", eventID)
	if err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, id.String())
	if err != nil {
		return internalError("lock event", err)
	}
	defer unlock()

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		ok, err := tx.Events().SoftDelete(ctx, id)
		if err != nil {
			return internalError("delete event", err)
		}
		if !ok {
			return notFoundError("event")
		}
		return writeAudit(ctx, tx, model.AuditEventDeleted, id, map[string]any{})
	})
	return asServiceError(err, "delete event")
}

// GetEvent returns an active event with items, team, vehicle and customer.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	id, err := parseID("eventId", eventID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *EventService) load(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	ev, err := s.store.Events().FindWithAssociations(ctx, id)
	if err != nil {
		return nil, repoError(err, "event", "load event")
	}
	return ev, nil
}

func (s *EventService) ListEvents(ctx context.Context, q EventQuery) (calendar.Page[model.Event], error) {
	filter, page, pageSize, err := eventFilter(q)
	if err != nil {
		return calendar.Page[model.Event]{}, err
	}
	events, total, err := s.store.Events().List(ctx, filter)
	if err != nil {
		return calendar.Page[model.Event]{}, internalError("list events", err)
	}
	return calendar.NewPage(events, page, pageSize, total), nil
}

func eventFilter(q EventQuery) (repository.EventFilter, int, int, error) {
	var f repository.EventFilter

	if q.Status != "" {
		st := model.EventStatus(normalizeEnum(q.Status))
		if !st.Valid() {
			return f, 0, 0, validationError("status", "unknown status %q", q.Status)
		}
		f.Status = st
	}
	customerID, err := parseOptionalID("customerId", q.CustomerID)
	if err != nil {
		return f, 0, 0, err
	}
	f.CustomerID = customerID

	tr, err := calendar.NormalizeTimeRange(q.From, q.To, 0)
	if err != nil {
		return f, 0, 0, validationError("from", "empty date range")
	}
	f.From, f.To = tr.Start, tr.End

	page, pageSize, limit, offset := calendar.Window(q.Page, q.PageSize)
	f.Limit, f.Offset = limit, offset
	return f, page, pageSize, nil
}

// AttachItem books a catalog item for an event, freezing its current price
// and cost on the new row.
func (s *EventService) AttachItem(ctx context.Context, eventID, catalogItemID string, quantity int) (*model.EventItem, error) {
	eid, err := parseID("eventId", eventID)
	if err != nil {
		return nil, err
	}
	cid, err := parseID("catalogItemId", catalogItemID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, validationError("quantity", "quantity must be greater than zero")
	}

	var created *model.EventItem
	err = s.mutate(ctx, eid, func(tx repository.Store, _ *model.Event) error {
		item, err := tx.CatalogItems().GetByID(ctx, cid, false)
		if err != nil {
			return repoError(err, "catalog item", "load catalog item")
		}
		dup, err := tx.Associations().HasCatalogItem(ctx, eid, cid)
		if err != nil {
			return internalError("check event items", err)
		}
		if dup {
			return validationError("catalogItemId", "catalog item is already attached to this event")
		}

		row := &model.EventItem{
			EventID:           eid,
			CatalogItemID:     cid,
			Quantity:          quantity,
			UnitPriceSnapshot: item.PriceClient,
			UnitCostSnapshot:  item.InternalCost,
		}
		if err := tx.Associations().InsertItem(ctx, row); err != nil {
			return internalError("insert event item", err)
		}
		created = row

		return writeAudit(ctx, tx, model.AuditItemAttached, eid, map[string]any{
			"eventItemId":   row.ID,
			"catalogItemId": cid,
			"quantity":      quantity,
			"unitPrice":     finance.Format(row.UnitPriceSnapshot),
			"unitCost":      finance.Format(row.UnitCostSnapshot),
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AttachTeamMember assigns an employee, freezing payment and transport cost.
func (s *EventService) AttachTeamMember(ctx context.Context, eventID, employeeID string) (*model.EventTeamMember, error) {
	eid, err := parseID("eventId", eventID)
	if err != nil {
		return nil, err
	}
	empID, err := parseID("employeeId", employeeID)
	if err != nil {
		return nil, err
	}

	var created *model.EventTeamMember
	err = s.mutate(ctx, eid, func(tx repository.Store, _ *model.Event) error {
		emp, err := tx.Employees().GetByID(ctx, empID, false)
		if err != nil {
			return repoError(err, "employee", "load employee")
		}
		dup, err := tx.Associations().HasEmployee(ctx, eid, empID)
		if err != nil {
			return internalError("check event team", err)
		}
		if dup {
			return validationError("employeeId", "employee is already on this event's team")
		}

		row := &model.EventTeamMember{
			EventID:               eid,
			EmployeeID:            empID,
			PaymentSnapshot:       emp.BasePayment,
			TransportCostSnapshot: emp.IndividualTransportCost,
		}
		if err := tx.Associations().InsertTeamMember(ctx, row); err != nil {
			return internalError("insert team member", err)
		}
		created = row

		return writeAudit(ctx, tx, model.AuditTeamAttached, eid, map[string]any{
			"teamId":        row.ID,
			"employeeId":    empID,
			"payment":       finance.Format(row.PaymentSnapshot),
			"transportCost": finance.Format(row.TransportCostSnapshot),
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DetachItem removes an item row of the event. Removing a row that is not
// there is not an error.
func (s *EventService) DetachItem(ctx context.Context, eventID, itemID string) error {
	eid, err := parseID("eventId", eventID)
	if err != nil {
		return err
	}
	iid, err := parseID("itemId", itemID)
	if err != nil {
		return err
	}

	return s.mutate(ctx, eid, func(tx repository.Store, _ *model.Event) error {
		n, err := tx.Associations().DeleteItem(ctx, eid, iid)
		if err != nil {
			return internalError("delete event item", err)
		}
		if n == 0 {
			return nil
		}
		return writeAudit(ctx, tx, model.AuditItemDetached, eid, map[string]any{"eventItemId": iid})
	})
}

// DetachTeamMember is DetachItem for the team.
func (s *EventService) DetachTeamMember(ctx context.Context, eventID, teamID string) error {
	eid, err := parseID("eventId", eventID)
	if err != nil {
		return err
	}
	tid, err := parseID("teamId", teamID)
	if err != nil {
		return err
	}

	return s.mutate(ctx, eid, func(tx repository.Store, _ *model.Event) error {
		n, err := tx.Associations().DeleteTeamMember(ctx, eid, tid)
		if err != nil {
			return internalError("delete team member", err)
		}
		if n == 0 {
			return nil
		}
		return writeAudit(ctx, tx, model.AuditTeamDetached, eid, map[string]any{"teamId": tid})
	})
}

// Recalculate recomputes and persists the derived financials of an event
// and returns the rounded breakdown. Unlike the step run after mutations,
// failures are returned to the caller.
func (s *EventService) Recalculate(ctx context.Context, eventID string) (*finance.Breakdown, error) {
	id, err := parseID("eventId", eventID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, id.String())
	if err != nil {
		return nil, internalError("lock event", err)
	}
	defer unlock()

	var out *finance.Breakdown
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Events().LockForUpdate(ctx, id); err != nil {
			return repoError(err, "event", "lock event")
		}
		b, err := recalculate(ctx, tx, id)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "recalculate event")
	}
	return out, nil
}

// mutate runs fn and the recalculation step in one transaction while
// holding both the per-event lock and the event row lock.
func (s *EventService) mutate(ctx context.Context, id uuid.UUID, fn func(tx repository.Store, ev *model.Event) error) error {
	unlock, err := s.locker.Lock(ctx, id.String())
	if err != nil {
		return internalError("lock event", err)
	}
	defer unlock()

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		ev, err := tx.Events().LockForUpdate(ctx, id)
		if err != nil {
			return repoError(err, "event", "lock event")
		}
		if err := fn(tx, ev); err != nil {
			return err
		}
		s.recalculateStep(ctx, tx, id)
		return nil
	})
	return asServiceError(err, "update event")
}

// recalculateStep runs after every mutation inside a savepoint. A failure
// rolls back only the savepoint: it is logged and audited and the
// mutation still commits.
func (s *EventService) recalculateStep(ctx context.Context, tx repository.Store, id uuid.UUID) {
	err := tx.Transaction(ctx, func(inner repository.Store) error {
		_, err := recalculate(ctx, inner, id)
		return err
	})
	if err == nil {
		return
	}

	s.logger.Printf("WARN recalculate financials of event %s: %v", id, err)
	auditErr := tx.Transaction(ctx, func(inner repository.Store) error {
		return writeAudit(ctx, inner, model.AuditRecalculationFailed, id, map[string]any{"error": err.Error()})
	})
	if auditErr != nil {
		s.logger.Printf("WARN record recalculation failure of event %s: %v", id, auditErr)
	}
}

func recalculate(ctx context.Context, store repository.Store, id uuid.UUID) (*finance.Breakdown, error) {
	ev, err := store.Events().FindWithAssociations(ctx, id)
	if err != nil {
		return nil, repoError(err, "event", "load event")
	}

	b := finance.Calculate(finance.InputFromEvent(ev)).Rounded()

	if err := store.Events().UpdateFinancials(ctx, id, b.Financials()); err != nil {
		return nil, repoError(err, "event", "persist financials")
	}
	if err := writeAudit(ctx, store, model.AuditFinancialsRecalculated, id, breakdownDetails(b)); err != nil {
		return nil, err
	}
	return &b, nil
}

// resolveLinks checks and fills the customer and vehicle references of ev.
// Only links named in changed are re-resolved on update.
func (s *EventService) resolveLinks(ctx context.Context, tx repository.Store, ev *model.Event, changed []string) error {
	if contains(changed, "customerId") && ev.CustomerID != nil {
		c, err := tx.Customers().GetByID(ctx, *ev.CustomerID, false)
		if err != nil {
			return repoError(err, "customer", "load customer")
		}
		fillClientFromCustomer(ev, c)
	}
	if ev.CustomerID == nil && contains(changed, "clientPhone") && ev.ClientPhone != "" {
		c, err := tx.Customers().FindByPhone(ctx, ev.ClientPhone)
		switch {
		case err == nil:
			ev.CustomerID = &c.ID
			fillClientFromCustomer(ev, c)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return internalError("find customer by phone", err)
		}
	}

	if ev.TransportType != model.TransportFleet {
		ev.VehicleID = nil
		return nil
	}
	if ev.VehicleID == nil {
		return validationError("vehicleId", "vehicleId is required for %s", model.TransportFleet)
	}
	if contains(changed, "vehicleId") || contains(changed, "transportType") {
		if _, err := tx.Vehicles().GetByID(ctx, *ev.VehicleID, false); err != nil {
			return repoError(err, "vehicle", "load vehicle")
		}
	}
	return nil
}

func fillClientFromCustomer(ev *model.Event, c *model.Customer) {
	if ev.ClientName == "" {
		ev.ClientName = c.Name
	}
	if ev.ClientPhone == "" {
		ev.ClientPhone = c.Phone
	}
	if ev.ClientEmail == "" {
		ev.ClientEmail = c.Email
	}
	if ev.ClientAddress == "" {
		ev.ClientAddress = c.Address
	}
}

// applyPatch copies patch onto ev and returns the names of the touched
// fields.
func applyPatch(ev *model.Event, p EventPatch) ([]string, error) {
	var changed []string
	setString := func(dst *string, src *string, name string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
			changed = append(changed, name)
		}
	}

	if p.CustomerID != nil {
		id, err := parseOptionalID("customerId", *p.CustomerID)
		if err != nil {
			return nil, err
		}
		ev.CustomerID = id
		changed = append(changed, "customerId")
	}
	setString(&ev.ClientName, p.ClientName, "clientName")
	setString(&ev.ClientPhone, p.ClientPhone, "clientPhone")
	setString(&ev.ClientEmail, p.ClientEmail, "clientEmail")
	setString(&ev.ClientAddress, p.ClientAddress, "clientAddress")
	setString(&ev.Address, p.Address, "address")
	setString(&ev.Notes, p.Notes, "notes")

	if p.EventDate != nil {
		ev.EventDate = p.EventDate.UTC()
		changed = append(changed, "eventDate")
	}
	if p.DistanceKm != nil {
		d, err := finance.ParseNonNegative(*p.DistanceKm)
		if err != nil {
			return nil, validationError("distanceKm", "distanceKm must be a non-negative number")
		}
		ev.DistanceKm = d
		changed = append(changed, "distanceKm")
	}
	if p.ExtraExpenses != nil {
		d, err := finance.ParseNonNegative(*p.ExtraExpenses)
		if err != nil {
			return nil, validationError("extraExpenses", "extraExpenses must be a non-negative number")
		}
		ev.ExtraExpenses = d
		changed = append(changed, "extraExpenses")
	}
	if p.GuestAdults != nil {
		ev.GuestAdults = *p.GuestAdults
		changed = append(changed, "guestAdults")
	}
	if p.GuestKids != nil {
		ev.GuestKids = *p.GuestKids
		changed = append(changed, "guestKids")
	}
	if p.TransportType != nil {
		ev.TransportType = model.TransportType(normalizeEnum(string(*p.TransportType)))
		changed = append(changed, "transportType")
	}
	if p.VehicleID != nil {
		id, err := parseOptionalID("vehicleId", *p.VehicleID)
		if err != nil {
			return nil, err
		}
		ev.VehicleID = id
		changed = append(changed, "vehicleId")
	}
	if p.Status != nil {
		ev.Status = model.EventStatus(normalizeEnum(string(*p.Status)))
		changed = append(changed, "status")
	}
	if p.FinancialStatus != nil {
		ev.FinancialStatus = model.FinancialStatus(normalizeEnum(string(*p.FinancialStatus)))
		changed = append(changed, "financialStatus")
	}
	return changed, nil
}

func validateEvent(ev *model.Event) error {
	switch {
	case ev.ClientName == "":
		return validationError("clientName", "clientName is required")
	case ev.Address == "":
		return validationError("address", "address is required")
	case ev.EventDate.IsZero():
		return validationError("eventDate", "eventDate is required")
	case ev.GuestAdults < 0:
		return validationError("guestAdults", "guestAdults must not be negative")
	case ev.GuestKids < 0:
		return validationError("guestKids", "guestKids must not be negative")
	case !ev.TransportType.Valid():
		return validationError("transportType", "unknown transport type %q", ev.TransportType)
	case !ev.Status.Valid():
		return validationError("status", "unknown status %q", ev.Status)
	case !ev.FinancialStatus.Valid():
		return validationError("financialStatus", "unknown financial status %q", ev.FinancialStatus)
	}
	return nil
}

func editableColumns(ev *model.Event) map[string]any {
	return map[string]any{
		"customer_id":      ev.CustomerID,
		"client_name":      ev.ClientName,
		"client_phone":     ev.ClientPhone,
		"client_email":     ev.ClientEmail,
		"client_address":   ev.ClientAddress,
		"address":          ev.Address,
		"event_date":       ev.EventDate,
		"distance_km":      ev.DistanceKm,
		"guest_adults":     ev.GuestAdults,
		"guest_kids":       ev.GuestKids,
		"transport_type":   ev.TransportType,
		"vehicle_id":       ev.VehicleID,
		"status":           ev.Status,
		"financial_status": ev.FinancialStatus,
		"notes":            ev.Notes,
		"extra_expenses":   ev.ExtraExpenses,
	}
}

func asServiceError(err error, op string) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internalError(op, err)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
