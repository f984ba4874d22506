package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/betinha/rental-core/internal/finance"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/service"
)

// amount accepts a decimal as a JSON string ("5.90", "5,90") or number.
type amount string

func (a *amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number")
	}
	*a = amount(n.String())
	return nil
}

func amountPtr(a *amount) *string {
	if a == nil {
		return nil
	}
	s := string(*a)
	return &s
}

// ---- requests ----

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type employeeRequest struct {
	Name                    *string `json:"name"`
	Phone                   *string `json:"phone"`
	Role                    *string `json:"role"`
	BasePayment             *amount `json:"basePayment"`
	IndividualTransportCost *amount `json:"individualTransportCost"`
}

func (r employeeRequest) fields() service.EmployeeFields {
	return service.EmployeeFields{
		Name:                    r.Name,
		Phone:                   r.Phone,
		Role:                    r.Role,
		BasePayment:             amountPtr(r.BasePayment),
		IndividualTransportCost: amountPtr(r.IndividualTransportCost),
	}
}

type vehicleRequest struct {
	Name                 *string `json:"name"`
	LicensePlate         *string `json:"licensePlate"`
	KmPerLiter           *amount `json:"kmPerLiter"`
	AvgFuelPrice         *amount `json:"avgFuelPrice"`
	MaintenanceCostPerKm *amount `json:"maintenanceCostPerKm"`
}

func (r vehicleRequest) fields() service.VehicleFields {
	return service.VehicleFields{
		Name:                 r.Name,
		LicensePlate:         r.LicensePlate,
		KmPerLiter:           amountPtr(r.KmPerLiter),
		AvgFuelPrice:         amountPtr(r.AvgFuelPrice),
		MaintenanceCostPerKm: amountPtr(r.MaintenanceCostPerKm),
	}
}

type categoryRequest struct {
	Name *string `json:"name"`
}

type catalogItemRequest struct {
	CategoryID    *string `json:"categoryId"`
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Type          *string `json:"type"`
	PriceClient   *amount `json:"priceClient"`
	InternalCost  *amount `json:"internalCost"`
	StockQuantity *int    `json:"stockQuantity"`
}

func (r catalogItemRequest) fields() service.CatalogItemFields {
	return service.CatalogItemFields{
		CategoryID:    r.CategoryID,
		Name:          r.Name,
		Description:   r.Description,
		Type:          r.Type,
		PriceClient:   amountPtr(r.PriceClient),
		InternalCost:  amountPtr(r.InternalCost),
		StockQuantity: r.StockQuantity,
	}
}

type customerRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

func (r customerRequest) fields() service.CustomerFields {
	return service.CustomerFields{Name: r.Name, Phone: r.Phone, Email: r.Email, Address: r.Address, Notes: r.Notes}
}

// eventRequest serves both create and partial update.
type eventRequest struct {
	CustomerID      *string                `json:"customerId"`
	ClientName      *string                `json:"clientName"`
	ClientPhone     *string                `json:"clientPhone"`
	ClientEmail     *string                `json:"clientEmail"`
	ClientAddress   *string                `json:"clientAddress"`
	Address         *string                `json:"address"`
	EventDate       *time.Time             `json:"eventDate"`
	DistanceKm      *amount                `json:"distanceKm"`
	GuestAdults     *int                   `json:"guestAdults"`
	GuestKids       *int                   `json:"guestKids"`
	TransportType   *model.TransportType   `json:"transportType"`
	VehicleID       *string                `json:"vehicleId"`
	Status          *model.EventStatus     `json:"status"`
	FinancialStatus *model.FinancialStatus `json:"financialStatus"`
	Notes           *string                `json:"notes"`
	ExtraExpenses   *amount                `json:"extraExpenses"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (r eventRequest) input() service.EventInput {
	return service.EventInput{
		CustomerID:      deref(r.CustomerID),
		ClientName:      deref(r.ClientName),
		ClientPhone:     deref(r.ClientPhone),
		ClientEmail:     deref(r.ClientEmail),
		ClientAddress:   deref(r.ClientAddress),
		Address:         deref(r.Address),
		EventDate:       deref(r.EventDate),
		DistanceKm:      deref(amountPtr(r.DistanceKm)),
		GuestAdults:     deref(r.GuestAdults),
		GuestKids:       deref(r.GuestKids),
		TransportType:   deref(r.TransportType),
		VehicleID:       deref(r.VehicleID),
		Status:          deref(r.Status),
		FinancialStatus: deref(r.FinancialStatus),
		Notes:           deref(r.Notes),
		ExtraExpenses:   deref(amountPtr(r.ExtraExpenses)),
	}
}

func (r eventRequest) patch() service.EventPatch {
	return service.EventPatch{
		CustomerID:      r.CustomerID,
		ClientName:      r.ClientName,
		ClientPhone:     r.ClientPhone,
		ClientEmail:     r.ClientEmail,
		ClientAddress:   r.ClientAddress,
		Address:         r.Address,
		EventDate:       r.EventDate,
		DistanceKm:      amountPtr(r.DistanceKm),
		GuestAdults:     r.GuestAdults,
		GuestKids:       r.GuestKids,
		TransportType:   r.TransportType,
		VehicleID:       r.VehicleID,
		Status:          r.Status,
		FinancialStatus: r.FinancialStatus,
		Notes:           r.Notes,
		ExtraExpenses:   amountPtr(r.ExtraExpenses),
	}
}

type attachItemRequest struct {
	CatalogItemID string `json:"catalogItemId"`
	Quantity      int    `json:"quantity"`
}

type attachTeamRequest struct {
	EmployeeID string `json:"employeeId"`
}

// ---- responses ----

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toUser(u *model.User) userDTO {
	return userDTO{ID: u.ID.String(), Email: u.Email, Name: u.Name}
}

type employeeDTO struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	Phone                   string `json:"phone"`
	Role                    string `json:"role"`
	BasePayment             string `json:"basePayment"`
	IndividualTransportCost string `json:"individualTransportCost"`
	Active                  bool   `json:"active"`
}

func toEmployee(e *model.Employee) employeeDTO {
	return employeeDTO{
		ID:                      e.ID.String(),
		Name:                    e.Name,
		Phone:                   e.Phone,
		Role:                    e.Role,
		BasePayment:             finance.Format(e.BasePayment),
		IndividualTransportCost: finance.Format(e.IndividualTransportCost),
		Active:                  e.Active,
	}
}

type vehicleDTO struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	LicensePlate         string `json:"licensePlate"`
	KmPerLiter           string `json:"kmPerLiter"`
	AvgFuelPrice         string `json:"avgFuelPrice"`
	MaintenanceCostPerKm string `json:"maintenanceCostPerKm"`
	Active               bool   `json:"active"`
}

func toVehicle(v *model.Vehicle) vehicleDTO {
	return vehicleDTO{
		ID:                   v.ID.String(),
		Name:                 v.Name,
		LicensePlate:         v.LicensePlate,
		KmPerLiter:           finance.Format(v.KmPerLiter),
		AvgFuelPrice:         finance.Format(v.AvgFuelPrice),
		MaintenanceCostPerKm: finance.Format(v.MaintenanceCostPerKm),
		Active:               v.Active,
	}
}

type categoryDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func toCategory(c *model.Category) categoryDTO {
	return categoryDTO{ID: c.ID.String(), Name: c.Name, Active: c.Active}
}

type catalogItemDTO struct {
	ID            string       `json:"id"`
	CategoryID    *string      `json:"categoryId"`
	Category      *categoryDTO `json:"category,omitempty"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Type          string       `json:"type"`
	PriceClient   string       `json:"priceClient"`
	InternalCost  string       `json:"internalCost"`
	Margin        string       `json:"margin"`
	StockQuantity int          `json:"stockQuantity"`
	Active        bool         `json:"active"`
}

func toCatalogItem(i *model.CatalogItem) catalogItemDTO {
	out := catalogItemDTO{
		ID:            i.ID.String(),
		Name:          i.Name,
		Description:   i.Description,
		Type:          string(i.Type),
		PriceClient:   finance.Format(i.PriceClient),
		InternalCost:  finance.Format(i.InternalCost),
		Margin:        finance.Format(service.ItemMargin(i)),
		StockQuantity: i.StockQuantity,
		Active:        i.Active,
	}
	if i.CategoryID != nil {
		id := i.CategoryID.String()
		out.CategoryID = &id
	}
	if i.Category != nil {
		c := toCategory(i.Category)
		out.Category = &c
	}
	return out
}

type customerDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
	Active  bool   `json:"active"`
}

func toCustomer(c *model.Customer) customerDTO {
	return customerDTO{
		ID:      c.ID.String(),
		Name:    c.Name,
		Phone:   c.Phone,
		Email:   c.Email,
		Address: c.Address,
		Notes:   c.Notes,
		Active:  c.Active,
	}
}

type eventItemDTO struct {
	ID                string          `json:"id"`
	EventID           string          `json:"eventId"`
	CatalogItemID     string          `json:"catalogItemId"`
	CatalogItem       *catalogItemDTO `json:"catalogItem,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPriceSnapshot string          `json:"unitPriceSnapshot"`
	UnitCostSnapshot  string          `json:"unitCostSnapshot"`
}

func toEventItem(it *model.EventItem) eventItemDTO {
	out := eventItemDTO{
		ID:                it.ID.String(),
		EventID:           it.EventID.String(),
		CatalogItemID:     it.CatalogItemID.String(),
		Quantity:          it.Quantity,
		UnitPriceSnapshot: finance.Format(it.UnitPriceSnapshot),
		UnitCostSnapshot:  finance.Format(it.UnitCostSnapshot),
	}
	if it.CatalogItem != nil {
		ci := toCatalogItem(it.CatalogItem)
		out.CatalogItem = &ci
	}
	return out
}

type teamMemberDTO struct {
	ID                    string       `json:"id"`
	EventID               string       `json:"eventId"`
	EmployeeID            string       `json:"employeeId"`
	Employee              *employeeDTO `json:"employee,omitempty"`
	PaymentSnapshot       string       `json:"paymentSnapshot"`
	TransportCostSnapshot string       `json:"transportCostSnapshot"`
}

func toTeamMember(m *model.EventTeamMember) teamMemberDTO {
	out := teamMemberDTO{
		ID:                    m.ID.String(),
		EventID:               m.EventID.String(),
		EmployeeID:            m.EmployeeID.String(),
		PaymentSnapshot:       finance.Format(m.PaymentSnapshot),
		TransportCostSnapshot: finance.Format(m.TransportCostSnapshot),
	}
	if m.Employee != nil {
		e := toEmployee(m.Employee)
		out.Employee = &e
	}
	return out
}

type eventDTO struct {
	ID                 string          `json:"id"`
	CustomerID         *string         `json:"customerId"`
	ClientName         string          `json:"clientName"`
	ClientPhone        string          `json:"clientPhone"`
	ClientEmail        string          `json:"clientEmail"`
	ClientAddress      string          `json:"clientAddress"`
	Address            string          `json:"address"`
	EventDate          time.Time       `json:"eventDate"`
	DistanceKm         string          `json:"distanceKm"`
	GuestAdults        int             `json:"guestAdults"`
	GuestKids          int             `json:"guestKids"`
	TransportType      string          `json:"transportType"`
	VehicleID          *string         `json:"vehicleId"`
	Vehicle            *vehicleDTO     `json:"vehicle,omitempty"`
	Status             string          `json:"status"`
	FinancialStatus    string          `json:"financialStatus"`
	Notes              string          `json:"notes"`
	ExtraExpenses      string          `json:"extraExpenses"`
	TotalRevenue       string          `json:"totalRevenue"`
	TotalCostItems     string          `json:"totalCostItems"`
	TotalCostLabor     string          `json:"totalCostLabor"`
	TotalCostTransport string          `json:"totalCostTransport"`
	NetProfit          string          `json:"netProfit"`
	ProfitMargin       string          `json:"profitMargin"`
	CreatedAt          time.Time       `json:"createdAt"`
	Items              []eventItemDTO  `json:"items,omitempty"`
	Team               []teamMemberDTO `json:"team,omitempty"`
}

func toEvent(ev *model.Event) eventDTO {
	out := eventDTO{
		ID:                 ev.ID.String(),
		ClientName:         ev.ClientName,
		ClientPhone:        ev.ClientPhone,
		ClientEmail:        ev.ClientEmail,
		ClientAddress:      ev.ClientAddress,
		Address:            ev.Address,
		EventDate:          ev.EventDate,
		DistanceKm:         finance.Format(ev.DistanceKm),
		GuestAdults:        ev.GuestAdults,
		GuestKids:          ev.GuestKids,
		TransportType:      string(ev.TransportType),
		Status:             string(ev.Status),
		FinancialStatus:    string(ev.FinancialStatus),
		Notes:              ev.Notes,
		ExtraExpenses:      finance.Format(ev.ExtraExpenses),
		TotalRevenue:       finance.Format(ev.TotalRevenue),
		TotalCostItems:     finance.Format(ev.TotalCostItems),
		TotalCostLabor:     finance.Format(ev.TotalCostLabor),
		TotalCostTransport: finance.Format(ev.TotalCostTransport),
		NetProfit:          finance.Format(ev.NetProfit),
		ProfitMargin:       finance.Format(ev.ProfitMargin),
		CreatedAt:          ev.CreatedAt,
	}
	if ev.CustomerID != nil {
		id := ev.CustomerID.String()
		out.CustomerID = &id
	}
	if ev.VehicleID != nil {
		id := ev.VehicleID.String()
		out.VehicleID = &id
	}
	if ev.Vehicle != nil {
		v := toVehicle(ev.Vehicle)
		out.Vehicle = &v
	}
	for i := range ev.Items {
		out.Items = append(out.Items, toEventItem(&ev.Items[i]))
	}
	for i := range ev.Team {
		out.Team = append(out.Team, toTeamMember(&ev.Team[i]))
	}
	return out
}

type breakdownDTO struct {
	TotalRevenue       string `json:"totalRevenue"`
	TotalCostItems     string `json:"totalCostItems"`
	TotalCostLabor     string `json:"totalCostLabor"`
	FuelCost           string `json:"fuelCost"`
	MaintenanceCost    string `json:"maintenanceCost"`
	TotalCostTransport string `json:"totalCostTransport"`
	ExtraExpenses      string `json:"extraExpenses"`
	NetProfit          string `json:"netProfit"`
	ProfitMargin       string `json:"profitMargin"`
}

func toBreakdown(b *finance.Breakdown) breakdownDTO {
	return breakdownDTO{
		TotalRevenue:       finance.Format(b.TotalRevenue),
		TotalCostItems:     finance.Format(b.TotalCostItems),
		TotalCostLabor:     finance.Format(b.TotalCostLabor),
		FuelCost:           finance.Format(b.FuelCost),
		MaintenanceCost:    finance.Format(b.MaintenanceCost),
		TotalCostTransport: finance.Format(b.TotalCostTransport),
		ExtraExpenses:      finance.Format(b.ExtraExpenses),
		NetProfit:          finance.Format(b.NetProfit),
		ProfitMargin:       finance.Format(b.ProfitMargin),
	}
}

type auditEntryDTO struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	UserID    *string         `json:"userId"`
	CreatedAt time.Time       `json:"createdAt"`
	Details   json.RawMessage `json:"details"`
}

func toAuditEntry(a *model.AuditEntry) auditEntryDTO {
	out := auditEntryDTO{
		ID:        a.ID.String(),
		Type:      string(a.EntryType),
		CreatedAt: a.CreatedAt,
		Details:   json.RawMessage(a.Details),
	}
	if len(out.Details) == 0 {
		out.Details = json.RawMessage("{}")
	}
	if a.UserID != nil {
		id := a.UserID.String()
		out.UserID = &id
	}
	return out
}

type chartPointDTO struct {
	Month   string `json:"month"`
	Revenue string `json:"revenue"`
	Costs   string `json:"costs"`
}

type statsDTO struct {
	MonthlyRevenue string          `json:"monthlyRevenue"`
	MonthlyProfit  string          `json:"monthlyProfit"`
	AvgMargin      string          `json:"avgMargin"`
	PendingEvents  int             `json:"pendingEvents"`
	ChartData      []chartPointDTO `json:"chartData"`
}

func toStats(d *service.Dashboard) statsDTO {
	out := statsDTO{
		MonthlyRevenue: finance.Format(d.MonthlyRevenue),
		MonthlyProfit:  finance.Format(d.MonthlyProfit),
		AvgMargin:      finance.Format(d.AvgMargin),
		PendingEvents:  d.PendingEvents,
		ChartData:      make([]chartPointDTO, 0, len(d.Chart)),
	}
	for _, b := range d.Chart {
		out.ChartData = append(out.ChartData, chartPointDTO{
			Month:   b.Month,
			Revenue: finance.Format(b.Revenue),
			Costs:   finance.Format(b.Cost),
		})
	}
	return out
}
