// Package finance derives event financials from snapshot data.
//
// Everything here is pure: no persistence, no clock, no globals. Values are
// carried at full decimal precision and rounded only by Breakdown.Rounded,
// right before they are persisted or shown.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/betinha/rental-core/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Line is one booked catalog item with its frozen price and cost.
type Line struct {
	UnitPrice decimal.Decimal
	UnitCost  decimal.Decimal
	Quantity  int
}

// Member is one team member with frozen payment and transport cost.
type Member struct {
	Payment       decimal.Decimal
	TransportCost decimal.Decimal
}

// VehicleParams are the live cost parameters of a fleet vehicle.
type VehicleParams struct {
	KmPerLiter           decimal.Decimal
	AvgFuelPrice         decimal.Decimal
	MaintenanceCostPerKm decimal.Decimal
}

type Input struct {
	TransportType model.TransportType
	DistanceKm    decimal.Decimal // round trip, not doubled here
	ExtraExpenses decimal.Decimal
	Items         []Line
	Team          []Member
	Vehicle       *VehicleParams // nil when the event has no resolvable vehicle
}

// Breakdown is the result of a recalculation. FuelCost and MaintenanceCost
// are only informative: they are already included in TotalCostTransport.
type Breakdown struct {
	TotalRevenue       decimal.Decimal
	TotalCostItems     decimal.Decimal
	TotalCostLabor     decimal.Decimal
	FuelCost           decimal.Decimal
	MaintenanceCost    decimal.Decimal
	TotalCostTransport decimal.Decimal
	ExtraExpenses      decimal.Decimal
	NetProfit          decimal.Decimal
	ProfitMargin       decimal.Decimal
}

// Calculate computes the event financials.
func Calculate(in Input) Breakdown {
	b := Breakdown{
		TotalRevenue:       decimal.Zero,
		TotalCostItems:     decimal.Zero,
		TotalCostLabor:     decimal.Zero,
		FuelCost:           decimal.Zero,
		MaintenanceCost:    decimal.Zero,
		TotalCostTransport: decimal.Zero,
		ExtraExpenses:      in.ExtraExpenses,
	}

	for _, it := range in.Items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		b.TotalRevenue = b.TotalRevenue.Add(it.UnitPrice.Mul(qty))
		b.TotalCostItems = b.TotalCostItems.Add(it.UnitCost.Mul(qty))
	}

	for _, m := range in.Team {
		b.TotalCostLabor = b.TotalCostLabor.Add(m.Payment)
	}

	switch in.TransportType {
	case model.TransportIndividual:
		for _, m := range in.Team {
			b.TotalCostTransport = b.TotalCostTransport.Add(m.TransportCost)
		}
	case model.TransportFleet:
		if in.Vehicle != nil {
			b.FuelCost, b.MaintenanceCost = fleetCost(in.DistanceKm, *in.Vehicle)
			b.TotalCostTransport = b.FuelCost.Add(b.MaintenanceCost)
		}
	}

	costs := b.TotalCostItems.
		Add(b.TotalCostLabor).
		Add(b.TotalCostTransport).
		Add(b.ExtraExpenses)
	b.NetProfit = b.TotalRevenue.Sub(costs)
	b.ProfitMargin = Margin(b.NetProfit, b.TotalRevenue)

	return b
}

func fleetCost(distance decimal.Decimal, v VehicleParams) (fuel, maintenance decimal.Decimal) {
	fuel = decimal.Zero
	if v.KmPerLiter.IsPositive() {
		fuel = distance.Div(v.KmPerLiter).Mul(v.AvgFuelPrice)
	}
	maintenance = distance.Mul(v.MaintenanceCostPerKm)
	return fuel, maintenance
}

// Margin returns profit as a percentage of revenue, or exactly zero when
// there is no revenue.
func Margin(profit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred)
}

// Rounded returns the breakdown with every value rounded to cents.
func (b Breakdown) Rounded() Breakdown {
	return Breakdown{
		TotalRevenue:       Round(b.TotalRevenue),
		TotalCostItems:     Round(b.TotalCostItems),
		TotalCostLabor:     Round(b.TotalCostLabor),
		FuelCost:           Round(b.FuelCost),
		MaintenanceCost:    Round(b.MaintenanceCost),
		TotalCostTransport: Round(b.TotalCostTransport),
		ExtraExpenses:      Round(b.ExtraExpenses),
		NetProfit:          Round(b.NetProfit),
		ProfitMargin:       Round(b.ProfitMargin),
	}
}

// Financials returns the six persisted fields, rounded.
func (b Breakdown) Financials() model.Financials {
	r := b.Rounded()
	return model.Financials{
		TotalRevenue:       r.TotalRevenue,
		TotalCostItems:     r.TotalCostItems,
		TotalCostLabor:     r.TotalCostLabor,
		TotalCostTransport: r.TotalCostTransport,
		NetProfit:          r.NetProfit,
		ProfitMargin:       r.ProfitMargin,
	}
}

// InputFromEvent builds the engine input from an event loaded with its
// items, team and vehicle.
func InputFromEvent(e *model.Event) Input {
	in := Input{
		TransportType: e.TransportType,
		DistanceKm:    e.DistanceKm,
		ExtraExpenses: e.ExtraExpenses,
		Items:         make([]Line, 0, len(e.Items)),
		Team:          make([]Member, 0, len(e.Team)),
	}
	for _, it := range e.Items {
		in.Items = append(in.Items, Line{
			UnitPrice: it.UnitPriceSnapshot,
			UnitCost:  it.UnitCostSnapshot,
			Quantity:  it.Quantity,
		})
	}
	for _, m := range e.Team {
		in.Team = append(in.Team, Member{
			Payment:       m.PaymentSnapshot,
			TransportCost: m.TransportCostSnapshot,
		})
	}
	if e.TransportType == model.TransportFleet && e.Vehicle != nil {
		in.Vehicle = &VehicleParams{
			KmPerLiter:           e.Vehicle.KmPerLiter,
			AvgFuelPrice:         e.Vehicle.AvgFuelPrice,
			MaintenanceCostPerKm: e.Vehicle.MaintenanceCostPerKm,
		}
	}
	return in
}
