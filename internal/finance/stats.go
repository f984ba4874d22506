package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/betinha/rental-core/internal/model"
)

// Stats is the dashboard rollup of a set of events.
type Stats struct {
	MonthlyRevenue decimal.Decimal
	MonthlyProfit  decimal.Decimal
	AvgMargin      decimal.Decimal
	PendingEvents  int
}

// ComputeStats aggregates committed event financials. It does not filter:
// callers pass the active (and optionally date/status filtered) events.
func ComputeStats(events []model.Event) Stats {
	s := Stats{
		MonthlyRevenue: decimal.Zero,
		MonthlyProfit:  decimal.Zero,
	}
	for _, e := range events {
		s.MonthlyRevenue = s.MonthlyRevenue.Add(e.TotalRevenue)
		s.MonthlyProfit = s.MonthlyProfit.Add(e.NetProfit)
		if e.Status == model.EventStatusPending {
			s.PendingEvents++
		}
	}
	s.AvgMargin = Round(Margin(s.MonthlyProfit, s.MonthlyRevenue))
	return s
}

// RevenueCostPoint is the revenue and total cost of a single event.
type RevenueCostPoint struct {
	EventID uuid.UUID
	Date    time.Time
	Revenue decimal.Decimal
	Cost    decimal.Decimal
}

// Points returns one revenue/cost pair per event; cost is everything the
// event spent, i.e. revenue minus net profit.
func Points(events []model.Event) []RevenueCostPoint {
	out := make([]RevenueCostPoint, 0, len(events))
	for _, e := range events {
		out = append(out, RevenueCostPoint{
			EventID: e.ID,
			Date:    e.EventDate,
			Revenue: e.TotalRevenue,
			Cost:    e.TotalRevenue.Sub(e.NetProfit),
		})
	}
	return out
}
