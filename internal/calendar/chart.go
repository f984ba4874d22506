package calendar

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betinha/rental-core/internal/finance"
)

// MonthBucket is one point of the revenue vs costs dashboard chart.
type MonthBucket struct {
	Month   string // "2006-01"
	Revenue decimal.Decimal
	Cost    decimal.Decimal
}

// BucketByMonth sums per-event points into calendar months of loc, oldest
// month first. Months without events are omitted.
func BucketByMonth(points []finance.RevenueCostPoint, loc *time.Location) []MonthBucket {
	if loc == nil {
		loc = time.UTC
	}
	byMonth := make(map[string]*MonthBucket)
	for _, p := range points {
		key := p.Date.In(loc).Format("2006-01")
		b, ok := byMonth[key]
		if !ok {
			b = &MonthBucket{Month: key, Revenue: decimal.Zero, Cost: decimal.Zero}
			byMonth[key] = b
		}
		b.Revenue = b.Revenue.Add(p.Revenue)
		b.Cost = b.Cost.Add(p.Cost)
	}

	out := make([]MonthBucket, 0, len(byMonth))
	for _, b := range byMonth {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
