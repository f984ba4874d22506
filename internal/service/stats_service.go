package service

import (
	"context"
	"time"

	"github.com/betinha/rental-core/internal/calendar"
	"github.com/betinha/rental-core/internal/finance"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/repository"
)

// StatsFilter narrows the events rolled up. Zero values mean all active
// events.
type StatsFilter struct {
	Status   string
	From, To time.Time
}

// Dashboard is the stats rollup plus the monthly revenue vs cost series.
type Dashboard struct {
	finance.Stats
	Chart []calendar.MonthBucket
}

type StatsService struct {
	store repository.Store
	loc   *time.Location
}

// NewStatsService buckets chart data by calendar months of loc.
func NewStatsService(store repository.Store, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{store: store, loc: loc}
}

func (s *StatsService) Stats(ctx context.Context, f StatsFilter) (*Dashboard, error) {
	events, err := s.Events(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Stats: finance.ComputeStats(events),
		Chart: calendar.BucketByMonth(finance.Points(events), s.loc),
	}, nil
}

// Events loads every active event matching f, newest first.
func (s *StatsService) Events(ctx context.Context, f StatsFilter) ([]model.Event, error) {
	var filter repository.EventFilter
	if f.Status != "" {
		st := model.EventStatus(normalizeEnum(f.Status))
		if !st.Valid() {
			return nil, validationError("status", "unknown status %q", f.Status)
		}
		filter.Status = st
	}
	tr, err := calendar.NormalizeTimeRange(f.From, f.To, 0)
	if err != nil {
		return nil, validationError("from", "empty date range")
	}
	filter.From, filter.To = tr.Start, tr.End

	events, _, err := s.store.Events().List(ctx, filter)
	if err != nil {
		return nil, internalError("list events", err)
	}
	return events, nil
}
