package services

import (
	"context"
	"fmt"
	"time"

	"cashflow/internal/cache"
	"cashflow/internal/core"
	"cashflow/internal/finance"
	applog "cashflow/internal/log"
	"cashflow/internal/metrics"
	"cashflow/internal/storage"

	"golang.org/x/sync/errgroup"
)

const defaultWindowDays = 30

// MonthOutlook is the end-of-month projection with the inputs it was computed from.
type MonthOutlook struct {
	finance.Projection
	Input finance.MonthProjectionInput
}

// YearOutlook is the year-end projection with the inputs it was computed from.
type YearOutlook struct {
	finance.Projection
	Input finance.YearProjectionInput
}

// Dashboard is the computed view for a given day.
type Dashboard struct {
	Today    core.Date
	Overview core.MonthOverview
	Month    MonthOutlook
	Year     YearOutlook
}

// DashboardService gathers aggregates from storage and runs the projections over them.
type DashboardService struct {
	store      AggregateStore
	cache      cache.Cache[Dashboard]
	windowDays int
	logger     *applog.Logger
	metrics    *metrics.Metrics
}

// NewDashboardService wires the service. c may be nil to disable caching.
func NewDashboardService(store AggregateStore, c cache.Cache[Dashboard], windowDays int, logger *applog.Logger) *DashboardService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	return &DashboardService{
		store:      store,
		cache:      c,
		windowDays: windowDays,
		logger:     logger.WithComponent(applog.ComponentProjection),
		metrics:    metrics.Default(),
	}
}

// Purge drops cached dashboards.
func (s *DashboardService) Purge() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Dashboard returns the projections as seen on today.
func (s *DashboardService) Dashboard(ctx context.Context, today core.Date) (Dashboard, error) {
	key := "dashboard:" + today.String()
	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			s.metrics.DashboardCacheHitsTotal.Inc()
			return d, nil
		}
		s.metrics.DashboardCacheMissesTotal.Inc()
	}

	d, err := s.compute(ctx, today)
	if err != nil {
		return Dashboard{}, err
	}

	if s.cache != nil {
		s.cache.Set(key, d)
	}
	return d, nil
}

func (s *DashboardService) compute(ctx context.Context, today core.Date) (Dashboard, error) {
	monthStart := core.StartOfMonth(today)
	monthEnd := core.EndOfMonth(today)
	tomorrow := core.DateOf(today.AddDate(0, 0, 1))

	var (
		pastNet, scheduledNet, discretionaryNet int64
		windowDays                              int
		monthly                                 map[time.Month]int64
		overview                                core.MonthOverview
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		pastNet, err = s.store.SumNet(gctx, monthStart, today, storage.ScopeAll)
		return err
	})
	g.Go(func() error {
		if tomorrow.After(monthEnd.Time) {
			return nil
		}
		var err error
		scheduledNet, err = s.store.SumNet(gctx, tomorrow, monthEnd, storage.ScopeScheduled)
		return err
	})
	g.Go(func() error {
		earliest, ok, err := s.store.EarliestTransactionDate(gctx)
		if err != nil || !ok {
			return err
		}
		windowStart, days := s.window(today, earliest)
		if days == 0 {
			return nil
		}
		windowDays = days
		discretionaryNet, err = s.store.SumNet(gctx, windowStart, today, storage.ScopeDiscretionary)
		return err
	})
	g.Go(func() error {
		var err error
		monthly, err = s.store.MonthlyNets(gctx, today.Year())
		return err
	})
	g.Go(func() error {
		var err error
		overview, err = s.store.ReadMonthOverview(gctx, today.Year(), today.Month())
		return err
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard aggregates: %w", err)
	}

	monthIn := finance.MonthProjectionInput{
		PastNet:                   core.Money{Cents: pastNet}.Euros(),
		FutureScheduledNet:        core.Money{Cents: scheduledNet}.Euros(),
		LastNDaysDiscretionaryNet: core.Money{Cents: discretionaryNet}.Euros(),
		RemainingDays:             monthEnd.Day() - today.Day(),
		WindowDays:                windowDays,
	}
	monthProj := finance.ProjectMonthNet(monthIn)

	yearIn := finance.YearProjectionInput{
		ProjectedMonthNet:     monthProj.Value,
		MonthsRemaining:       12 - int(today.Month()),
		HistoricalMonthlyNets: completedMonths(monthly, today.Month()),
	}
	yearProj := finance.ProjectYearEndImpact(yearIn)

	s.metrics.ProjectionsComputedTotal.WithLabelValues("month").Inc()
	s.metrics.ProjectionsComputedTotal.WithLabelValues("year").Inc()

	s.logger.DebugContext(ctx, "Dashboard computed",
		applog.FieldOperation, applog.OpProject,
		applog.FieldDate, today.String(),
		"month_value", monthProj.Value,
		"year_value", yearProj.Value)

	return Dashboard{
		Today:    today,
		Overview: overview,
		Month:    MonthOutlook{Projection: monthProj, Input: monthIn},
		Year:     YearOutlook{Projection: yearProj, Input: yearIn},
	}, nil
}

// window returns the trailing window ending today, shortened when the history is younger.
func (s *DashboardService) window(today, earliest core.Date) (core.Date, int) {
	if earliest.After(today.Time) {
		return today, 0
	}
	start := core.DateOf(today.AddDate(0, 0, -(s.windowDays - 1)))
	if earliest.After(start.Time) {
		start = earliest
	}
	days := int(today.Sub(start.Time).Hours()/24) + 1
	return start, days
}

// completedMonths returns the nets of months before current that have data, in order.
func completedMonths(nets map[time.Month]int64, current time.Month) []float64 {
	var out []float64
	for m := time.January; m < current; m++ {
		if net, ok := nets[m]; ok {
			out = append(out, core.Money{Cents: net}.Euros())
		}
	}
	return out
}
