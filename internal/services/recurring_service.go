package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/finance"
	applog "cashflow/internal/log"
	"cashflow/internal/metrics"
)

// RecurringService creates recurring series and materializes their occurrences as
// transactions. Materialization is idempotent: occurrences are keyed by (series, date).
type RecurringService struct {
	series         SeriesStore
	transactions   *TransactionService
	maxOccurrences int
	logger         *applog.Logger
	metrics        *metrics.Metrics
}

func NewRecurringService(series SeriesStore, transactions *TransactionService, maxOccurrences int, logger *applog.Logger) *RecurringService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if maxOccurrences <= 0 {
		maxOccurrences = finance.DefaultMaxOccurrences
	}
	return &RecurringService{
		series:         series,
		transactions:   transactions,
		maxOccurrences: maxOccurrences,
		logger:         logger.WithComponent(applog.ComponentRecurring),
		metrics:        metrics.Default(),
	}
}

// CreateSeries stores rs, records its anchor occurrence and materializes the rest up to
// the series end date, or the end of the anchor year when it has none.
func (s *RecurringService) CreateSeries(ctx context.Context, rs core.RecurringSeries) (core.RecurringSeries, []core.Transaction, error) {
	if rs.Pattern != core.Weekly && rs.TargetDay == 0 {
		// pin the day so a clamped month (Feb 28) does not drag later occurrences back
		rs.TargetDay = rs.Anchor.Day()
	}
	rs.Active = true
	rs.LastGenerated = core.Date{}

	if err := rs.Validate(); err != nil {
		return core.RecurringSeries{}, nil, fmt.Errorf("validate series: %w", err)
	}

	created, err := s.series.CreateSeries(ctx, rs)
	if err != nil {
		return core.RecurringSeries{}, nil, fmt.Errorf("save series: %w", err)
	}

	s.logger.InfoContext(ctx, "Recurring series created",
		applog.NewFields().WithOperation(applog.OpCreate).WithSeries(created).ToSlice()...)

	txs, _, err := s.materialize(ctx, created, core.EndOfYear(created.Anchor))
	if err != nil {
		return created, nil, err
	}
	return created, txs, nil
}

// Materialize continues series id from its last generated occurrence up to until.
// A zero until means the end of the current year.
func (s *RecurringService) Materialize(ctx context.Context, id string, until core.Date) ([]core.Transaction, error) {
	rs, err := s.series.GetSeries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get series %s: %w", id, err)
	}
	if until.IsZero() {
		until = core.EndOfYear(core.DateOf(time.Now()))
	}
	stored, _, err := s.materialize(ctx, rs, until)
	return stored, err
}

// materialize writes the occurrences of rs that fall in (lastGenerated, until],
// including the anchor itself when nothing was generated yet. It also returns the
// series' last generated date after the write.
func (s *RecurringService) materialize(ctx context.Context, rs core.RecurringSeries, until core.Date) ([]core.Transaction, core.Date, error) {
	if !rs.EndDate.IsZero() && rs.EndDate.Before(until.Time) {
		until = rs.EndDate
	}

	var dates []core.Date
	start := rs.LastGenerated
	if start.IsZero() {
		start = rs.Anchor
		if !rs.Anchor.After(until.Time) {
			dates = append(dates, rs.Anchor)
		}
	}

	budget := s.maxOccurrences - len(dates)
	if budget > 0 {
		occurrences := finance.GenerateSeries(
			finance.RecurrenceRule{Pattern: rs.Pattern, Anchor: start, TargetDay: rs.TargetDay},
			finance.SeriesBounds{Until: until, MaxCount: budget},
		)
		for _, occ := range occurrences {
			dates = append(dates, occ.Date)
		}
	}

	if len(dates) == 0 {
		return nil, rs.LastGenerated, nil
	}

	txs := make([]core.Transaction, 0, len(dates))
	for _, d := range dates {
		txs = append(txs, core.Transaction{
			Kind:        rs.Kind,
			Date:        d,
			Description: rs.Description,
			Amount:      rs.Amount,
			Category:    rs.Category,
			SeriesID:    rs.ID,
		})
	}

	last := dates[len(dates)-1]
	stored, err := s.series.SaveOccurrences(ctx, rs.ID, txs, last)
	if err != nil {
		return nil, rs.LastGenerated, fmt.Errorf("save occurrences for series %s: %w", rs.ID, err)
	}

	s.metrics.OccurrencesMaterialized.WithLabelValues(string(rs.Pattern)).Add(float64(len(stored)))
	if s.transactions != nil {
		s.transactions.afterWrite(ctx, SourceRecurring, stored)
	}

	s.logger.InfoContext(ctx, "Series materialized",
		applog.FieldOperation, applog.OpMaterialize,
		applog.FieldSeriesID, rs.ID,
		applog.FieldPattern, string(rs.Pattern),
		"until", until.String(),
		applog.FieldCount, len(stored))
	return stored, last, nil
}

// exhausted reports whether every occurrence of rs up to its end date has been
// generated, given the last generated date.
func exhausted(rs core.RecurringSeries, last core.Date) bool {
	if rs.EndDate.IsZero() || last.IsZero() {
		return false
	}
	return finance.NextOccurrence(last, rs.Pattern, rs.TargetDay).After(rs.EndDate.Time)
}

// ProcessActive materializes every active series up to the end of now's year and
// retires series whose end date has passed once all their occurrences are stored.
// It returns how many rows were written.
func (s *RecurringService) ProcessActive(ctx context.Context, now time.Time) (int, error) {
	active, err := s.series.ListSeries(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("list active series: %w", err)
	}

	today := core.DateOf(now)
	horizon := core.EndOfYear(today)

	s.logger.InfoContext(ctx, "Processing recurring series",
		"total_active", len(active),
		"horizon", horizon.String())

	created := 0
	var errs []error
	for _, rs := range active {
		stored, last, err := s.materialize(ctx, rs, horizon)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to materialize series",
				applog.FieldSeriesID, rs.ID,
				applog.FieldError, err)
			errs = append(errs, err)
			continue
		}
		created += len(stored)

		if rs.EndDate.Before(today.Time) && exhausted(rs, last) {
			if err := s.series.DeactivateSeries(ctx, rs.ID); err != nil {
				s.logger.WarnContext(ctx, "Failed to deactivate finished series",
					applog.FieldSeriesID, rs.ID,
					applog.FieldError, err)
			}
		}
	}

	s.logger.InfoContext(ctx, "Recurring processing complete",
		"created", created,
		"total_checked", len(active))

	return created, errors.Join(errs...)
}

func (s *RecurringService) Get(ctx context.Context, id string) (core.RecurringSeries, error) {
	return s.series.GetSeries(ctx, id)
}

func (s *RecurringService) List(ctx context.Context, activeOnly bool) ([]core.RecurringSeries, error) {
	return s.series.ListSeries(ctx, activeOnly)
}

// Stop deactivates a series. Occurrences already stored are kept.
func (s *RecurringService) Stop(ctx context.Context, id string) error {
	if err := s.series.DeactivateSeries(ctx, id); err != nil {
		return fmt.Errorf("deactivate series %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Recurring series stopped", applog.FieldSeriesID, id)
	return nil
}
