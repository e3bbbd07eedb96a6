// Package finance holds the date-driven computations behind recurring series,
// card billing cycles, installment plans and cash-flow projections.
//
// Everything here is pure: no I/O, no shared state, no clocks. Callers pass in
// the dates and pre-aggregated sums they own and persist whatever comes back.
package finance

import (
	"cashflow/internal/core"
)

// DefaultMaxOccurrences bounds the work done by a single GenerateSeries call.
const DefaultMaxOccurrences = 24

// Stepper advances a date by one period of a recurrence pattern.
// targetDay is the requested day of month, 0 when the caller has none.
type Stepper interface {
	Next(current core.Date, targetDay int) core.Date
}

// WeeklyStepper adds seven calendar days; the target day is ignored.
type WeeklyStepper struct{}

func (WeeklyStepper) Next(current core.Date, _ int) core.Date {
	return core.Date{Time: current.AddDate(0, 0, 7)}
}

// MonthlyStepper moves to the following month on the target day, or on the
// current day when no target is set, clamped to the month length.
type MonthlyStepper struct{}

func (MonthlyStepper) Next(current core.Date, targetDay int) core.Date {
	return core.AddMonths(current, 1, dayOrCurrent(current, targetDay))
}

// YearlyStepper moves to the same month of the following year, clamped the same way.
type YearlyStepper struct{}

func (YearlyStepper) Next(current core.Date, targetDay int) core.Date {
	return core.ClampDay(current.Year()+1, current.Month(), dayOrCurrent(current, targetDay))
}

func dayOrCurrent(current core.Date, targetDay int) int {
	if targetDay > 0 {
		return targetDay
	}
	return current.Day()
}

var steppers = map[core.Pattern]Stepper{
	core.Weekly:  WeeklyStepper{},
	core.Monthly: MonthlyStepper{},
	core.Yearly:  YearlyStepper{},
}

// StepperFor returns the stepper for a pattern. Unknown patterns use monthly semantics.
func StepperFor(pattern core.Pattern) Stepper {
	if s, ok := steppers[pattern]; ok {
		return s
	}
	return MonthlyStepper{}
}

// NextOccurrence returns the occurrence following current.
func NextOccurrence(current core.Date, pattern core.Pattern, targetDay int) core.Date {
	return StepperFor(pattern).Next(current, targetDay)
}

// RecurrenceRule describes how a series repeats from its anchor.
type RecurrenceRule struct {
	Pattern   core.Pattern
	Anchor    core.Date
	TargetDay int
}

// ScheduledOccurrence is one generated date of a series. Index starts at 1 for the
// first date after the anchor.
type ScheduledOccurrence struct {
	Date  core.Date
	Index int
}

// SeriesBounds stops generation at whichever limit is hit first.
// A zero Until defaults to the end of the anchor's year; MaxCount <= 0 uses
// DefaultMaxOccurrences.
type SeriesBounds struct {
	Until    core.Date
	MaxCount int
}

func (b SeriesBounds) normalize(anchor core.Date) SeriesBounds {
	if b.Until.IsZero() {
		b.Until = core.EndOfYear(anchor)
	}
	if b.MaxCount <= 0 {
		b.MaxCount = DefaultMaxOccurrences
	}
	return b
}

// done is the single termination predicate of the generator.
func (b SeriesBounds) done(next core.Date, emitted int) bool {
	return emitted >= b.MaxCount || next.After(b.Until.Time)
}

// GenerateSeries expands rule into the dates after its anchor. The anchor itself is
// never emitted, dates are strictly increasing and the boundary date is inclusive.
// To continue a long series call again with the last generated date as anchor.
func GenerateSeries(rule RecurrenceRule, bounds SeriesBounds) []ScheduledOccurrence {
	bounds = bounds.normalize(rule.Anchor)
	stepper := StepperFor(rule.Pattern)

	var out []ScheduledOccurrence
	current := rule.Anchor
	for {
		next := stepper.Next(current, rule.TargetDay)
		if bounds.done(next, len(out)) {
			break
		}
		out = append(out, ScheduledOccurrence{Date: next, Index: len(out) + 1})
		current = next
	}
	return out
}
