package finance

import (
	"fmt"

	"cashflow/internal/core"
)

// MonthProjectionInput carries the three disjoint parts of a month's net flow:
// what already happened, what is already scheduled, and the recent discretionary
// spending that gets extrapolated over the days left.
type MonthProjectionInput struct {
	PastNet                   float64
	FutureScheduledNet        float64
	LastNDaysDiscretionaryNet float64
	RemainingDays             int
	WindowDays                int
}

type YearProjectionInput struct {
	ProjectedMonthNet     float64
	MonthsRemaining       int
	HistoricalMonthlyNets []float64
}

// Projection is a figure plus a human readable account of how it was obtained.
type Projection struct {
	Value       float64
	Explanation string
}

// ProjectMonthNet estimates the net position at the end of the month.
func ProjectMonthNet(in MonthProjectionInput) Projection {
	if in.RemainingDays <= 0 {
		return Projection{
			Value:       in.PastNet,
			Explanation: "month already ended: realized net only",
		}
	}
	if in.WindowDays <= 0 {
		return Projection{
			Value:       in.PastNet + in.FutureScheduledNet,
			Explanation: "insufficient trailing data: realized plus scheduled net only",
		}
	}

	dailyAvg := in.LastNDaysDiscretionaryNet / float64(in.WindowDays)
	value := core.Round2(in.PastNet + in.FutureScheduledNet + dailyAvg*float64(in.RemainingDays))
	return Projection{
		Value: value,
		Explanation: fmt.Sprintf(
			"realized %.2f + scheduled %.2f + %.2f/day discretionary over %d remaining days (last %d days average)",
			in.PastNet, in.FutureScheduledNet, dailyAvg, in.RemainingDays, in.WindowDays),
	}
}

// ProjectYearEndImpact extends a monthly rate over the months left in the year.
// With history available the lower of the current projection and the historical
// average is used, which for losses is the larger loss.
func ProjectYearEndImpact(in YearProjectionInput) Projection {
	if in.MonthsRemaining <= 0 {
		return Projection{Value: 0, Explanation: "year already ended"}
	}
	if len(in.HistoricalMonthlyNets) == 0 {
		return Projection{
			Value: in.ProjectedMonthNet * float64(in.MonthsRemaining),
			Explanation: fmt.Sprintf("no history, using current projection %.2f over %d months",
				in.ProjectedMonthNet, in.MonthsRemaining),
		}
	}

	historicalAvg := mean(in.HistoricalMonthlyNets)
	rate := min(in.ProjectedMonthNet, historicalAvg)
	return Projection{
		Value: rate * float64(in.MonthsRemaining),
		Explanation: fmt.Sprintf(
			"conservative rate %.2f (min of projected %.2f and %d-month average %.2f) over %d months",
			rate, in.ProjectedMonthNet, len(in.HistoricalMonthlyNets), historicalAvg, in.MonthsRemaining),
	}
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
