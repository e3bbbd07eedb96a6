package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cashflow/internal/finance"

	"github.com/spf13/cobra"
)

func newProjectCmd(out func(*cobra.Command) printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Run month-end and year-end projections",
	}
	cmd.AddCommand(newProjectMonthCmd(out))
	cmd.AddCommand(newProjectYearCmd(out))
	return cmd
}

func newProjectMonthCmd(out func(*cobra.Command) printer) *cobra.Command {
	var in finance.MonthProjectionInput

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Project the net position at the end of the month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.RemainingDays < 0 || in.WindowDays < 0 {
				return fmt.Errorf("--remaining and --window must not be negative")
			}
			for flag, v := range map[string]float64{
				"past":          in.PastNet,
				"scheduled":     in.FutureScheduledNet,
				"discretionary": in.LastNDaysDiscretionaryNet,
			} {
				if !finite(v) {
					return fmt.Errorf("--%s must be a finite number, got %v", flag, v)
				}
			}
			return emitProjection(out(cmd), finance.ProjectMonthNet(in))
		},
	}
	cmd.Flags().Float64Var(&in.PastNet, "past", 0, "Net realized so far this month")
	cmd.Flags().Float64Var(&in.FutureScheduledNet, "scheduled", 0, "Net already scheduled for the rest of the month")
	cmd.Flags().Float64Var(&in.LastNDaysDiscretionaryNet, "discretionary", 0, "Discretionary net over the trailing window")
	cmd.Flags().IntVar(&in.RemainingDays, "remaining", 0, "Days left in the month")
	cmd.Flags().IntVar(&in.WindowDays, "window", 30, "Length of the trailing window in days")
	return cmd
}

func newProjectYearCmd(out func(*cobra.Command) printer) *cobra.Command {
	var in finance.YearProjectionInput
	var history string

	cmd := &cobra.Command{
		Use:   "year",
		Short: "Project the impact on the rest of the year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !finite(in.ProjectedMonthNet) {
				return fmt.Errorf("--month-net must be a finite number, got %v", in.ProjectedMonthNet)
			}
			nets, err := parseFloatList(history)
			if err != nil {
				return fmt.Errorf("--history: %w", err)
			}
			in.HistoricalMonthlyNets = nets
			return emitProjection(out(cmd), finance.ProjectYearEndImpact(in))
		},
	}
	cmd.Flags().Float64Var(&in.ProjectedMonthNet, "month-net", 0, "Projected net of the current month")
	cmd.Flags().IntVar(&in.MonthsRemaining, "months", 0, "Months left after the current one")
	cmd.Flags().StringVar(&history, "history", "", "Comma separated nets of completed months")
	return cmd
}

func emitProjection(p printer, proj finance.Projection) error {
	value := strconv.FormatFloat(proj.Value, 'f', 2, 64)
	return p.emit(
		map[string]any{"value": proj.Value, "explanation": proj.Explanation},
		[]string{"VALUE", "EXPLANATION"},
		[][]string{{value, proj.Explanation}},
	)
}

func parseFloatList(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || !finite(v) {
			return nil, fmt.Errorf("invalid number %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
