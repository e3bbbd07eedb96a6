package main

import (
	"fmt"
	"strconv"

	"cashflow/internal/core"
	"cashflow/internal/finance"

	"github.com/spf13/cobra"
)

func newNextCmd(out func(*cobra.Command) printer) *cobra.Command {
	var from, pattern string
	var targetDay int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the occurrence following a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := parseDateFlag("from", from)
			if err != nil {
				return err
			}
			p, err := parsePatternFlag(pattern)
			if err != nil {
				return err
			}
			next := finance.NextOccurrence(current, p, targetDay)
			return out(cmd).emit(
				map[string]string{"from": current.String(), "next": next.String()},
				[]string{"FROM", "NEXT"},
				[][]string{{current.String(), next.String()}},
			)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Current occurrence (YYYY-MM-DD)")
	cmd.Flags().StringVar(&pattern, "pattern", "monthly", "weekly, monthly or yearly")
	cmd.Flags().IntVar(&targetDay, "target-day", 0, "Requested day of month, 0 for the current day")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newSeriesCmd(out func(*cobra.Command) printer) *cobra.Command {
	var anchor, until, pattern string
	var targetDay, maxCount int

	cmd := &cobra.Command{
		Use:   "series",
		Short: "Expand a recurrence after its anchor",
		Long: `Expand a recurrence rule into the dates after its anchor, up to --until
(inclusive, default end of the anchor's year) or --max dates, whichever comes first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := parseDateFlag("anchor", anchor)
			if err != nil {
				return err
			}
			var u core.Date
			if until != "" {
				if u, err = parseDateFlag("until", until); err != nil {
					return err
				}
			}
			p, err := parsePatternFlag(pattern)
			if err != nil {
				return err
			}
			if targetDay == 0 && p != core.Weekly {
				targetDay = a.Day()
			}

			occ := finance.GenerateSeries(
				finance.RecurrenceRule{Pattern: p, Anchor: a, TargetDay: targetDay},
				finance.SeriesBounds{Until: u, MaxCount: maxCount},
			)

			type row struct {
				Index int    `json:"index"`
				Date  string `json:"date"`
			}
			data := make([]row, 0, len(occ))
			rows := make([][]string, 0, len(occ))
			for _, o := range occ {
				data = append(data, row{Index: o.Index, Date: o.Date.String()})
				rows = append(rows, []string{strconv.Itoa(o.Index), o.Date.String(), o.Date.Weekday().String()})
			}
			return out(cmd).emit(data, []string{"#", "DATE", "WEEKDAY"}, rows)
		},
	}
	cmd.Flags().StringVar(&anchor, "anchor", "", "First date of the series (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Last date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&pattern, "pattern", "monthly", "weekly, monthly or yearly")
	cmd.Flags().IntVar(&targetDay, "target-day", 0, "Day of month to aim for, default the anchor's day")
	cmd.Flags().IntVar(&maxCount, "max", finance.DefaultMaxOccurrences, "Maximum number of dates")
	_ = cmd.MarkFlagRequired("anchor")
	return cmd
}

func newInstallmentsCmd(out func(*cobra.Command) printer) *cobra.Command {
	var date, amount string
	var count, closingDay, dueDay int

	cmd := &cobra.Command{
		Use:   "installments",
		Short: "Split a card purchase into installments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDateFlag("date", date)
			if err != nil {
				return err
			}
			cents, err := core.ParseDecimalToCents(amount)
			if err != nil {
				return fmt.Errorf("--amount %q: %w", amount, err)
			}
			card := core.Card{Name: "cli", ClosingDay: closingDay, DueDay: dueDay}
			if err := card.Validate(); err != nil {
				return err
			}

			plan, err := finance.GenerateInstallmentsCents(d, core.Money{Cents: cents}, count, closingDay, dueDay)
			if err != nil {
				return err
			}

			type row struct {
				Index     int    `json:"index"`
				Amount    string `json:"amount"`
				Statement string `json:"statement"`
				DueDate   string `json:"due_date"`
			}
			data := make([]row, 0, len(plan))
			rows := make([][]string, 0, len(plan))
			for _, inst := range plan {
				statement := fmt.Sprintf("%d-%02d", inst.StatementYear, inst.StatementMonth)
				amt := inst.Amount.Decimal().StringFixed(2)
				data = append(data, row{Index: inst.Index, Amount: amt, Statement: statement, DueDate: inst.DueDate.String()})
				rows = append(rows, []string{
					fmt.Sprintf("%d/%d", inst.Index, len(plan)),
					core.FormatEuros(inst.Amount.Cents),
					statement,
					inst.DueDate.String(),
				})
			}
			return out(cmd).emit(data, []string{"#", "AMOUNT", "STATEMENT", "DUE"}, rows)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Purchase date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&amount, "amount", "", "Total amount, e.g. 100.01")
	cmd.Flags().IntVar(&count, "count", 1, "Number of installments")
	cmd.Flags().IntVar(&closingDay, "closing-day", 0, "Statement closing day (1-31)")
	cmd.Flags().IntVar(&dueDay, "due-day", 0, "Statement due day (1-31)")
	for _, f := range []string{"date", "amount", "closing-day", "due-day"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
