// Package main implements cashctl, which runs the cash-flow engine offline:
// recurrence dates, installment plans and projections, with no database.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"cashflow/internal/core"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds a fresh command tree so flag state never leaks between runs.
func newRootCmd() *cobra.Command {
	var asJSON bool

	root := &cobra.Command{
		Use:   "cashctl",
		Short: "Offline cash-flow calculator",
		Long: `cashctl runs the cash-flow engine without a server or database.

Examples:
  # Next monthly date after a clamped February
  cashctl next --from 2025-02-28 --pattern monthly --target-day 31

  # Split a purchase across card statements
  cashctl installments --date 2025-03-12 --amount 100.01 --count 3 --closing-day 10 --due-day 5

  # Month-end projection
  cashctl project month --past 1200 --scheduled -800 --discretionary -450 --window 30 --remaining 12`,
		Version:       version,
		SilenceUsage:  true,
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	out := func(cmd *cobra.Command) printer {
		return printer{w: cmd.OutOrStdout(), json: asJSON}
	}

	root.AddCommand(newNextCmd(out))
	root.AddCommand(newSeriesCmd(out))
	root.AddCommand(newInstallmentsCmd(out))
	root.AddCommand(newProjectCmd(out))
	return root
}

// printer renders either an aligned table or the JSON form of the same rows.
type printer struct {
	w    io.Writer
	json bool
}

func (p printer) emit(v any, headers []string, rows [][]string) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	writeRow(tw, headers)
	for _, r := range rows {
		writeRow(tw, r)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cols []string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func parseDateFlag(name, value string) (core.Date, error) {
	d, err := core.ParseDate(value)
	if err != nil {
		return core.Date{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", name, value)
	}
	return d, nil
}

func parsePatternFlag(value string) (core.Pattern, error) {
	p := core.Pattern(value)
	switch p {
	case core.Weekly, core.Monthly, core.Yearly:
		return p, nil
	}
	return "", fmt.Errorf("--pattern %q: %w", value, core.ErrInvalidPattern)
}
