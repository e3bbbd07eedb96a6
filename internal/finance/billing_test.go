package finance

import (
	"testing"
	"time"

	"cashflow/internal/core"
)

func TestAssignBillingCycle(t *testing.T) {
	tests := []struct {
		name          string
		purchase      core.Date
		closing, due  int
		wantMonth     time.Month
		wantYear      int
		wantDueString string
	}{
		{
			name:     "before closing, due after closing",
			purchase: core.NewDate(2025, time.March, 10),
			closing:  25, due: 28,
			wantMonth: time.March, wantYear: 2025, wantDueString: "2025-03-28",
		},
		{
			name:     "before closing, due before closing rolls due month",
			purchase: core.NewDate(2025, time.March, 10),
			closing:  25, due: 5,
			wantMonth: time.March, wantYear: 2025, wantDueString: "2025-04-05",
		},
		{
			name:     "on closing day goes to next statement",
			purchase: core.NewDate(2025, time.March, 25),
			closing:  25, due: 5,
			wantMonth: time.April, wantYear: 2025, wantDueString: "2025-05-05",
		},
		{
			name:     "due day clamped to short month",
			purchase: core.NewDate(2025, time.January, 30),
			closing:  28, due: 31,
			wantMonth: time.February, wantYear: 2025, wantDueString: "2025-02-28",
		},
		{
			name:     "december purchase after closing crosses year twice",
			purchase: core.NewDate(2025, time.December, 20),
			closing:  15, due: 10,
			wantMonth: time.January, wantYear: 2026, wantDueString: "2026-02-10",
		},
		{
			name:     "closing 31 in a 30-day month is never reached",
			purchase: core.NewDate(2025, time.April, 30),
			closing:  31, due: 31,
			wantMonth: time.April, wantYear: 2025, wantDueString: "2025-04-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssignBillingCycle(tt.purchase, tt.closing, tt.due)
			if got.StatementMonth != tt.wantMonth || got.StatementYear != tt.wantYear {
				t.Errorf("statement = %s %d, want %s %d", got.StatementMonth, got.StatementYear, tt.wantMonth, tt.wantYear)
			}
			if got.DueDate.String() != tt.wantDueString {
				t.Errorf("due date = %s, want %s", got.DueDate, tt.wantDueString)
			}
		})
	}
}

func TestAssignBillingCycleDueDayNeverExceedsMonth(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		for day := 1; day <= core.LastDayOfMonth(2024, month); day++ {
			purchase := core.NewDate(2024, month, day)
			for closing := 1; closing <= 31; closing++ {
				for due := 1; due <= 31; due++ {
					got := AssignBillingCycle(purchase, closing, due)
					last := core.LastDayOfMonth(got.DueDate.Year(), got.DueDate.Month())
					if got.DueDate.Day() > last {
						t.Fatalf("AssignBillingCycle(%s, %d, %d) due %s beyond month end", purchase, closing, due, got.DueDate)
					}
					if got.DueDate.Before(got.Statement().Time) {
						t.Fatalf("AssignBillingCycle(%s, %d, %d) due %s before statement %s", purchase, closing, due, got.DueDate, got.Statement())
					}
				}
			}
		}
	}
}
