package finance

import (
	"time"

	"cashflow/internal/core"
)

// BillingCycle holds the day-of-month parameters of a credit card. Both values are
// expected in 1..31 and are only clamped once applied to a concrete month.
type BillingCycle struct {
	ClosingDay int
	DueDay     int
}

// BillAssignment is the statement a purchase lands on and when that statement is due.
type BillAssignment struct {
	StatementMonth time.Month
	StatementYear  int
	DueDate        core.Date
}

// Statement returns the first day of the statement month.
func (b BillAssignment) Statement() core.Date {
	return core.NewDate(b.StatementYear, b.StatementMonth, 1)
}

// AssignBillingCycle maps a purchase date to its statement month and due date.
// Purchases on or after the closing day roll to the next statement. Cards whose due
// day comes before their closing day are due in the month after the statement month.
func AssignBillingCycle(purchase core.Date, closingDay, dueDay int) BillAssignment {
	statement := core.StartOfMonth(purchase)
	if purchase.Day() >= closingDay {
		statement = core.AddMonths(statement, 1, 1)
	}
	return assignmentFor(statement, closingDay, dueDay)
}

// assignmentFor computes the due date for a known statement month.
func assignmentFor(statement core.Date, closingDay, dueDay int) BillAssignment {
	dueMonth := statement
	if dueDay < closingDay {
		dueMonth = core.AddMonths(statement, 1, 1)
	}
	return BillAssignment{
		StatementMonth: statement.Month(),
		StatementYear:  statement.Year(),
		DueDate:        core.ClampDay(dueMonth.Year(), dueMonth.Month(), dueDay),
	}
}
